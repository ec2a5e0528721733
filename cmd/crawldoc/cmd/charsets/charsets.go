/*
 * Copyright 2021 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package charsets

import (
	"context"
	"errors"
	"io"

	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/internal/batch"
	"github.com/spf13/cobra"
)

type conf struct {
	valid  bool
	jobs   int
	strict bool
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "charsets FILE...",
		Short: "Count the charsets of records in document files",
		Long: `Count the charsets of records in document files.

The charset is taken from the Content-Type header or sniffed from the body. Records without a
charset are not counted. With --valid every HTTP record is counted with its charset resolved to a
supported encoding, falling back to the default charset.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			return runE(cmd.Context(), c, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&c.valid, "valid", false, "count valid charsets")
	cmd.Flags().IntVarP(&c.jobs, "jobs", "j", 4, "number of files to read in parallel")
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "strict parsing")

	return cmd
}

func runE(ctx context.Context, c *conf, files []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	counts, err := Count(ctx, files, c.jobs, c.valid, crawldoc.WithStrict(c.strict))
	if err != nil {
		return err
	}
	return batch.Print(out, counts.Sorted(1))
}

// Count counts the charsets of all records in files.
func Count(ctx context.Context, files []string, jobs int, valid bool, opts ...crawldoc.Option) (*batch.Counter, error) {
	counter := batch.NewCounter()
	err := batch.ScanFiles(ctx, files, jobs, opts, func() batch.Visitor {
		return func(doc *crawldoc.Document, _ int64) error {
			if valid {
				if doc.IsHTTP() {
					counter.Add(doc.ValidCharset(), 1)
				}
			} else if cs := doc.Charset(); cs != "" {
				counter.Add(cs, 1)
			}
			return nil
		}
	})
	return counter, err
}
