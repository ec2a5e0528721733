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

package links

import (
	"context"
	"errors"
	"io"

	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/cmd/crawldoc/internal/batch"
	"github.com/spf13/cobra"
)

type conf struct {
	policy         crawldoc.LinkPolicy
	excludeSingles bool
	jobs           int
	strict         bool
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "links FILE...",
		Short: "Count links in HTML records of document files",
		Long: `Count how often each URL occurs as a link target in successful HTML responses.

The base URL of every considered page is counted once together with the targets of its anchors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			return runE(cmd.Context(), c, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&c.policy.DropInternal, "external-only", false, "skip relative links and links to the host of the page")
	cmd.Flags().BoolVar(&c.policy.HTTPOnly, "http-only", false, "skip pages and links with a scheme other than http")
	cmd.Flags().BoolVar(&c.excludeSingles, "exclude-singles", false, "only print URLs seen more than once")
	cmd.Flags().IntVarP(&c.jobs, "jobs", "j", 4, "number of files to read in parallel")
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "strict parsing")

	return cmd
}

func runE(ctx context.Context, c *conf, files []string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	counts, err := Count(ctx, files, c.jobs, c.policy, crawldoc.WithStrict(c.strict))
	if err != nil {
		return err
	}
	var minCount int64 = 1
	if c.excludeSingles {
		minCount = 2
	}
	return batch.Print(out, counts.Sorted(minCount))
}

// Count counts the base URL and the link targets of every page in files.
func Count(ctx context.Context, files []string, jobs int, policy crawldoc.LinkPolicy, opts ...crawldoc.Option) (*batch.Counter, error) {
	counter := batch.NewCounter()
	err := batch.ScanFiles(ctx, files, jobs, opts, func() batch.Visitor {
		e := crawldoc.NewLinkExtractor()
		return func(doc *crawldoc.Document, _ int64) error {
			base, links, ok := e.Extract(doc, doc.URL(), policy)
			if !ok {
				return nil
			}
			counter.Add(base, 1)
			for _, l := range links {
				counter.Add(l, 1)
			}
			return nil
		}
	})
	return counter, err
}
