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

package ls

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/internal"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type conf struct {
	offset      int64
	recordCount int
	strict      bool
	fileName    string
	urls        []string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "ls FILE",
		Short: "List records from document files",
		Long:  `List offset, response code, content type, charset and URL of each record in a document file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			c.fileName = args[0]
			if c.offset >= 0 && c.recordCount == 0 {
				c.recordCount = 1
			}
			if c.offset < 0 {
				c.offset = 0
			}
			return readFile(c, cmd.OutOrStdout())
		},
	}

	cmd.Flags().Int64VarP(&c.offset, "offset", "o", -1, "record offset")
	cmd.Flags().IntVarP(&c.recordCount, "record-count", "c", 0, "The maximum number of records to show")
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "strict parsing")
	cmd.Flags().StringArrayVar(&c.urls, "url", []string{}, "only list records with these URLs")

	return cmd
}

func readFile(c *conf, out io.Writer) error {
	r, err := crawldoc.NewDocFileReader(c.fileName, c.offset, crawldoc.WithStrict(c.strict))
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	count := 0
	for {
		doc, offset, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("record number %d at offset %d: %w", count, offset, err)
		}
		if len(c.urls) > 0 && !internal.Contains(c.urls, doc.URL()) {
			continue
		}
		count++

		printRecord(out, offset, doc)

		if c.recordCount > 0 && count >= c.recordCount {
			break
		}
	}
	log.Infof("Count: %d", count)
	return nil
}

func printRecord(out io.Writer, offset int64, doc *crawldoc.Document) {
	_, _ = fmt.Fprintf(out, "%9d %s %-24.24s %-12.12s %s\n",
		offset, status(doc.ResponseCode()), doc.ContentType(), doc.Charset(), internal.CropString(doc.URL(), 100))
}

func status(code int) string {
	s := fmt.Sprintf("%3s", strconv.Itoa(code))
	switch {
	case code == 0:
		return "  -"
	case code >= 200 && code < 300:
		return color.GreenString(s)
	case code >= 300 && code < 400:
		return color.YellowString(s)
	default:
		return color.RedString(s)
	}
}
