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

package cat

import (
	"errors"
	"fmt"
	"io"

	"github.com/nlnwa/gocrawldoc"
	"github.com/spf13/cobra"
)

type conf struct {
	offset      int64
	recordCount int
	bodyOnly    bool
	strict      bool
	fileName    string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	var cmd = &cobra.Command{
		Use:   "cat FILE",
		Short: "Print records from a document file",
		Long: `Print the fields, the request and the response of records in a document file.

Without --offset all records are printed. With --offset only the record at that offset is printed
unless --record-count says otherwise.`,
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
	cmd.Flags().BoolVar(&c.bodyOnly, "body", false, "only print the response body")
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "strict parsing")

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
			return nil
		}
		if err != nil {
			return fmt.Errorf("record number %d at offset %d: %w", count, offset, err)
		}
		count++

		if err := printRecord(out, doc, c.bodyOnly); err != nil {
			return err
		}

		if c.recordCount > 0 && count >= c.recordCount {
			return nil
		}
	}
}

func printRecord(out io.Writer, doc *crawldoc.Document, bodyOnly bool) error {
	if bodyOnly {
		_, err := out.Write(doc.ResponseBody())
		return err
	}
	if _, err := doc.Fields().Write(out); err != nil {
		return err
	}
	if _, err := io.WriteString(out, "\r\n"); err != nil {
		return err
	}
	if doc.IsHTTP() {
		if _, err := out.Write(doc.Request()); err != nil {
			return err
		}
	}
	if _, err := out.Write(doc.Response()); err != nil {
		return err
	}
	_, err := io.WriteString(out, "\n")
	return err
}
