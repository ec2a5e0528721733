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

package index

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/pkg/index"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// indexFormat is a pflag.Value selecting where index entries go.
type indexFormat struct {
	name string
}

func (f *indexFormat) String() string {
	return f.name
}

func (f *indexFormat) Set(name string) error {
	switch name {
	case "db", "text", "json":
		f.name = name
		return nil
	default:
		return fmt.Errorf("unknown format %v", name)
	}
}

func (f *indexFormat) Type() string {
	return "format"
}

type conf struct {
	format   indexFormat
	indexDir string
	strict   bool
}

func NewCommand() *cobra.Command {
	c := &conf{format: indexFormat{name: "db"}}
	var cmd = &cobra.Command{
		Use:   "index FILE...",
		Short: "Index document files by URL",
		Long: `Index document files by URL.

The db format adds the records to the index in --index-dir, which is what serve uses for lookups.
The text and json formats print one entry per record instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("missing file name")
			}
			return runE(c, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().VarP(&c.format, "format", "f", "index format: db, text or json")
	cmd.Flags().StringVar(&c.indexDir, "index-dir", ".", "index directory")
	cmd.Flags().BoolVarP(&c.strict, "strict", "s", false, "strict parsing")

	return cmd
}

func runE(c *conf, files []string, out io.Writer) (err error) {
	var w index.RecordWriter
	switch c.format.name {
	case "text":
		w = &index.TextWriter{W: out}
	case "json":
		w = &index.JSONWriter{W: out}
	default:
		db, dbErr := index.NewIndexDb(index.DefaultOptions().WithDir(c.indexDir))
		if dbErr != nil {
			return dbErr
		}
		defer func() {
			if e := db.Close(); e != nil && err == nil {
				err = e
			}
		}()
		w = db
	}

	total := 0
	for _, file := range files {
		path, err := filepath.Abs(file)
		if err != nil {
			return err
		}
		count, err := index.IndexFile(w, path, crawldoc.WithStrict(c.strict))
		total += count
		if err != nil {
			return err
		}
		log.Infof("Indexed %d records from %s", count, path)
	}
	log.Infof("Count: %d", total)
	return nil
}
