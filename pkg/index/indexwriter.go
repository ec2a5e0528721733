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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/nlnwa/gocrawldoc"
	log "github.com/sirupsen/logrus"
)

// RecordWriter receives the records found while indexing a document file.
type RecordWriter interface {
	Write(doc *crawldoc.Document, fileName string, offset int64) error
}

// TextWriter writes one line with hash, canonical URL and storage ref per record.
type TextWriter struct {
	W io.Writer
}

// JSONWriter writes one JSON encoded Entry per line.
type JSONWriter struct {
	W io.Writer
}

func (c *TextWriter) Write(doc *crawldoc.Document, fileName string, offset int64) error {
	e, ok := NewDocEntry(doc, filepath.Base(fileName), offset)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoIdentity, doc.URL())
	}
	_, err := fmt.Fprintf(c.W, "%d %s %s\n", e.Hash, e.Canonical, e.StorageRef)
	return err
}

func (c *JSONWriter) Write(doc *crawldoc.Document, fileName string, offset int64) error {
	e, ok := NewDocEntry(doc, filepath.Base(fileName), offset)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoIdentity, doc.URL())
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.W, "%s\n", b)
	return err
}

// IndexFile reads every record of the document file path and hands it to w.
// Records without a URL identity are skipped. It returns the number of records written.
func IndexFile(w RecordWriter, path string, opts ...crawldoc.Option) (count int, err error) {
	r, err := crawldoc.NewDocFileReader(path, 0, opts...)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Close() }()

	for {
		doc, offset, err := r.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("%s at offset %d: %w", path, offset, err)
		}
		if err := w.Write(doc, path, offset); err != nil {
			if errors.Is(err, ErrNoIdentity) {
				log.Debugf("index: skipping record at offset %d in %s: %v", offset, path, err)
				continue
			}
			return count, err
		}
		count++
	}
}
