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

package crawldoc

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nlnwa/gocrawldoc/internal/timestamp"
)

// DocumentBuilder creates new document records.
//
// The builder is an io.Writer; bytes written to it become the response.
type DocumentBuilder struct {
	opts     []Option
	url      string
	fields   DocFields
	request  []byte
	response bytes.Buffer
}

// NewDocumentBuilder creates a builder for a record of the URL u. The URL field is added first.
func NewDocumentBuilder(u string, opts ...Option) *DocumentBuilder {
	b := &DocumentBuilder{opts: opts, url: u}
	b.fields.Add(FieldURL, u)
	return b
}

func (b *DocumentBuilder) AddField(name string, value string) {
	b.fields.Add(name, value)
}

// AddCrawlTime adds the Crawl-Time field as a 14 digit UTC timestamp.
func (b *DocumentBuilder) AddCrawlTime(t time.Time) {
	b.fields.Add(FieldCrawlTime, timestamp.UTC14(t))
}

// AddRecordID adds a Record-Id field with a new random id and returns the id.
func (b *DocumentBuilder) AddRecordID() string {
	id := "<urn:uuid:" + uuid.New().String() + ">"
	b.fields.Add(FieldRecordID, id)
	return id
}

// AddIsSeed adds the Is-Seed field.
func (b *DocumentBuilder) AddIsSeed(seed bool) {
	b.fields.Add(FieldIsSeed, strconv.FormatBool(seed))
}

// SetRequest sets the raw HTTP request. It must end with an empty line.
func (b *DocumentBuilder) SetRequest(request []byte) {
	b.request = request
}

func (b *DocumentBuilder) Write(p []byte) (n int, err error) {
	return b.response.Write(p)
}

func (b *DocumentBuilder) WriteString(s string) (n int, err error) {
	return b.response.WriteString(s)
}

func (b *DocumentBuilder) ReadFrom(r io.Reader) (n int64, err error) {
	return b.response.ReadFrom(r)
}

// Build assembles the record and returns it as a loaded Document.
//
// A request is required when the URL has the scheme http and is not allowed for other schemes.
func (b *DocumentBuilder) Build() (*Document, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	size := len(Magic) + len(crlf) + len(b.request) + b.response.Len()
	for _, nv := range b.fields {
		size += len(nv.Name) + len(nv.Value) + 4
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))
	buf.WriteString(Magic)
	_, _ = b.fields.Write(buf)
	buf.WriteString(crlf)
	buf.Write(b.request)
	buf.Write(b.response.Bytes())

	d := NewDocument(b.opts...)
	if err := d.load(buf.Bytes()); err != nil {
		return nil, err
	}
	return d, nil
}

func (b *DocumentBuilder) validate() error {
	if b.url == "" {
		return errors.New("crawldoc: missing url")
	}
	for _, nv := range b.fields {
		if nv.Name == "" || strings.ContainsAny(nv.Name, ":\r\n") {
			return fmt.Errorf("crawldoc: illegal field name %q", nv.Name)
		}
		if nv.Value == "" {
			return fmt.Errorf("crawldoc: empty value for field %s", nv.Name)
		}
		if strings.ContainsAny(nv.Value, "\r\n") {
			return fmt.Errorf("crawldoc: illegal value for field %s", nv.Name)
		}
	}

	isHTTP := false
	if colon := strings.IndexByte(b.url, ':'); colon > 0 {
		isHTTP = strings.EqualFold(b.url[:colon], "http")
	}
	switch {
	case isHTTP && len(b.request) == 0:
		return fmt.Errorf("crawldoc: missing request for %s", b.url)
	case isHTTP && skipHeaderBlock(b.request, 0, len(b.request)) != len(b.request):
		return fmt.Errorf("crawldoc: request for %s must end with its first empty line", b.url)
	case isHTTP && !bytes.HasSuffix(b.request, []byte("\n\n")) && !bytes.HasSuffix(b.request, []byte("\n\r\n")):
		return fmt.Errorf("crawldoc: request for %s must end with an empty line", b.url)
	case !isHTTP && len(b.request) > 0:
		return fmt.Errorf("crawldoc: request not allowed for %s", b.url)
	}
	return nil
}
