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
	"strings"

	"github.com/nlnwa/gocrawldoc/pkg/bytescan"
	"github.com/nlnwa/gocrawldoc/pkg/htmlscan"
	"github.com/nlnwa/whatwg-url/url"
)

// Magic is the first line of every document record.
const Magic = "HDFSWriter/0.2\r\n"

const crlf = "\r\n"

// Document is a parsed document record.
//
// Byte slices returned by a Document point into its internal buffer. They are only valid until the next
// call to Load or ReadFrame. A Document must not be used concurrently.
type Document struct {
	opts *options
	fp   fieldsParser

	scratch []byte // reused between loads
	raw     []byte // the record as loaded or rebuilt

	fields     DocFields
	hasRequest bool
	request    bytescan.ByteView
	response   bytescan.ByteView
	bodyOffset int // position of the body in the buffer of response

	responseCode int
	contentType  string
	charset      string
	url          string
	scheme       string
	isHTTP       bool
	modified     bool

	extension     string
	extensionDone bool

	s    bytescan.Scanner
	tmp  bytescan.Scanner
	meta *htmlscan.ElementParser
}

// NewDocument creates an empty Document.
func NewDocument(opts ...Option) *Document {
	o := newOptions(opts...)
	return &Document{
		opts: o,
		fp:   fieldsParser{opts: o},
	}
}

// Load parses the record in b.
//
// The bytes are copied to the Document's scratch buffer, so b may be reused when Load returns.
// If the record is malformed, a *MalformedRecordError is returned and the Document is left empty.
func (d *Document) Load(b []byte) error {
	d.grow(len(b))
	copy(d.scratch, b)
	return d.load(d.scratch)
}

// grow makes the scratch buffer exactly n bytes long. A new buffer is allocated if the current one
// is too small or has grown beyond the high water size.
func (d *Document) grow(n int) {
	if cap(d.scratch) < n || cap(d.scratch) > d.opts.highWaterSize {
		d.scratch = make([]byte, n)
		return
	}
	d.scratch = d.scratch[:n]
}

func (d *Document) reset() {
	d.raw = nil
	d.fields = d.fields[:0]
	d.hasRequest = false
	d.request = bytescan.ByteView{}
	d.response = bytescan.ByteView{}
	d.bodyOffset = 0
	d.responseCode = 0
	d.contentType = ""
	d.charset = ""
	d.url = ""
	d.scheme = ""
	d.isHTTP = false
	d.modified = false
	d.extension = ""
	d.extensionDone = false
}

// load parses buf without copying it.
func (d *Document) load(buf []byte) error {
	d.reset()

	if len(buf) < len(Magic) {
		return newMalformedRecordErrorf(-1, "record truncated, %d bytes is shorter than the header", len(buf))
	}
	for i := 0; i < len(Magic); i++ {
		if buf[i] != Magic[i] {
			return newMalformedRecordError("bad record header", i)
		}
	}

	pos, err := d.fp.parse(buf, len(Magic), &d.fields)
	if err != nil {
		d.reset()
		return err
	}
	for _, nv := range d.fields {
		if nv.Name == FieldURL {
			d.setURL(nv.Value)
		}
	}

	if d.isHTTP {
		start := pos
		pos = skipHeaderBlock(buf, pos, len(buf))
		d.request = bytescan.NewByteView(buf, start, pos)
		d.hasRequest = true
	}

	d.raw = buf
	d.response = bytescan.NewByteView(buf, pos, len(buf))
	d.bodyOffset = pos
	if d.isHTTP {
		d.parseResponse()
	}
	return nil
}

// skipHeaderBlock returns the position after the first empty line at or after pos.
// If there is no empty line, end is returned.
func skipHeaderBlock(buf []byte, pos, end int) int {
	for ; pos < end; pos++ {
		if buf[pos] != '\n' {
			continue
		}
		if pos+1 < end && buf[pos+1] == '\n' {
			return pos + 2
		}
		if pos+2 < end && buf[pos+1] == '\r' && buf[pos+2] == '\n' {
			return pos + 3
		}
	}
	return end
}

func (d *Document) setURL(u string) {
	d.url = u
	d.scheme = ""
	d.isHTTP = false
	d.extension = ""
	d.extensionDone = false
	if colon := strings.IndexByte(u, ':'); colon > 0 {
		d.scheme = strings.ToLower(u[:colon])
		d.isHTTP = d.scheme == "http"
	}
}

// Fields returns the field block. Changes to the returned fields are not detected by Bytes,
// use SetField to modify a loaded Document.
func (d *Document) Fields() *DocFields {
	return &d.fields
}

// Field returns the first value of the field name or "" if not present.
func (d *Document) Field(name string) string {
	return d.fields.Get(name)
}

func (d *Document) URL() string { return d.url }

// Scheme returns the lower cased scheme of the URL field.
func (d *Document) Scheme() string { return d.scheme }

// IsHTTP reports whether the record carries a raw HTTP exchange.
func (d *Document) IsHTTP() bool { return d.isHTTP }

// Request returns the raw HTTP request or nil if the record has none.
func (d *Document) Request() []byte {
	if !d.hasRequest {
		return nil
	}
	return d.request.Bytes()
}

// Response returns the raw response including headers.
func (d *Document) Response() []byte {
	return d.response.Bytes()
}

// ResponseBody returns the part of the response following the headers.
func (d *Document) ResponseBody() []byte {
	if d.response.Buffer() == nil {
		return nil
	}
	return d.response.Buffer()[d.bodyOffset:d.response.End()]
}

// ResponseBodyOffset returns the offset of the body within Response.
func (d *Document) ResponseBodyOffset() int {
	return d.bodyOffset - d.response.Start()
}

// ResponseCode returns the HTTP status code or 0 if it could not be parsed.
func (d *Document) ResponseCode() int { return d.responseCode }

// ContentType returns the lower cased media type of the response, without parameters.
func (d *Document) ContentType() string { return d.contentType }

// Charset returns the normalized charset of the response or "" if unknown.
func (d *Document) Charset() string { return d.charset }

// URLFileExtension returns the lower cased file extension of the URL path,
// or "" if the last path segment has no extension.
func (d *Document) URLFileExtension() string {
	if d.extensionDone {
		return d.extension
	}
	d.extensionDone = true
	if d.url == "" {
		return ""
	}
	u, err := url.Parse(d.url)
	if err != nil {
		return ""
	}
	p := u.Pathname()
	lastDot := strings.LastIndexByte(p, '.')
	if lastDot == -1 || lastDot < strings.LastIndexByte(p, '/') {
		return ""
	}
	d.extension = strings.ToLower(p[lastDot+1:])
	return d.extension
}

// SetField sets the value of the field name, replacing any existing values.
// An empty value removes the field, since a record can not carry empty fields.
func (d *Document) SetField(name, value string) {
	if value == "" {
		d.fields.Delete(name)
	} else {
		d.fields.Set(name, value)
	}
	if name == FieldURL {
		d.setURL(value)
	}
	d.modified = true
}

// SetRequest replaces the HTTP request. The Document keeps a reference to b.
func (d *Document) SetRequest(b []byte) {
	d.request = bytescan.ViewOf(b)
	d.hasRequest = b != nil
	d.modified = true
}

// SetResponse replaces the response and parses it. The Document keeps a reference to b.
func (d *Document) SetResponse(b []byte) {
	d.response = bytescan.ViewOf(b)
	d.bodyOffset = 0
	d.parseResponse()
	d.modified = true
}
