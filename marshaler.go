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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// FrameHeaderSize is the size of the length prefix of a framed record.
const FrameHeaderSize = 4

// Marshaler is the interface that wraps the Marshal function.
//
// Marshal writes a Document in its stored form and returns the number of bytes written.
type Marshaler interface {
	Marshal(w io.Writer, doc *Document) (int64, error)
}

type frameMarshaler struct{}

// NewMarshaler returns a Marshaler which writes each record prefixed with its length
// as a four byte big-endian integer.
func NewMarshaler() Marshaler {
	return &frameMarshaler{}
}

func (m *frameMarshaler) Marshal(w io.Writer, doc *Document) (int64, error) {
	b := doc.Bytes()
	if len(b) > math.MaxInt32 {
		return 0, fmt.Errorf("crawldoc: record of %d bytes is too large to frame", len(b))
	}
	var prefix [FrameHeaderSize]byte
	binary.BigEndian.PutUint32(prefix[:], uint32(len(b)))

	n, err := w.Write(prefix[:])
	bytesWritten := int64(n)
	if err != nil {
		return bytesWritten, err
	}
	n, err = w.Write(b)
	bytesWritten += int64(n)
	return bytesWritten, err
}

// Bytes returns the record.
//
// A loaded record which has not been modified is returned as it was loaded. Otherwise the record is
// rebuilt from the fields, the request and the response.
func (d *Document) Bytes() []byte {
	if d.modified || d.raw == nil {
		d.raw = d.reconstruct()
		d.modified = false
	}
	return d.raw
}

func (d *Document) reconstruct() []byte {
	size := len(Magic) + len(crlf) + d.request.Len() + d.response.Len()
	for _, nv := range d.fields {
		size += len(nv.Name) + len(nv.Value) + 4
	}
	b := bytes.NewBuffer(make([]byte, 0, size))
	b.WriteString(Magic)
	_, _ = d.fields.Write(b)
	b.WriteString(crlf)
	if d.hasRequest {
		b.Write(d.request.Bytes())
	}
	b.Write(d.response.Bytes())
	return b.Bytes()
}

// WriteTo writes the record prefixed with its length. It implements io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return NewMarshaler().Marshal(w, d)
}

// LoadFrame parses a record which is still prefixed with its length.
func (d *Document) LoadFrame(b []byte) error {
	if len(b) < FrameHeaderSize {
		d.reset()
		return newMalformedRecordErrorf(-1, "frame truncated, got %d bytes", len(b))
	}
	length := binary.BigEndian.Uint32(b)
	if int64(length) != int64(len(b)-FrameHeaderSize) {
		d.reset()
		return newMalformedRecordErrorf(-1, "frame length %d does not match record length %d", length, len(b)-FrameHeaderSize)
	}
	return d.Load(b[FrameHeaderSize:])
}

// ReadFrame reads one length prefixed record from r and parses it.
//
// It returns the number of bytes consumed from r. At the end of the stream io.EOF is returned.
func (d *Document) ReadFrame(r io.Reader) (int64, error) {
	var prefix [FrameHeaderSize]byte
	n, err := io.ReadFull(r, prefix[:])
	if err != nil {
		d.reset()
		if err == io.EOF {
			return 0, io.EOF
		}
		return int64(n), newWrappedMalformedRecordError("truncated frame length", -1, err)
	}

	length := binary.BigEndian.Uint32(prefix[:])
	if length > math.MaxInt32 {
		d.reset()
		return int64(n), newMalformedRecordErrorf(-1, "negative frame length %d", int32(length))
	}
	m, err := d.readPayload(r, int(length))
	bytesRead := int64(n + m)
	if err != nil {
		d.reset()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return bytesRead, newWrappedMalformedRecordError(
				fmt.Sprintf("frame length %d does not match %d bytes available", length, m), -1, err)
		}
		return bytesRead, err
	}
	return bytesRead, d.load(d.scratch)
}

// readPayload reads length bytes into the scratch buffer.
//
// Lengths up to the high water size, or up to the size of the current buffer, are allocated at once.
// Longer payloads are read into a buffer which grows with the bytes received, so a corrupt length
// prefix costs no more memory than the stream actually holds.
func (d *Document) readPayload(r io.Reader, length int) (int, error) {
	if length <= d.opts.highWaterSize || length <= cap(d.scratch) {
		d.grow(length)
		return io.ReadFull(r, d.scratch)
	}

	var buf *bytes.Buffer
	if cap(d.scratch) > d.opts.highWaterSize {
		buf = new(bytes.Buffer)
	} else {
		buf = bytes.NewBuffer(d.scratch[:0])
	}
	n, err := buf.ReadFrom(io.LimitReader(r, int64(length)))
	d.scratch = buf.Bytes()
	if err == nil && int(n) < length {
		err = io.ErrUnexpectedEOF
	}
	return int(n), err
}
