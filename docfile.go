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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nlnwa/gocrawldoc/internal"
	"github.com/nlnwa/gocrawldoc/internal/timestamp"
	"github.com/prometheus/tsdb/fileutil"
	log "github.com/sirupsen/logrus"
)

// DocFileNameGenerator is the interface that wraps the NewDocFileName function.
type DocFileNameGenerator interface {
	// NewDocFileName returns a directory (might be the empty string for current directory) and a file name
	NewDocFileName() (string, string)
}

// PatternNameGenerator implements the DocFileNameGenerator.
type PatternNameGenerator struct {
	Directory string // Directory to store files in. Defaults to the empty string
	Prefix    string // Prefix available to be used in pattern. Defaults to the empty string
	Serial    int32  // Serial number available for use in pattern. It is atomically increased with every generated file name.
	Pattern   string // Pattern for generated file name. Defaults to: "%{prefix}s%{ts}s-%04{serial}d-%{ip}s.crawldoc"
}

const defaultPattern = "%{prefix}s%{ts}s-%04{serial}d-%{ip}s.crawldoc"

// Allow overriding of time.Now for tests
var now = time.Now

func (g *PatternNameGenerator) NewDocFileName() (string, string) {
	if g.Pattern == "" {
		g.Pattern = defaultPattern
	}
	params := map[string]any{
		"prefix": g.Prefix,
		"ts":     timestamp.UTC14(now()),
		"serial": atomic.AddInt32(&g.Serial, 1),
		"ip":     internal.GetOutboundIP(),
	}
	return g.Directory, internal.Sprintt(g.Pattern, params)
}

// WriteResponse tells where a record was written.
type WriteResponse struct {
	FileName     string // filename
	FileOffset   int64  // the offset in file
	BytesWritten int64  // number of bytes written including the length prefix
	Err          error  // eventual error
}

// DocFileWriter writes framed records to files, starting a new file when the current one is full.
//
// While a file is written to, its name has the open file suffix. The suffix is removed when the file is closed.
type DocFileWriter struct {
	opts            *docFileWriterOptions
	lock            sync.Mutex
	currentFileName string
	currentFile     *os.File
	currentFileSize int64
	closed          bool
}

// NewDocFileWriter creates a new DocFileWriter with the supplied options.
func NewDocFileWriter(opts ...DocFileWriterOption) *DocFileWriter {
	o := defaultDocFileWriterOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &DocFileWriter{opts: &o}
}

func (w *DocFileWriter) String() string {
	return fmt.Sprintf("DocFileWriter (%s)", w.opts)
}

// Write writes one or more documents. The documents are written sequentially to the same file if size permits.
//
// Returns a slice with one WriteResponse for each document.
func (w *DocFileWriter) Write(docs ...*Document) []WriteResponse {
	w.lock.Lock()
	defer w.lock.Unlock()

	res := make([]WriteResponse, len(docs))
	for i, d := range docs {
		res[i] = w.write(d)
	}
	return res
}

func (w *DocFileWriter) write(doc *Document) (response WriteResponse) {
	if w.closed {
		response.Err = fmt.Errorf("crawldoc: write to closed %s", w)
		return
	}

	// Check if the current file has space for the record
	if w.currentFile != nil && w.opts.maxFileSize > 0 {
		size := int64(FrameHeaderSize + len(doc.Bytes()))
		if w.currentFileSize > 0 && w.currentFileSize+size > w.opts.maxFileSize {
			if err := w.closeFile(); err != nil {
				response.Err = err
				return
			}
		}
	}

	if w.currentFile == nil {
		if err := w.createFile(); err != nil {
			response.Err = err
			return
		}
	}

	response.FileName = w.currentFileName
	response.FileOffset = w.currentFileSize
	response.BytesWritten, response.Err = w.opts.marshaler.Marshal(w.currentFile, doc)
	w.currentFileSize += response.BytesWritten
	if response.Err != nil {
		return
	}
	if w.opts.flush {
		// sync file to reduce possibility of half written records in case of crash
		response.Err = w.currentFile.Sync()
	}
	return
}

func (w *DocFileWriter) createFile() error {
	dir, fileName := w.opts.nameGenerator.NewDocFileName()
	path := filepath.Join(dir, fileName+w.opts.openFileSuffix)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0666)
	if err != nil {
		return err
	}
	log.Debugf("crawldoc: created %s", path)
	w.currentFileName = fileName
	w.currentFile = file
	w.currentFileSize = 0
	return nil
}

func (w *DocFileWriter) closeFile() error {
	if w.currentFile == nil {
		return nil
	}
	f := w.currentFile
	w.currentFile = nil
	w.currentFileName = ""
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %s: %w", f.Name(), err)
	}
	if err := fileutil.Rename(f.Name(), strings.TrimSuffix(f.Name(), w.opts.openFileSuffix)); err != nil {
		return fmt.Errorf("failed to rename file: %s: %w", f.Name(), err)
	}
	return nil
}

// Rotate closes the current file. A call to Write after Rotate creates a new file.
func (w *DocFileWriter) Rotate() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.closeFile()
}

// Close closes the current file and releases the writer.
// Calling Write after Close returns an error.
func (w *DocFileWriter) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.closed = true
	return w.closeFile()
}

// DocFileReader reads framed records from a file.
type DocFileReader struct {
	file   *os.File
	offset int64
	reader *bufio.Reader
	doc    *Document
}

// NewDocFileReader opens filename for reading, starting at offset.
func NewDocFileReader(filename string, offset int64, opts ...Option) (*DocFileReader, error) {
	file, err := os.Open(filename) // For read access.
	if err != nil {
		return nil, err
	}
	if _, err = file.Seek(offset, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, err
	}
	return &DocFileReader{
		file:   file,
		offset: offset,
		reader: bufio.NewReaderSize(file, 64*1024),
		doc:    NewDocument(opts...),
	}, nil
}

// Next reads the next record and returns it together with its offset in the file.
//
// The returned Document is reused by the following call to Next.
// When at end of file only io.EOF is returned.
func (r *DocFileReader) Next() (*Document, int64, error) {
	offset := r.offset
	n, err := r.doc.ReadFrame(r.reader)
	r.offset += n
	if err != nil {
		return nil, offset, err
	}
	return r.doc, offset, nil
}

// Offset returns the offset of the next record.
func (r *DocFileReader) Offset() int64 {
	return r.offset
}

// Close closes the DocFileReader.
func (r *DocFileReader) Close() error {
	return r.file.Close()
}

// Options for DocFileWriter
type docFileWriterOptions struct {
	maxFileSize    int64
	openFileSuffix string
	nameGenerator  DocFileNameGenerator
	marshaler      Marshaler
	flush          bool
}

func (o *docFileWriterOptions) String() string {
	return fmt.Sprintf("File size: %d, Flush: %v", o.maxFileSize, o.flush)
}

// DocFileWriterOption configures how to write document files.
type DocFileWriterOption interface {
	apply(*docFileWriterOptions)
}

// funcDocFileWriterOption wraps a function that modifies docFileWriterOptions into an
// implementation of the DocFileWriterOption interface.
type funcDocFileWriterOption struct {
	f func(*docFileWriterOptions)
}

func (fo *funcDocFileWriterOption) apply(po *docFileWriterOptions) {
	fo.f(po)
}

func newFuncDocFileWriterOption(f func(*docFileWriterOptions)) *funcDocFileWriterOption {
	return &funcDocFileWriterOption{
		f: f,
	}
}

func defaultDocFileWriterOptions() docFileWriterOptions {
	return docFileWriterOptions{
		maxFileSize:    1024 * 1024 * 1024, // 1 GiB
		openFileSuffix: ".open",
		nameGenerator:  &PatternNameGenerator{},
		marshaler:      &frameMarshaler{},
	}
}

// WithMaxFileSize sets the max size of a file before creating a new one. Zero means no limit.
// defaults to 1 GiB
func WithMaxFileSize(size int64) DocFileWriterOption {
	return newFuncDocFileWriterOption(func(o *docFileWriterOptions) {
		o.maxFileSize = size
	})
}

// WithFlush sets if writer should commit each record to stable storage.
// defaults to false
func WithFlush(flush bool) DocFileWriterOption {
	return newFuncDocFileWriterOption(func(o *docFileWriterOptions) {
		o.flush = flush
	})
}

// WithOpenFileSuffix sets a suffix to be added to the file name while the file is open for writing.
// The suffix is automatically removed when the file is closed.
// defaults to ".open"
func WithOpenFileSuffix(suffix string) DocFileWriterOption {
	return newFuncDocFileWriterOption(func(o *docFileWriterOptions) {
		o.openFileSuffix = suffix
	})
}

// WithFileNameGenerator sets the DocFileNameGenerator to use for generating new file names.
// defaults to a PatternNameGenerator with the default pattern
func WithFileNameGenerator(generator DocFileNameGenerator) DocFileWriterOption {
	return newFuncDocFileWriterOption(func(o *docFileWriterOptions) {
		o.nameGenerator = generator
	})
}

// WithMarshaler sets the marshaler to use.
// defaults to a marshaler writing length prefixed records
func WithMarshaler(marshaler Marshaler) DocFileWriterOption {
	return newFuncDocFileWriterOption(func(o *docFileWriterOptions) {
		o.marshaler = marshaler
	})
}
