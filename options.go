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

// DefaultHighWaterSize is the scratch buffer size above which a Document releases its buffer on the next load.
const DefaultHighWaterSize = 524288

// DefaultCharset is used when the charset of a response is unknown.
const DefaultCharset = "ISO-8859-1"

type options struct {
	highWaterSize  int
	strict         bool
	defaultCharset string
	sniffing       bool
}

// Option configures parsing and creation of document records.
type Option interface {
	apply(*options)
}

// EmptyOption does not alter the configuration. It can be embedded in
// another structure to build custom options.
type EmptyOption struct{}

func (EmptyOption) apply(*options) {}

// funcOption wraps a function that modifies options into an
// implementation of the Option interface.
type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(po *options) {
	fo.f(po)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

func defaultOptions() options {
	return options{
		highWaterSize:  DefaultHighWaterSize,
		strict:         false,
		defaultCharset: DefaultCharset,
		sniffing:       true,
	}
}

func newOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// WithHighWaterSize sets the size above which the scratch buffer of a Document is
// replaced by a buffer just large enough for the next record.
// defaults to 524288
func WithHighWaterSize(size int) Option {
	return newFuncOption(func(o *options) {
		o.highWaterSize = size
	})
}

// WithStrict decides if the field block must be well formed.
// In strict mode a field line without colon or a missing end of fields marker is an error.
// Otherwise parsing stops at the offending line.
// defaults to false
func WithStrict(strict bool) Option {
	return newFuncOption(func(o *options) {
		o.strict = strict
	})
}

// WithDefaultCharset sets the charset returned by ValidCharset when the charset is unknown.
// defaults to ISO-8859-1
func WithDefaultCharset(charset string) Option {
	return newFuncOption(func(o *options) {
		o.defaultCharset = charset
	})
}

// WithSniffing decides if the response body is inspected for content type and charset
// when they are missing from the response headers.
// defaults to true
func WithSniffing(sniffing bool) Option {
	return newFuncOption(func(o *options) {
		o.sniffing = sniffing
	})
}
