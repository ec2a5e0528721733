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

/*
Package bytescan contains zero-copy primitives for inspecting byte buffers.

A [ByteView] is a window into a buffer owned by someone else. A [Scanner] is a cursor over such a
window with a secondary mark and the value of the last parsed integer. Neither type copies or decodes
the underlying bytes; all comparisons are done byte by byte using ASCII rules.

Patterns used for matching are plain strings. When a view is case-insensitive the pattern must be
written in lower case.
*/
package bytescan

// ByteView is an immutable reference to the bytes buf[start:end].
//
// The view never owns buf. It is only valid as long as the holder of the buffer keeps it unchanged.
type ByteView struct {
	buf           []byte
	start         int
	end           int
	caseSensitive bool
}

// NewByteView returns a case-insensitive view of buf[start:end].
// It panics if the bounds are outside buf.
func NewByteView(buf []byte, start, end int) ByteView {
	if start < 0 || start > end || end > len(buf) {
		panic("bytescan: view bounds out of range")
	}
	return ByteView{buf: buf, start: start, end: end}
}

// ViewOf returns a case-insensitive view of all of buf.
func ViewOf(buf []byte) ByteView {
	return ByteView{buf: buf, end: len(buf)}
}

// WithCaseSensitive returns a copy of v with the case sensitivity flag set.
func (v ByteView) WithCaseSensitive(cs bool) ByteView {
	v.caseSensitive = cs
	return v
}

func (v ByteView) CaseSensitive() bool { return v.caseSensitive }

// Buffer returns the whole underlying buffer, not only the viewed part.
func (v ByteView) Buffer() []byte { return v.buf }

func (v ByteView) Start() int { return v.start }

func (v ByteView) End() int { return v.end }

func (v ByteView) Len() int { return v.end - v.start }

func (v ByteView) IsEmpty() bool { return v.end <= v.start }

// Bytes returns the viewed bytes. The returned slice aliases the underlying buffer.
func (v ByteView) Bytes() []byte {
	if v.buf == nil {
		return nil
	}
	return v.buf[v.start:v.end:v.end]
}

// Copy returns a copy of the viewed bytes which is safe to keep after the buffer is reused.
func (v ByteView) Copy() []byte {
	c := make([]byte, v.Len())
	copy(c, v.Bytes())
	return c
}

// String returns a copy of the viewed bytes as a string.
func (v ByteView) String() string {
	return string(v.Bytes())
}

// At returns the byte at offset i relative to the start of the view.
func (v ByteView) At(i int) byte {
	return v.buf[v.start+i]
}

// Slice returns a sub view. from and to are relative to the start of v.
func (v ByteView) Slice(from, to int) ByteView {
	if from < 0 || from > to || v.start+to > v.end {
		panic("bytescan: slice bounds out of range")
	}
	v.end = v.start + to
	v.start += from
	return v
}

// Equals reports whether the view has the same length as pattern and matches it.
func (v ByteView) Equals(pattern string) bool {
	return v.Len() == len(pattern) && v.StartsWith(pattern)
}

// StartsWith reports whether the view starts with pattern.
func (v ByteView) StartsWith(pattern string) bool {
	return matchAt(v.buf, v.start, v.end, pattern, v.caseSensitive)
}

// Index returns the offset, relative to the start of the view, of the first occurrence of c or -1.
func (v ByteView) Index(c byte) int {
	for i := v.start; i < v.end; i++ {
		if v.buf[i] == c {
			return i - v.start
		}
	}
	return -1
}

// matchAt compares pattern with buf starting at pos, never reading at or past end.
func matchAt(buf []byte, pos, end int, pattern string, caseSensitive bool) bool {
	if end-pos < len(pattern) {
		return false
	}
	if caseSensitive {
		for i := 0; i < len(pattern); i++ {
			if buf[pos+i] != pattern[i] {
				return false
			}
		}
		return true
	}
	for i := 0; i < len(pattern); i++ {
		if ToLower(buf[pos+i]) != pattern[i] && ToUpper(buf[pos+i]) != pattern[i] {
			return false
		}
	}
	return true
}

// IsSpace reports whether c is ASCII whitespace.
func IsSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func IsDigit(c byte) bool { return '0' <= c && c <= '9' }

func IsLetter(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }

func IsLetterOrDigit(c byte) bool { return IsLetter(c) || IsDigit(c) }

func ToLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func ToUpper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
