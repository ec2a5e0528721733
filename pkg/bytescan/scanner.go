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

package bytescan

import "math"

// Scanner is a mutable cursor over a ByteView.
//
// Besides the current position the scanner keeps a mark and the value of the last integer parsed
// with ParseInt. Search and skip operations move the position forward. When they fail the position
// is left at the end of the scanned region.
//
// A Scanner is meant to be owned by one goroutine and reused between buffers with Reset.
type Scanner struct {
	buf           []byte
	pos           int
	end           int
	mark          int
	lastInt       int64
	caseSensitive bool
}

// NewScanner returns a scanner positioned at the start of v.
func NewScanner(v ByteView) *Scanner {
	s := &Scanner{}
	s.Reset(v)
	return s
}

// Reset points the scanner at v. Position and mark are set to the start of v.
func (s *Scanner) Reset(v ByteView) {
	s.buf = v.buf
	s.pos = v.start
	s.end = v.end
	s.mark = v.start
	s.lastInt = 0
	s.caseSensitive = v.caseSensitive
}

// ResetBytes points the scanner at all of buf.
func (s *Scanner) ResetBytes(buf []byte) {
	s.Reset(ViewOf(buf))
}

// SetCaseSensitive sets how patterns are compared from now on.
func (s *Scanner) SetCaseSensitive(cs bool) { s.caseSensitive = cs }

func (s *Scanner) CaseSensitive() bool { return s.caseSensitive }

func (s *Scanner) Buffer() []byte { return s.buf }

func (s *Scanner) Pos() int { return s.pos }

// SetPos moves the position. It is clamped to the end of the region.
func (s *Scanner) SetPos(pos int) {
	if pos > s.end {
		pos = s.end
	}
	s.pos = pos
}

func (s *Scanner) End() int { return s.end }

// SetEnd narrows (or widens) the scanned region. The position is clamped to the new end.
func (s *Scanner) SetEnd(end int) {
	if end > len(s.buf) {
		end = len(s.buf)
	}
	s.end = end
	if s.pos > end {
		s.pos = end
	}
}

// EOB reports whether the position has reached the end of the region.
func (s *Scanner) EOB() bool { return s.pos >= s.end }

// Peek returns the byte at the current position.
func (s *Scanner) Peek() (byte, bool) {
	if s.pos >= s.end {
		return 0, false
	}
	return s.buf[s.pos], true
}

// PeekIs reports whether the byte at the current position is c.
func (s *Scanner) PeekIs(c byte) bool {
	return s.pos < s.end && s.buf[s.pos] == c
}

// Advance moves the position n bytes forward, stopping at the end.
func (s *Scanner) Advance(n int) {
	s.SetPos(s.pos + n)
}

// Mark records the current position.
func (s *Scanner) Mark() { s.mark = s.pos }

func (s *Scanner) MarkPos() int { return s.mark }

// ResetToMark moves the position back to the mark.
func (s *Scanner) ResetToMark() { s.pos = s.mark }

// Flip swaps the mark and the position.
func (s *Scanner) Flip() { s.pos, s.mark = s.mark, s.pos }

// Marked returns the span between the mark and the position.
func (s *Scanner) Marked() ByteView {
	from, to := s.mark, s.pos
	if from > to {
		from, to = to, from
	}
	return ByteView{buf: s.buf, start: from, end: to, caseSensitive: s.caseSensitive}
}

// Remaining returns the span from the position to the end of the region.
func (s *Scanner) Remaining() ByteView {
	return ByteView{buf: s.buf, start: s.pos, end: s.end, caseSensitive: s.caseSensitive}
}

// Int returns the value stored by the last call to ParseInt.
func (s *Scanner) Int() int64 { return s.lastInt }

// SkipWhitespace advances past whitespace. It returns false if the end was reached.
func (s *Scanner) SkipWhitespace() bool {
	for s.pos < s.end && IsSpace(s.buf[s.pos]) {
		s.pos++
	}
	return s.pos < s.end
}

// SkipToWhitespace advances to the next whitespace. It returns false if the end was reached.
func (s *Scanner) SkipToWhitespace() bool {
	for s.pos < s.end && !IsSpace(s.buf[s.pos]) {
		s.pos++
	}
	return s.pos < s.end
}

// ParseInt consumes consecutive ASCII digits and stores their value, retrievable with Int.
//
// It returns true if at least one digit was consumed and the value fits in an int64.
// Otherwise the stored value is 0.
func (s *Scanner) ParseInt() bool {
	base := s.pos
	var v int64
	overflow := false
	for s.pos < s.end && IsDigit(s.buf[s.pos]) {
		d := int64(s.buf[s.pos] - '0')
		if v > (math.MaxInt64-d)/10 {
			overflow = true
		}
		v = v*10 + d
		s.pos++
	}
	if overflow || s.pos == base {
		s.lastInt = 0
		return false
	}
	s.lastInt = v
	return true
}

// Equals reports whether the rest of the region is exactly pattern. The position is unchanged.
func (s *Scanner) Equals(pattern string) bool {
	return s.end-s.pos == len(pattern) && matchAt(s.buf, s.pos, s.end, pattern, s.caseSensitive)
}

// StartsWith reports whether the bytes at the position match pattern. The position is unchanged.
func (s *Scanner) StartsWith(pattern string) bool {
	return matchAt(s.buf, s.pos, s.end, pattern, s.caseSensitive)
}

// StartsWithSkip is like StartsWith, but on a match the position is moved past it.
func (s *Scanner) StartsWithSkip(pattern string) bool {
	if matchAt(s.buf, s.pos, s.end, pattern, s.caseSensitive) {
		s.pos += len(pattern)
		return true
	}
	return false
}

// FindByte moves the position to the next occurrence of c.
// Unless the scanner is case sensitive, ASCII letters match in either case.
func (s *Scanner) FindByte(c byte) bool {
	if s.caseSensitive || !IsLetter(c) {
		for s.pos < s.end && s.buf[s.pos] != c {
			s.pos++
		}
		return s.pos < s.end
	}
	c = ToLower(c)
	for s.pos < s.end && ToLower(s.buf[s.pos]) != c {
		s.pos++
	}
	return s.pos < s.end
}

// FindByteSkip moves the position to just after the next occurrence of c.
func (s *Scanner) FindByteSkip(c byte) bool {
	if s.FindByte(c) {
		s.pos++
		return true
	}
	return false
}

// Find moves the position to the start of the next occurrence of pattern.
func (s *Scanner) Find(pattern string) bool {
	last := s.end - len(pattern)
	for ; s.pos <= last; s.pos++ {
		if matchAt(s.buf, s.pos, s.end, pattern, s.caseSensitive) {
			return true
		}
	}
	s.pos = s.end
	return false
}

// FindSkip moves the position to just after the next occurrence of pattern.
func (s *Scanner) FindSkip(pattern string) bool {
	if s.Find(pattern) {
		s.pos += len(pattern)
		return true
	}
	return false
}
