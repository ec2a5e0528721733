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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanner_SkipWhitespace(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantPos int
	}{
		{"leading spaces", "  \t\r\nabc", true, 5},
		{"no whitespace", "abc", true, 0},
		{"only whitespace", " \t ", false, 3},
		{"empty", "", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(ViewOf([]byte(tt.input)))
			assert.Equal(t, tt.want, s.SkipWhitespace())
			assert.Equal(t, tt.wantPos, s.Pos())
		})
	}
}

func TestScanner_SkipToWhitespace(t *testing.T) {
	s := NewScanner(ViewOf([]byte("HTTP/1.1 200 OK")))
	assert.True(t, s.SkipToWhitespace())
	assert.Equal(t, 8, s.Pos())

	s.ResetBytes([]byte("nowhitespace"))
	assert.False(t, s.SkipToWhitespace())
	assert.True(t, s.EOB())
}

func TestScanner_ParseInt(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantInt int64
		wantPos int
	}{
		{"status code", "200 OK", true, 200, 3},
		{"leading zeros", "007", true, 7, 3},
		{"no digits", "OK", false, 0, 0},
		{"empty", "", false, 0, 0},
		{"max int64", "9223372036854775807", true, 9223372036854775807, 19},
		{"overflow", "9223372036854775808x", false, 0, 19},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(ViewOf([]byte(tt.input)))
			assert.Equal(t, tt.want, s.ParseInt())
			assert.Equal(t, tt.wantInt, s.Int())
			assert.Equal(t, tt.wantPos, s.Pos())
		})
	}
}

func TestScanner_StartsWith(t *testing.T) {
	s := NewScanner(ViewOf([]byte("Content-Type: text/html")))
	assert.True(t, s.StartsWith("content-type"))
	assert.False(t, s.StartsWith("content-length"))
	assert.Equal(t, 0, s.Pos())

	s.SetCaseSensitive(true)
	assert.False(t, s.StartsWith("content-type"))
	assert.True(t, s.StartsWith("Content-Type"))

	s.SetCaseSensitive(false)
	assert.True(t, s.StartsWithSkip("content-type"))
	assert.Equal(t, 12, s.Pos())
	assert.False(t, s.StartsWithSkip("xyz"))
	assert.Equal(t, 12, s.Pos())
}

func TestScanner_Equals(t *testing.T) {
	s := NewScanner(NewByteView([]byte("xHrefx"), 1, 5))
	assert.True(t, s.Equals("href"))
	assert.False(t, s.Equals("hre"))
	assert.False(t, s.Equals("hrefs"))
	assert.False(t, s.Equals("herf"))
}

func TestScanner_FindByte(t *testing.T) {
	s := NewScanner(ViewOf([]byte("abc<def")))
	assert.True(t, s.FindByte('<'))
	assert.Equal(t, 3, s.Pos())
	assert.True(t, s.FindByteSkip('<'))
	assert.Equal(t, 4, s.Pos())
	assert.False(t, s.FindByte('<'))
	assert.Equal(t, s.End(), s.Pos())
}

func TestScanner_FindByteCase(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		c             byte
		caseSensitive bool
		want          bool
		wantPos       int
	}{
		{"lower finds upper", "xyzAbc", 'a', false, true, 3},
		{"upper finds lower", "xyzabc", 'B', false, true, 4},
		{"case sensitive skips other case", "xyzAbca", 'a', true, true, 6},
		{"case sensitive miss", "xyzABC", 'b', true, false, 6},
		{"punctuation", "a-b_c", '_', false, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(ViewOf([]byte(tt.input)).WithCaseSensitive(tt.caseSensitive))
			assert.Equal(t, tt.want, s.FindByte(tt.c))
			assert.Equal(t, tt.wantPos, s.Pos())
		})
	}
}

func TestScanner_Find(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		pattern       string
		caseSensitive bool
		want          bool
		wantPos       int
		wantSkipPos   int
	}{
		{"found", "<html><HEAD></head>", "</head", false, true, 12, 18},
		{"case insensitive", "xx</HEAD>", "</head", false, true, 2, 8},
		{"case sensitive miss", "xx</HEAD>", "</head", true, false, 9, 9},
		{"at end", "abc?>", "?>", false, true, 3, 5},
		{"partial at end", "abc?", "?>", false, false, 4, 4},
		{"pattern longer than input", "ab", "abc", false, false, 2, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ViewOf([]byte(tt.input)).WithCaseSensitive(tt.caseSensitive)
			s := NewScanner(v)
			assert.Equal(t, tt.want, s.Find(tt.pattern))
			assert.Equal(t, tt.wantPos, s.Pos())

			s.Reset(v)
			assert.Equal(t, tt.want, s.FindSkip(tt.pattern))
			assert.Equal(t, tt.wantSkipPos, s.Pos())
		})
	}
}

func TestScanner_MarkAndFlip(t *testing.T) {
	s := NewScanner(ViewOf([]byte(`name="value" rest`)))
	assert.True(t, s.FindByteSkip('"'))
	s.Mark()
	assert.True(t, s.FindByte('"'))
	assert.Equal(t, "value", s.Marked().String())

	s.Flip()
	assert.Equal(t, 6, s.Pos())
	assert.True(t, s.StartsWith("value"))
	assert.Equal(t, "value", s.Marked().String())

	s.Flip()
	assert.Equal(t, 11, s.Pos())
	s.ResetToMark()
	assert.Equal(t, 6, s.Pos())
}

func TestScanner_SetEnd(t *testing.T) {
	s := NewScanner(ViewOf([]byte("<?xml encoding=\"utf-8\"?><root/>")))
	assert.True(t, s.Find("?>"))
	s.SetEnd(s.Pos())
	s.SetPos(0)
	assert.False(t, s.Find("root"))
	assert.Equal(t, 22, s.Pos())
	assert.Equal(t, "", s.Remaining().String())
}

func TestByteView(t *testing.T) {
	buf := []byte("GET /index.html HTTP/1.0")
	v := NewByteView(buf, 4, 15)
	assert.Equal(t, "/index.html", v.String())
	assert.Equal(t, 11, v.Len())
	assert.Equal(t, byte('/'), v.At(0))
	assert.Equal(t, 6, v.Index('.'))
	assert.Equal(t, -1, v.Index('?'))
	assert.Equal(t, "index", v.Slice(1, 6).String())
	assert.True(t, v.StartsWith("/INDEX"))
	assert.False(t, v.WithCaseSensitive(true).StartsWith("/INDEX"))

	c := v.Copy()
	buf[5] = 'X'
	assert.Equal(t, "/index.html", string(c))
	assert.Equal(t, "/Xndex.html", v.String())

	assert.Panics(t, func() { NewByteView(buf, 5, 4) })
	assert.Panics(t, func() { NewByteView(buf, 0, len(buf)+1) })
}
