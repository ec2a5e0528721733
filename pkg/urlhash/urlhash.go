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
Package urlhash computes a 64-bit identity for URLs.

Before hashing, the URL is brought to a canonical form which merges common equivalent addresses:

  - the fragment is removed
  - "www." is added to the authority if missing
  - a last path segment named index or default with a web page extension is removed
  - a trailing slash is added to a path whose last segment has no extension, unless there is a query
  - the query is kept verbatim

The hash is the first eight bytes of the MD5 digest of the canonical form, read as a big-endian signed
integer. A URL without an authority has no identity. Since zero is a legal hash value, the functions in
this package report a missing identity with a separate boolean.
*/
package urlhash

import (
	"crypto/md5"
	"encoding/binary"
	"hash"

	"github.com/nlnwa/gocrawldoc/pkg/bytescan"
)

const www = "www."

var defaultPagePrefixes = []string{"index.", "default."}

// Default page extensions indexed by length
var defaultPageExtensions = map[int][]string{
	3: {"asp", "cfm", "jsp", "htm", "php"},
	4: {"html", "shtm"},
	5: {"dhtml", "shtml", "xhtml"},
}

// Hasher computes URL hashes. It keeps its digest state and scratch buffer between calls
// and must not be used concurrently.
type Hasher struct {
	md5     hash.Hash
	scratch []byte
	sum     []byte
}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{
		md5:     md5.New(),
		scratch: make([]byte, 0, 256),
		sum:     make([]byte, 0, md5.Size),
	}
}

// urlParts holds the offsets found when scanning a URL
type urlParts struct {
	authority int
	pathEnd   int
	query     int
	end       int
	addSlash  bool
}

func scan(url []byte) (p urlParts, ok bool) {
	p.authority = -1
	p.query = -1
	p.end = len(url)
	lastComp := -1
	slashCount := 0
	for i, c := range url {
		if c == '#' {
			p.end = i
			break
		}
		if p.query != -1 {
			continue
		}
		switch c {
		case '/':
			if slashCount == 1 {
				p.authority = i + 1
			}
			lastComp = i + 1
			slashCount++
		case '?':
			p.query = i
		}
	}
	if p.authority == -1 {
		return p, false
	}

	realPathEnd := p.end
	if p.query != -1 {
		realPathEnd = p.query
	}
	if slashCount == 2 {
		// Host only, the last segment is empty
		lastComp = realPathEnd
	}

	segment := bytescan.NewByteView(url, lastComp, realPathEnd)
	if isDefaultPage(segment) {
		p.pathEnd = lastComp
		return p, true
	}

	p.pathEnd = realPathEnd
	if p.query == -1 && segment.Index('.') == -1 && url[realPathEnd-1] != '/' {
		p.addSlash = true
	}
	return p, true
}

func isDefaultPage(segment bytescan.ByteView) bool {
	for _, prefix := range defaultPagePrefixes {
		if !segment.StartsWith(prefix) {
			continue
		}
		ext := segment.Slice(len(prefix), segment.Len())
		for _, e := range defaultPageExtensions[ext.Len()] {
			if ext.Equals(e) {
				return true
			}
		}
	}
	return false
}

// AppendCanonical appends the canonical form of url to dst and returns the extended buffer.
// If url has no authority, dst is returned unchanged together with false.
func (h *Hasher) AppendCanonical(dst, url []byte) ([]byte, bool) {
	p, ok := scan(url)
	if !ok {
		return dst, false
	}
	dst = append(dst, url[:p.authority]...)
	if !bytescan.NewByteView(url, p.authority, p.end).StartsWith(www) {
		dst = append(dst, www...)
	}
	dst = append(dst, url[p.authority:p.pathEnd]...)
	if p.addSlash {
		dst = append(dst, '/')
	}
	if p.query != -1 {
		dst = append(dst, url[p.query:p.end]...)
	}
	return dst, true
}

// Sum64 returns the hash of url. The boolean is false if url has no authority.
func (h *Hasher) Sum64(url []byte) (int64, bool) {
	var ok bool
	h.scratch, ok = h.AppendCanonical(h.scratch[:0], url)
	if !ok {
		return 0, false
	}
	h.md5.Reset()
	_, _ = h.md5.Write(h.scratch)
	h.sum = h.md5.Sum(h.sum[:0])
	return int64(binary.BigEndian.Uint64(h.sum[:8])), true
}

// Canonical returns the canonical form of url.
func Canonical(url string) (string, bool) {
	c, ok := NewHasher().AppendCanonical(nil, []byte(url))
	return string(c), ok
}

// Hash returns the hash of url. The boolean is false if url has no authority.
func Hash(url string) (int64, bool) {
	return NewHasher().Sum64([]byte(url))
}

// HashOrZero returns the hash of url or 0 if url has no authority.
//
// Zero is also a possible hash value. Use Hash when the difference matters.
func HashOrZero(url string) int64 {
	h, _ := Hash(url)
	return h
}

// Key returns h as an eight byte big-endian key.
func Key(h int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(h))
	return k
}
