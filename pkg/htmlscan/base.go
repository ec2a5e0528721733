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

package htmlscan

import (
	"github.com/nlnwa/gocrawldoc/pkg/bytescan"
)

// Well known element and attribute names
const (
	Anchor = "a"
	Head   = "head"
	Base   = "base"
	Meta   = "meta"
	Href   = "href"
)

// BaseHref returns the href attribute of the first base element inside the head element of doc.
func BaseHref(doc bytescan.ByteView) (bytescan.ByteView, bool) {
	s := bytescan.NewScanner(doc)
	p := NewElementParser(s, Head)
	if !p.FindOpen() {
		return bytescan.ByteView{}, false
	}
	p.SkipAttributes()
	head, ok := p.Content()
	if !ok {
		return bytescan.ByteView{}, false
	}

	s.Reset(head)
	p.Reset(s, Base)
	if !p.FindOpen() {
		return bytescan.ByteView{}, false
	}
	for {
		key, value, ok := p.NextAttribute()
		if !ok {
			return bytescan.ByteView{}, false
		}
		if key.Equals(Href) {
			return value, true
		}
	}
}
