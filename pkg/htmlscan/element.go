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
Package htmlscan finds single HTML elements in raw bytes without building a document tree.

An [ElementParser] looks for one tag name at a time. After [ElementParser.FindOpen] has found an opening
tag, the attributes are walked with [ElementParser.NextAttribute]. When the end of the opening tag is
reached, the content up to the first closing tag with the same name is captured and is available from
[ElementParser.Content].

The parser is not nesting aware. For nested elements with the same name the content stops at the first
closing tag. Attribute values are returned as they appear in the input, entities are not decoded.
*/
package htmlscan

import (
	"github.com/nlnwa/gocrawldoc/pkg/bytescan"
)

const closeTagStart = "</"

// ElementParser scans for occurrences of a single element.
//
// The views returned by NextAttribute and Content point into the scanned buffer.
// They are only guaranteed to be meaningful until the next call on the parser.
type ElementParser struct {
	name       string
	s          *bytescan.Scanner
	tagOpen    bool
	hasContent bool
	content    bytescan.ByteView
}

// NewElementParser creates a parser for the element name which scans with s.
// name must be in lower case; matching is done according to the case sensitivity of s.
func NewElementParser(s *bytescan.Scanner, name string) *ElementParser {
	p := &ElementParser{}
	p.Reset(s, name)
	return p
}

// Reset prepares the parser for a new scan with s looking for the element name.
func (p *ElementParser) Reset(s *bytescan.Scanner, name string) {
	p.s = s
	p.name = name
	p.tagOpen = false
	p.hasContent = false
	p.content = bytescan.ByteView{}
}

// SetName changes the element to look for without moving the scanner.
func (p *ElementParser) SetName(name string) {
	p.name = name
}

func (p *ElementParser) Name() string { return p.name }

// FindOpen scans forward for the next opening tag of the element.
//
// A match is '<' followed by the name and then whitespace or '>'.
// It returns false when the buffer is exhausted.
func (p *ElementParser) FindOpen() bool {
	p.tagOpen = false
	p.hasContent = false
	s := p.s
	if s.EOB() {
		return false
	}
	for s.FindByteSkip('<') {
		if s.StartsWithSkip(p.name) {
			if c, ok := s.Peek(); ok && (bytescan.IsSpace(c) || c == '>') {
				p.tagOpen = true
				return true
			}
		}
	}
	return false
}

// NextAttribute returns the next attribute of the currently open tag.
//
// When there are no more attributes ok is false. If the tag was ended by '>' the element content is
// captured before returning. A self-closing tag has no content.
func (p *ElementParser) NextAttribute() (key, value bytescan.ByteView, ok bool) {
	if !p.tagOpen {
		return
	}
	p.tagOpen = false
	s := p.s
	if !s.SkipWhitespace() {
		return
	}
	start := s.Pos()
	p.skipAttrName()
	if s.Pos() == start {
		c, _ := s.Peek()
		switch c {
		case '>':
			s.Advance(1)
			p.parseRemaining()
		case '/':
			s.Advance(1)
			s.FindByteSkip('>')
		case '=':
			// Value without a name
			s.Advance(1)
			if s.SkipWhitespace() {
				p.attributeValue()
				p.tagOpen = true
				return p.NextAttribute()
			}
		}
		return
	}
	key = bytescan.NewByteView(s.Buffer(), start, s.Pos()).WithCaseSensitive(s.CaseSensitive())

	if !s.SkipWhitespace() {
		return bytescan.ByteView{}, bytescan.ByteView{}, false
	}
	if !s.PeekIs('=') {
		// Attribute without value
		value = bytescan.NewByteView(s.Buffer(), s.Pos(), s.Pos())
		p.tagOpen = true
		return key, value, true
	}
	s.Advance(1)
	if !s.SkipWhitespace() {
		return bytescan.ByteView{}, bytescan.ByteView{}, false
	}
	value = p.attributeValue()
	p.tagOpen = true
	return key, value, true
}

// SkipAttributes consumes the remaining attributes of the open tag.
// Use it when only the element content is of interest.
func (p *ElementParser) SkipAttributes() {
	for {
		if _, _, ok := p.NextAttribute(); !ok {
			return
		}
	}
}

// Content returns the content captured for the last opening tag.
func (p *ElementParser) Content() (bytescan.ByteView, bool) {
	if !p.hasContent {
		return bytescan.ByteView{}, false
	}
	return p.content, true
}

func (p *ElementParser) attributeValue() bytescan.ByteView {
	s := p.s
	buf := s.Buffer()
	c, _ := s.Peek()
	if c == '\'' || c == '"' {
		s.Advance(1)
		start := s.Pos()
		for ; !s.EOB(); s.Advance(1) {
			b, _ := s.Peek()
			if b == '>' {
				break
			}
			if b == c && buf[s.Pos()-1] != '\\' {
				v := bytescan.NewByteView(buf, start, s.Pos())
				s.Advance(1)
				return v
			}
		}
		// Unterminated quote, value stops at end of tag
		return bytescan.NewByteView(buf, start, s.Pos())
	}

	start := s.Pos()
	for !s.EOB() {
		b, _ := s.Peek()
		if bytescan.IsSpace(b) || b == '>' {
			break
		}
		s.Advance(1)
	}
	return bytescan.NewByteView(buf, start, s.Pos())
}

// skipAttrName advances over an attribute name.
func (p *ElementParser) skipAttrName() {
	s := p.s
	for !s.EOB() {
		c, _ := s.Peek()
		if c == '=' || c == '>' || c == '/' || bytescan.IsSpace(c) {
			return
		}
		s.Advance(1)
	}
}

func (p *ElementParser) parseRemaining() {
	s := p.s
	start := s.Pos()
	if p.findCloseTag() {
		p.content = bytescan.NewByteView(s.Buffer(), start, s.Pos()).WithCaseSensitive(s.CaseSensitive())
		s.Advance(len(closeTagStart) + len(p.name))
		if s.PeekIs('>') {
			s.Advance(1)
		}
		p.hasContent = true
		return
	}
	p.content = bytescan.NewByteView(s.Buffer(), start, start)
}

// findCloseTag positions the scanner at the next "</name" followed by '>' or the end of the buffer.
// If no such tag exists the position is restored.
func (p *ElementParser) findCloseTag() bool {
	s := p.s
	saved := s.Pos()
	for s.FindSkip(closeTagStart) {
		if s.StartsWithSkip(p.name) {
			if c, ok := s.Peek(); !ok || c == '>' {
				s.SetPos(s.Pos() - len(p.name) - len(closeTagStart))
				return true
			}
		}
	}
	s.SetPos(saved)
	return false
}
