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
	log "github.com/sirupsen/logrus"
)

const (
	headerContentType  = "content-type"
	paramCharset       = "charset"
	xmlDeclStart       = "?xml"
	xmlDeclEnd         = "?>"
	attrEncoding       = "encoding"
	attrHTTPEquiv      = "http-equiv"
	attrContent        = "content"
	headEnd            = "</head"
	defaultSniffedType = "text/html"
)

// parseResponse finds the status code, the content type and the start of the body.
//
// Content type and charset from the response headers take precedence. Sniffing the body only fills in
// what the headers did not give.
func (d *Document) parseResponse() {
	d.responseCode = 0
	d.contentType = ""
	d.charset = ""
	d.bodyOffset = d.response.Start()

	s := &d.s
	s.Reset(d.response)
	if !s.SkipToWhitespace() || !s.SkipWhitespace() {
		return
	}
	s.ParseInt()
	d.responseCode = int(s.Int())

	buf := s.Buffer()
	end := s.End()
	inName := false
	isContentType := false
	hasContentType := false
	var contentType bytescan.ByteView

headers:
	for !s.EOB() {
		pos := s.Pos()
		switch buf[pos] {
		case '\n':
			if isContentType {
				contentType = bytescan.NewByteView(buf, s.MarkPos(), pos)
				hasContentType = true
				isContentType = false
			}
			if pos+1 < end && buf[pos+1] == '\n' {
				s.SetPos(pos + 2)
				break headers
			}
			if pos+2 < end && buf[pos+1] == '\r' && buf[pos+2] == '\n' {
				s.SetPos(pos + 3)
				break headers
			}
			s.Advance(1)
			s.Mark()
			inName = true
		case ':':
			s.Advance(1)
			if inName {
				// Only the first colon separates name from value
				isContentType = bytescan.NewByteView(buf, s.MarkPos(), pos).Equals(headerContentType)
				inName = false
				s.Mark()
			}
		default:
			s.Advance(1)
		}
	}
	if isContentType {
		contentType = bytescan.NewByteView(buf, s.MarkPos(), s.Pos())
		hasContentType = true
	}
	d.bodyOffset = s.Pos()

	if hasContentType {
		d.contentType, d.charset = parseContentType(&d.tmp, contentType)
	}

	if !d.opts.sniffing || d.bodyOffset >= end {
		return
	}
	if d.contentType == "" || (strings.HasPrefix(d.contentType, "text") && d.charset == "") {
		d.sniff(bytescan.NewByteView(buf, d.bodyOffset, end))
	}
}

// parseContentType parses a value like 'text/html; charset=utf-8'.
// The media type is lower cased and is "" unless it contains a '/'.
func parseContentType(s *bytescan.Scanner, v bytescan.ByteView) (contentType, charset string) {
	s.Reset(v)
	if !s.SkipWhitespace() {
		return
	}
	if s.PeekIs('"') {
		s.Advance(1)
		if !s.SkipWhitespace() {
			return
		}
	}

	s.Mark()
	for !s.EOB() {
		c, _ := s.Peek()
		if !bytescan.IsLetterOrDigit(c) && c != '/' && c != '-' && c != '+' && c != '.' {
			break
		}
		s.Advance(1)
	}
	contentType = strings.ToLower(s.Marked().String())
	if strings.IndexByte(contentType, '/') == -1 {
		contentType = ""
	}

	if !s.FindByteSkip(';') {
		return
	}
	for _, param := range strings.Split(s.Remaining().String(), ";") {
		param = strings.TrimSpace(param)
		if len(param) < len(paramCharset) || !strings.EqualFold(param[:len(paramCharset)], paramCharset) {
			continue
		}
		if eq := strings.IndexByte(param[len(paramCharset):], '='); eq >= 0 {
			charset = cleanCharset(param[len(paramCharset)+eq+1:])
		}
	}
	return
}

// sniff looks at the start of body for an XML declaration or a meta element giving the content type.
func (d *Document) sniff(body bytescan.ByteView) {
	s := &d.s
	s.Reset(body)
	if !s.FindByteSkip('<') {
		return
	}
	if s.StartsWithSkip(xmlDeclStart) {
		d.sniffXMLDeclaration(s)
		return
	}
	d.sniffMeta(body)
}

// sniffXMLDeclaration reads the encoding pseudo attribute of an XML declaration.
// s must be positioned just after '<?xml'.
func (d *Document) sniffXMLDeclaration(s *bytescan.Scanner) {
	s.Mark()
	if !s.Find(xmlDeclEnd) {
		return
	}
	s.SetEnd(s.Pos())
	s.Flip()

	if !s.FindSkip(attrEncoding) || !s.SkipWhitespace() || !s.PeekIs('=') {
		return
	}
	s.Advance(1)
	if !s.SkipWhitespace() {
		return
	}
	quote, _ := s.Peek()
	if quote != '"' && quote != '\'' {
		return
	}
	s.Advance(1)
	s.Mark()
	if !s.FindByte(quote) {
		return
	}
	if d.charset == "" {
		d.charset = cleanCharset(s.Marked().String())
		log.Debugf("crawldoc: charset %s from xml declaration of %s", d.charset, d.url)
	}
}

// sniffMeta looks for <meta http-equiv="Content-Type" content="..."> in the head of an HTML body.
// The attributes may come in any order.
func (d *Document) sniffMeta(body bytescan.ByteView) {
	s := &d.s
	s.Reset(body)
	end := body.End()
	if s.Find(headEnd) {
		end = s.Pos()
	}
	s.Reset(bytescan.NewByteView(body.Buffer(), body.Start(), end))

	if d.meta == nil {
		d.meta = htmlscan.NewElementParser(s, htmlscan.Meta)
	} else {
		d.meta.Reset(s, htmlscan.Meta)
	}

	for d.meta.FindOpen() {
		var content bytescan.ByteView
		isContentType, hasContent := false, false
		for {
			key, value, ok := d.meta.NextAttribute()
			if !ok {
				break
			}
			switch {
			case key.Equals(attrHTTPEquiv):
				isContentType = value.StartsWith(headerContentType)
			case key.Equals(attrContent):
				content = value
				hasContent = true
			}
		}
		if !isContentType || !hasContent {
			continue
		}

		contentType, charset := parseContentType(&d.tmp, content)
		if d.contentType == "" {
			if contentType == "" {
				contentType = defaultSniffedType
			}
			d.contentType = contentType
		}
		if d.charset == "" {
			d.charset = charset
		}
		log.Debugf("crawldoc: content type %s and charset %s from meta element of %s", d.contentType, d.charset, d.url)
		return
	}
}
