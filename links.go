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
	"github.com/nlnwa/whatwg-url/url"
)

// LinkPolicy selects which links are returned by LinkExtractor.
type LinkPolicy struct {
	// DropInternal drops relative links and absolute links to the host of the page
	DropInternal bool
	// HTTPOnly ignores pages and links with a scheme other than http
	HTTPOnly bool
}

// LinkExtractor finds the targets of anchor elements in HTML responses.
// It keeps its parser state between calls and must not be used concurrently.
type LinkExtractor struct {
	s     bytescan.Scanner
	p     *htmlscan.ElementParser
	links []string
}

func NewLinkExtractor() *LinkExtractor {
	e := &LinkExtractor{}
	e.p = htmlscan.NewElementParser(&e.s, htmlscan.Anchor)
	return e
}

// Extract returns the base URL of the page and the URLs its anchors link to.
//
// Only successful text/html responses are considered. The base URL is taken from the base element in the
// head of the page, falling back to pageURL. Absolute links are normalized and relative links are resolved
// against the base URL. Fragments are removed. Links which can not be parsed are skipped.
//
// ok is false if the page is not considered. The returned slice is reused by the next call to Extract.
func (e *LinkExtractor) Extract(doc *Document, pageURL string, policy LinkPolicy) (base string, links []string, ok bool) {
	if doc.ResponseCode() != 200 || doc.ContentType() != "text/html" {
		return "", nil, false
	}
	body := bytescan.ViewOf(doc.ResponseBody())
	if body.IsEmpty() {
		return "", nil, false
	}

	var baseURL *url.Url
	var err error
	if href, found := htmlscan.BaseHref(body); found {
		baseURL, err = url.Parse(href.String())
	} else {
		baseURL, err = url.Parse(pageURL)
	}
	if err != nil {
		return "", nil, false
	}
	if policy.HTTPOnly && scheme(baseURL) != "http" {
		return "", nil, false
	}
	host := baseURL.Hostname()
	if host == "" {
		return "", nil, false
	}
	base = baseURL.Href(true)

	e.links = e.links[:0]
	e.s.Reset(body)
	e.p.Reset(&e.s, htmlscan.Anchor)
	for e.p.FindOpen() {
		for {
			key, value, found := e.p.NextAttribute()
			if !found {
				break
			}
			if !key.Equals(htmlscan.Href) {
				continue
			}
			var target *url.Url
			if hasScheme(value) {
				if target, err = url.Parse(value.String()); err != nil {
					continue
				}
				if policy.HTTPOnly && scheme(target) != "http" {
					continue
				}
				if policy.DropInternal && target.Hostname() == host {
					continue
				}
			} else if !policy.DropInternal {
				if target, err = url.ParseRef(base, value.String()); err != nil {
					continue
				}
			} else {
				continue
			}
			e.links = append(e.links, target.Href(true))
		}
	}
	return base, e.links, true
}

// hasScheme reports whether a colon comes before any '.' or '/' in v.
func hasScheme(v bytescan.ByteView) bool {
	for _, c := range v.Bytes() {
		switch c {
		case '.', '/':
			return false
		case ':':
			return true
		}
	}
	return false
}

func scheme(u *url.Url) string {
	return strings.TrimSuffix(u.Protocol(), ":")
}
