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

package index

import (
	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/pkg/loader"
	"github.com/nlnwa/gocrawldoc/pkg/urlhash"
)

// Entry describes the identity of a URL and, for stored records, where the record is.
type Entry struct {
	URL          string `json:"url"`
	Canonical    string `json:"canonical"`
	Hash         int64  `json:"hash"`
	StorageRef   string `json:"ref,omitempty"`
	CrawlTime    string `json:"crawlTime,omitempty"`
	ResponseCode int    `json:"status,omitempty"`
	ContentType  string `json:"contentType,omitempty"`
}

// NewEntry returns the Entry of url or false if url has no identity.
func NewEntry(url string) (*Entry, bool) {
	h := urlhash.NewHasher()
	canonical, ok := h.AppendCanonical(nil, []byte(url))
	if !ok {
		return nil, false
	}
	hash, _ := h.Sum64([]byte(url))
	return &Entry{URL: url, Canonical: string(canonical), Hash: hash}, true
}

// NewDocEntry returns the Entry of doc read from fileName at offset.
func NewDocEntry(doc *crawldoc.Document, fileName string, offset int64) (*Entry, bool) {
	e, ok := NewEntry(doc.URL())
	if !ok {
		return nil, false
	}
	e.StorageRef = loader.FormatStorageRef(fileName, offset)
	e.CrawlTime = doc.Field(crawldoc.FieldCrawlTime)
	e.ResponseCode = doc.ResponseCode()
	e.ContentType = doc.ContentType()
	return e, true
}
