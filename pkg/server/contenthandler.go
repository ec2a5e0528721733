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

package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/internal/timestamp"
	"github.com/nlnwa/gocrawldoc/pkg/index"
	"github.com/nlnwa/gocrawldoc/pkg/loader"
	log "github.com/sirupsen/logrus"
)

type contentHandler struct {
	loader  *loader.Loader
	metrics *metrics
}

func (h *contentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("url")
	log.Debugf("doc request url: %v", uri)
	if uri == "" {
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}

	doc, err := h.loader.Get(r.Context(), uri)
	switch {
	case err == nil:
		h.metrics.lookup("doc", lookupFound)
	case errors.Is(err, index.ErrNotFound):
		h.metrics.lookup("doc", lookupMissing)
		http.Error(w, "Document not found", http.StatusNotFound)
		return
	case errors.Is(err, index.ErrNoIdentity):
		h.metrics.lookup("doc", lookupInvalid)
		http.Error(w, "URL has no identity", http.StatusBadRequest)
		return
	default:
		log.Errorf("loading %s: %v", uri, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType(doc))
	if ct := doc.Field(crawldoc.FieldCrawlTime); ct != "" {
		w.Header().Set("X-Crawl-Time", ct)
		if t, err := timestamp.From14ToTime(ct); err == nil {
			w.Header().Set("Last-Modified", t.Format(http.TimeFormat))
		}
	}
	if doc.ResponseCode() != 0 {
		w.Header().Set("X-Response-Code", strconv.Itoa(doc.ResponseCode()))
	}
	if _, err := w.Write(doc.ResponseBody()); err != nil {
		log.Warnf("writing %s: %v", uri, err)
	}
}

// contentType returns the content type of the stored response with the charset for text.
func contentType(doc *crawldoc.Document) string {
	ct := doc.ContentType()
	if ct == "" {
		return "application/octet-stream"
	}
	if strings.HasPrefix(ct, "text/") {
		return ct + "; charset=" + strings.ToLower(doc.ValidCharset())
	}
	return ct
}
