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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/pkg/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, middleware ...mux.MiddlewareFunc) *httptest.Server {
	db, err := index.NewIndexDb(index.DefaultOptions().WithInMemory(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	dir := t.TempDir()
	w := crawldoc.NewDocFileWriter(crawldoc.WithFileNameGenerator(&crawldoc.PatternNameGenerator{
		Directory: dir,
		Pattern:   "test.crawldoc",
	}))
	docs := []struct{ url, response string }{
		{"http://example.com/", "HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n" +
			`<html><head><meta http-equiv="Content-Type" content="text/html; charset=utf-8"></head>hello</html>`},
		{"http://example.com/logo.png", "HTTP/1.1 200 OK\r\nContent-Type: image/png\r\n\r\nPNG"},
	}
	for _, d := range docs {
		b := crawldoc.NewDocumentBuilder(d.url)
		b.AddField(crawldoc.FieldCrawlTime, "20010912053020")
		b.SetRequest([]byte("GET / HTTP/1.0\r\n\r\n"))
		_, err := b.WriteString(d.response)
		require.NoError(t, err)
		doc, err := b.Build()
		require.NoError(t, err)
		require.NoError(t, w.Write(doc)[0].Err)
	}
	require.NoError(t, w.Close())
	_, err = index.IndexFile(db, filepath.Join(dir, "test.crawldoc"))
	require.NoError(t, err)
	require.NoError(t, db.Flush())

	ts := httptest.NewServer(New(db, middleware...))
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, string) {
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestServer_Hash(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		url        string
		wantStatus int
		wantRef    string
	}{
		{"indexed", "http://example.com/index.html", http.StatusOK, "docfile:test.crawldoc:0"},
		{"not indexed", "http://example.org/", http.StatusOK, ""},
		{"no identity", "mailto:someone@example.com", http.StatusBadRequest, ""},
		{"missing url", "", http.StatusBadRequest, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts, "/hash?url="+url.QueryEscape(tt.url))
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus != http.StatusOK {
				return
			}
			assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
			var e index.Entry
			require.NoError(t, json.Unmarshal([]byte(body), &e))
			want, _ := index.NewEntry(tt.url)
			assert.Equal(t, want.Hash, e.Hash)
			assert.Equal(t, want.Canonical, e.Canonical)
			assert.Equal(t, tt.url, e.URL)
			assert.Equal(t, tt.wantRef, e.StorageRef)
		})
	}
}

func TestServer_Doc(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name            string
		url             string
		wantStatus      int
		wantContentType string
		wantBody        string
	}{
		{"html", "http://www.example.com/", http.StatusOK, "text/html; charset=utf-8", "hello</html>"},
		{"image", "http://example.com/logo.png", http.StatusOK, "image/png", "PNG"},
		{"not found", "http://example.com/missing", http.StatusNotFound, "", "Document not found\n"},
		{"no identity", "dns:example.com", http.StatusBadRequest, "", "URL has no identity\n"},
		{"missing url", "", http.StatusBadRequest, "", "Missing url parameter\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts, "/doc?url="+url.QueryEscape(tt.url))
			require.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantContentType, resp.Header.Get("Content-Type"))
				assert.Equal(t, "20010912053020", resp.Header.Get("X-Crawl-Time"))
				assert.Equal(t, "Wed, 12 Sep 2001 05:30:20 GMT", resp.Header.Get("Last-Modified"))
				assert.Equal(t, "200", resp.Header.Get("X-Response-Code"))
				assert.True(t, strings.HasSuffix(body, tt.wantBody), body)
			} else {
				assert.Equal(t, tt.wantBody, body)
			}
		})
	}
}

func TestServer_FilesAndMetrics(t *testing.T) {
	var called int32
	ts := newTestServer(t, func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&called, 1)
			h.ServeHTTP(w, r)
		})
	})

	resp, body := get(t, ts, "/files")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `["test.crawldoc"]`, body)

	get(t, ts, "/hash?url="+url.QueryEscape("http://example.com/"))
	get(t, ts, "/doc?url="+url.QueryEscape("http://example.com/missing"))

	resp, body = get(t, ts, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `crawldoc_http_requests_total{handler="files",status_code="200"} 1`)
	assert.Contains(t, body, `crawldoc_http_requests_total{handler="doc",status_code="404"} 1`)
	assert.Contains(t, body, `crawldoc_lookups_total{handler="hash",result="found"} 1`)
	assert.Contains(t, body, `crawldoc_lookups_total{handler="doc",result="missing"} 1`)
	assert.Equal(t, int32(4), atomic.LoadInt32(&called))

	resp, _ = get(t, ts, "/unknown")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
