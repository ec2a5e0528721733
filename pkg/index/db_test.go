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
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/pkg/loader"
	"github.com/nlnwa/gocrawldoc/pkg/urlhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDb(t *testing.T, opts Options) *Db {
	db, err := NewIndexDb(opts.WithInMemory(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// writeDocFile writes one record per url to a new document file in dir and returns its path.
func writeDocFile(t *testing.T, dir, name string, urls ...string) string {
	w := crawldoc.NewDocFileWriter(crawldoc.WithFileNameGenerator(&crawldoc.PatternNameGenerator{
		Directory: dir,
		Pattern:   name,
	}))
	for _, u := range urls {
		b := crawldoc.NewDocumentBuilder(u)
		b.AddField(crawldoc.FieldCrawlTime, "20010912053020")
		if strings.HasPrefix(u, "http:") {
			b.SetRequest([]byte("GET / HTTP/1.0\r\n\r\n"))
		}
		_, err := b.WriteString("HTTP/1.1 200 OK\r\nContent-Type: text/html\r\n\r\n<html>" + u + "</html>")
		require.NoError(t, err)
		doc, err := b.Build()
		require.NoError(t, err)
		res := w.Write(doc)
		require.NoError(t, res[0].Err)
	}
	require.NoError(t, w.Close())
	return filepath.Join(dir, name)
}

func TestDb_AddAndLookup(t *testing.T) {
	db := newTestDb(t, DefaultOptions())

	require.NoError(t, db.Add("http://example.com/index.html", "data/a.crawldoc", 0))
	require.NoError(t, db.Add("http://example.com/page", "data/a.crawldoc", 120))
	require.NoError(t, db.Add("http://example.org/", "data/b.crawldoc", 0))

	_, err := db.GetStorageRef("http://example.org/")
	assert.True(t, errors.Is(err, ErrNotFound), "records should not be visible before flush")

	require.NoError(t, db.Flush())

	tests := []struct {
		url  string
		want string
	}{
		{"http://example.com/index.html", "docfile:a.crawldoc:0"},
		{"http://www.example.com/", "docfile:a.crawldoc:0"},
		{"http://example.com", "docfile:a.crawldoc:0"},
		{"http://example.com/page#top", "docfile:a.crawldoc:120"},
		{"http://example.org/default.htm", "docfile:b.crawldoc:0"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := db.GetStorageRef(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	h, _ := urlhash.Hash("http://example.org/")
	ref, err := db.GetStorageRefByHash(h)
	require.NoError(t, err)
	assert.Equal(t, "docfile:b.crawldoc:0", ref)

	path, err := db.GetFilePath("a.crawldoc")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "a.crawldoc", filepath.Base(path))

	names, err := db.ListFileNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.crawldoc", "b.crawldoc"}, names)
}

func TestDb_Errors(t *testing.T) {
	db := newTestDb(t, DefaultOptions())

	err := db.Add("noscheme", "a.crawldoc", 0)
	assert.True(t, errors.Is(err, ErrNoIdentity))

	_, err = db.GetStorageRef("mailto:someone@example.com")
	assert.True(t, errors.Is(err, ErrNoIdentity))

	_, err = db.GetStorageRef("http://example.com/")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = db.GetFilePath("missing.crawldoc")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDb_LastRecordWins(t *testing.T) {
	db := newTestDb(t, DefaultOptions().WithBatchMaxSize(2))

	require.NoError(t, db.Add("http://example.com/", "a.crawldoc", 0))
	require.NoError(t, db.Add("http://example.com/index.html", "a.crawldoc", 100))
	// The batch is full and written without an explicit flush
	ref, err := db.GetStorageRef("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "docfile:a.crawldoc:100", ref)
}

func TestDb_PeriodicFlush(t *testing.T) {
	db := newTestDb(t, DefaultOptions().WithBatchMaxWait(10*time.Millisecond))
	require.NoError(t, db.Add("http://example.com/", "a.crawldoc", 0))
	assert.Eventually(t, func() bool {
		_, err := db.GetStorageRef("http://example.com/")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDb_OnDisk(t *testing.T) {
	dir := t.TempDir()
	db, err := NewIndexDb(DefaultOptions().WithDir(dir))
	require.NoError(t, err)
	require.NoError(t, db.Add("http://example.com/", "a.crawldoc", 42))
	require.NoError(t, db.Close())

	db, err = NewIndexDb(DefaultOptions().WithDir(dir))
	require.NoError(t, err)
	ref, err := db.GetStorageRef("http://example.com/")
	require.NoError(t, err)
	assert.Equal(t, "docfile:a.crawldoc:42", ref)
	require.NoError(t, db.Close())

	require.NoError(t, db.Delete())
	assert.NoDirExists(t, filepath.Join(dir, dbName))
}

func TestIndexFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDocFile(t, dir, "crawl.crawldoc", "http://example.com/", "dns:example.com", "http://example.com/a")

	db := newTestDb(t, DefaultOptions())
	count, err := IndexFile(db, path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.NoError(t, db.Flush())

	l := &loader.Loader{
		Resolver: db,
		Loader:   &loader.FileStorageLoader{FilePathResolver: db.GetFilePath},
	}
	doc, err := l.Get(context.Background(), "http://www.example.com/a/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a", doc.URL())
	assert.Equal(t, "<html>http://example.com/a</html>", string(doc.ResponseBody()))
}

func TestIndexFile_Writers(t *testing.T) {
	dir := t.TempDir()
	path := writeDocFile(t, dir, "crawl.crawldoc", "http://example.com/")
	h, _ := urlhash.Hash("http://example.com/")
	e, _ := NewEntry("http://example.com/")
	assert.Equal(t, h, e.Hash)

	var text bytes.Buffer
	count, err := IndexFile(&TextWriter{W: &text}, path)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, fmt.Sprintf("%d http://www.example.com/ docfile:crawl.crawldoc:0\n", h), text.String())

	var js bytes.Buffer
	_, err = IndexFile(&JSONWriter{W: &js}, path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"url":"http://example.com/","canonical":"http://www.example.com/","hash":`+strconv.FormatInt(h, 10)+
		`,"ref":"docfile:crawl.crawldoc:0","crawlTime":"20010912053020","status":200,"contentType":"text/html"}`,
		js.String())

	_, err = IndexFile(&TextWriter{W: &text}, filepath.Join(dir, "missing.crawldoc"))
	assert.Error(t, err)
}
