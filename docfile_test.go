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
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setNow(t *testing.T, ts time.Time) {
	saved := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = saved })
}

func buildDocuments(t *testing.T) []*Document {
	var docs []*Document
	for _, u := range []string{"dns:example.com", "dns:example.org", "dns:example.net"} {
		b := NewDocumentBuilder(u)
		b.AddCrawlTime(time.Date(2001, 9, 12, 5, 30, 20, 0, time.UTC))
		_, err := b.WriteString("20010912053020\n10.0.0.1\n")
		require.NoError(t, err)
		d, err := b.Build()
		require.NoError(t, err)
		docs = append(docs, d)
	}
	return docs
}

func TestPatternNameGenerator_NewDocFileName(t *testing.T) {
	setNow(t, time.Date(2001, 9, 12, 5, 30, 20, 0, time.UTC))
	g := &PatternNameGenerator{
		Directory: "dir",
		Prefix:    "crawl-",
		Pattern:   "%{prefix}s%{ts}s-%04{serial}d.crawldoc",
	}
	dir, name := g.NewDocFileName()
	assert.Equal(t, "dir", dir)
	assert.Equal(t, "crawl-20010912053020-0001.crawldoc", name)
	_, name = g.NewDocFileName()
	assert.Equal(t, "crawl-20010912053020-0002.crawldoc", name)
}

func TestDocFileWriter(t *testing.T) {
	setNow(t, time.Date(2001, 9, 12, 5, 30, 20, 0, time.UTC))
	dir := t.TempDir()
	docs := buildDocuments(t)

	w := NewDocFileWriter(WithFileNameGenerator(&PatternNameGenerator{
		Directory: dir,
		Pattern:   "%{ts}s-%04{serial}d.crawldoc",
	}))
	res := w.Write(docs...)
	require.Len(t, res, 3)

	fileName := "20010912053020-0001.crawldoc"
	var offset int64
	offsets := make([]int64, len(res))
	for i, r := range res {
		require.NoError(t, r.Err)
		assert.Equal(t, fileName, r.FileName)
		assert.Equal(t, offset, r.FileOffset)
		assert.Equal(t, int64(FrameHeaderSize+len(docs[i].Bytes())), r.BytesWritten)
		offsets[i] = offset
		offset += r.BytesWritten
	}

	assert.FileExists(t, filepath.Join(dir, fileName+".open"))
	require.NoError(t, w.Close())
	assert.NoFileExists(t, filepath.Join(dir, fileName+".open"))
	assert.FileExists(t, filepath.Join(dir, fileName))

	res = w.Write(docs[0])
	assert.Error(t, res[0].Err)

	r, err := NewDocFileReader(filepath.Join(dir, fileName), 0)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	for i := range docs {
		d, off, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, offsets[i], off)
		assert.Equal(t, string(docs[i].Bytes()), string(d.Bytes()))
	}
	_, _, err = r.Next()
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, offset, r.Offset())
}

func TestDocFileWriter_Rotation(t *testing.T) {
	setNow(t, time.Date(2001, 9, 12, 5, 30, 20, 0, time.UTC))
	dir := t.TempDir()
	docs := buildDocuments(t)
	frameSize := int64(FrameHeaderSize + len(docs[0].Bytes()))

	w := NewDocFileWriter(
		WithMaxFileSize(frameSize*2),
		WithOpenFileSuffix(".tmp"),
		WithFlush(true),
		WithFileNameGenerator(&PatternNameGenerator{Directory: dir, Pattern: "f-%{serial}d.crawldoc"}),
	)
	res := w.Write(docs...)
	for _, r := range res {
		require.NoError(t, r.Err)
	}
	assert.Equal(t, "f-1.crawldoc", res[0].FileName)
	assert.Equal(t, "f-1.crawldoc", res[1].FileName)
	assert.Equal(t, frameSize, res[1].FileOffset)
	assert.Equal(t, "f-2.crawldoc", res[2].FileName)
	assert.Equal(t, int64(0), res[2].FileOffset)
	assert.FileExists(t, filepath.Join(dir, "f-1.crawldoc"))
	assert.FileExists(t, filepath.Join(dir, "f-2.crawldoc.tmp"))

	require.NoError(t, w.Rotate())
	assert.FileExists(t, filepath.Join(dir, "f-2.crawldoc"))

	res = w.Write(docs[0])
	require.NoError(t, res[0].Err)
	assert.Equal(t, "f-3.crawldoc", res[0].FileName)
	require.NoError(t, w.Close())

	r, err := NewDocFileReader(filepath.Join(dir, "f-1.crawldoc"), frameSize)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	d, off, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, frameSize, off)
	assert.Equal(t, "dns:example.org", d.URL())
	_, _, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestNewDocFileReader_MissingFile(t *testing.T) {
	_, err := NewDocFileReader(filepath.Join(t.TempDir(), "missing.crawldoc"), 0)
	assert.Error(t, err)
}
