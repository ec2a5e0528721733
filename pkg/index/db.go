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
Package index maps URLs to the location of their stored records.

The URL index is keyed by the eight byte URL hash from package urlhash, so all URLs with the same canonical
form share one entry. The last record added for a URL wins. A second index maps document file names to
their absolute paths.
*/
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/nlnwa/gocrawldoc"
	"github.com/nlnwa/gocrawldoc/pkg/loader"
	"github.com/nlnwa/gocrawldoc/pkg/urlhash"
	log "github.com/sirupsen/logrus"
)

const dbName = "crawldocdb"

var (
	// ErrNotFound is returned when there is no entry for a key.
	ErrNotFound = errors.New("index: not found")
	// ErrNoIdentity is returned for URLs which can not be hashed.
	ErrNoIdentity = errors.New("index: url has no identity")
)

type record struct {
	hash     int64
	filePath string
	offset   int64
}

type Db struct {
	dbDir     string
	inMemory  bool
	hashIndex *badger.DB
	fileIndex *badger.DB
	done      chan struct{}
	wg        sync.WaitGroup

	// batch settings
	batchMaxSize int
	batchItems   []*record
	batchMutex   sync.Mutex
	hasher       *urlhash.Hasher
}

func NewIndexDb(opts Options) (*Db, error) {
	def := DefaultOptions()
	if opts.BatchMaxSize <= 0 {
		opts.BatchMaxSize = def.BatchMaxSize
	}
	if opts.BatchMaxWait <= 0 {
		opts.BatchMaxWait = def.BatchMaxWait
	}
	if opts.GcInterval <= 0 {
		opts.GcInterval = def.GcInterval
	}

	dbDir := filepath.Join(opts.Dir, dbName)
	d := &Db{
		dbDir:        dbDir,
		inMemory:     opts.InMemory,
		done:         make(chan struct{}),
		batchMaxSize: opts.BatchMaxSize,
		batchItems:   make([]*record, 0, opts.BatchMaxSize),
		hasher:       urlhash.NewHasher(),
	}

	var err error
	d.hashIndex, err = openIndex(filepath.Join(dbDir, "hash-index"), opts)
	if err != nil {
		return nil, err
	}
	d.fileIndex, err = openIndex(filepath.Join(dbDir, "file-index"), opts)
	if err != nil {
		_ = d.hashIndex.Close()
		return nil, err
	}

	d.wg.Add(1)
	go d.maintain(opts.BatchMaxWait, opts.GcInterval)
	return d, nil
}

func openIndex(indexDir string, opts Options) (*badger.DB, error) {
	var bo badger.Options
	if opts.InMemory {
		bo = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(indexDir, 0777); err != nil {
			return nil, err
		}
		bo = badger.DefaultOptions(indexDir)
	}
	bo = bo.WithLogger(log.StandardLogger())
	if opts.IndexCacheSize > 0 {
		bo = bo.WithIndexCacheSize(opts.IndexCacheSize)
	}
	return badger.Open(bo)
}

// maintain flushes pending records and collects value log garbage until the Db is closed.
func (d *Db) maintain(flushInterval, gcInterval time.Duration) {
	defer d.wg.Done()
	flush := time.NewTicker(flushInterval)
	defer flush.Stop()
	gc := time.NewTicker(gcInterval)
	defer gc.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-flush.C:
			if err := d.Flush(); err != nil {
				log.Errorf("index: periodic flush failed: %v", err)
			}
		case <-gc.C:
			runGC(d.hashIndex)
			runGC(d.fileIndex)
		}
	}
}

func runGC(db *badger.DB) {
	for {
		if err := db.RunValueLogGC(0.7); err != nil {
			return
		}
	}
}

// Delete removes the index from disk. The Db must be closed first.
func (d *Db) Delete() error {
	if d.inMemory {
		return nil
	}
	return os.RemoveAll(d.dbDir)
}

// Close flushes pending records and closes the index.
func (d *Db) Close() error {
	close(d.done)
	d.wg.Wait()

	err := d.Flush()
	if !d.inMemory {
		runGC(d.hashIndex)
		runGC(d.fileIndex)
	}
	if e := d.hashIndex.Close(); e != nil && err == nil {
		err = e
	}
	if e := d.fileIndex.Close(); e != nil && err == nil {
		err = e
	}
	return err
}

// Add queues the record of url at offset in the document file filePath.
// Records are written in batches; call Flush to make them visible at once.
func (d *Db) Add(url, filePath string, offset int64) error {
	d.batchMutex.Lock()
	defer d.batchMutex.Unlock()

	h, ok := d.hasher.Sum64([]byte(url))
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoIdentity, url)
	}
	d.batchItems = append(d.batchItems, &record{hash: h, filePath: filePath, offset: offset})
	if len(d.batchItems) >= d.batchMaxSize {
		return d.flush()
	}
	return nil
}

// Write adds doc, read from fileName at offset. It implements RecordWriter.
func (d *Db) Write(doc *crawldoc.Document, fileName string, offset int64) error {
	return d.Add(doc.URL(), fileName, offset)
}

// Flush writes all queued records.
func (d *Db) Flush() error {
	d.batchMutex.Lock()
	defer d.batchMutex.Unlock()
	return d.flush()
}

func (d *Db) flush() error {
	if len(d.batchItems) == 0 {
		return nil
	}
	items := d.batchItems
	d.batchItems = make([]*record, 0, d.batchMaxSize)
	return d.addBatch(items)
}

func (d *Db) addBatch(records []*record) error {
	log.Debugf("index: flushing batch of %d records", len(records))

	type file struct{ name, path string }
	files := make(map[string]file)
	for _, r := range records {
		if _, ok := files[r.filePath]; ok {
			continue
		}
		abs, err := filepath.Abs(r.filePath)
		if err != nil {
			return err
		}
		files[r.filePath] = file{name: filepath.Base(abs), path: abs}
	}

	err := d.fileIndex.Update(func(txn *badger.Txn) error {
		for _, f := range files {
			if err := txn.Set([]byte(f.name), []byte(f.path)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("index: failed updating file index: %w", err)
	}

	wb := d.hashIndex.NewWriteBatch()
	defer wb.Cancel()
	for _, r := range records {
		storageRef := loader.FormatStorageRef(files[r.filePath].name, r.offset)
		if err := wb.Set(urlhash.Key(r.hash), []byte(storageRef)); err != nil {
			return fmt.Errorf("index: failed adding record: %w", err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("index: failed writing batch: %w", err)
	}
	return nil
}

// GetStorageRef returns the storage ref of the record for url.
func (d *Db) GetStorageRef(url string) (string, error) {
	h, ok := urlhash.Hash(url)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoIdentity, url)
	}
	return d.GetStorageRefByHash(h)
}

// GetStorageRefByHash returns the storage ref of the record for the URL hash h.
func (d *Db) GetStorageRefByHash(h int64) (string, error) {
	v, err := get(d.hashIndex, urlhash.Key(h))
	return string(v), err
}

// Resolve implements loader.StorageRefResolver.
func (d *Db) Resolve(url string) (string, error) {
	return d.GetStorageRef(url)
}

// GetFilePath returns the absolute path of the indexed document file fileName.
func (d *Db) GetFilePath(fileName string) (string, error) {
	v, err := get(d.fileIndex, []byte(fileName))
	return string(v), err
}

func get(db *badger.DB, key []byte) (val []byte, err error) {
	err = db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		err = ErrNotFound
	}
	return
}

// ListFileNames returns the names of all indexed document files.
func (d *Db) ListFileNames() ([]string, error) {
	var result []string
	opt := badger.DefaultIteratorOptions
	opt.PrefetchValues = false
	err := d.fileIndex.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(opt)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			result = append(result, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debugf("index: counted %d files", len(result))
	return result, nil
}
