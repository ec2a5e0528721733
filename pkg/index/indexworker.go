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
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// indexWorker indexes document files on a fixed number of goroutines.
// Files queued with a delay are indexed when no new request for the same file has arrived for that long.
type indexWorker struct {
	db     *Db
	jobs   chan string
	wg     sync.WaitGroup
	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

func newIndexWorker(db *Db, workers int) *indexWorker {
	w := &indexWorker{
		db:     db,
		jobs:   make(chan string, 1024),
		timers: make(map[string]*time.Timer),
	}
	for i := 0; i < workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
	return w
}

func (w *indexWorker) run() {
	defer w.wg.Done()
	for path := range w.jobs {
		count, err := IndexFile(w.db, path)
		if err == nil {
			err = w.db.Flush()
		}
		if err != nil {
			log.Warnf("index: failed indexing %s after %d records: %v", path, count, err)
			continue
		}
		log.Infof("index: indexed %d records from %s", count, path)
	}
}

// Queue schedules path for indexing after delay.
func (w *indexWorker) Queue(path string, delay time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.timers[path]; ok {
		t.Stop()
		delete(w.timers, path)
	}
	if delay <= 0 {
		w.jobs <- path
		return
	}
	w.timers[path] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed {
			return
		}
		delete(w.timers, path)
		w.jobs <- path
	})
}

// Shutdown drops pending delayed files and waits for running jobs to finish.
func (w *indexWorker) Shutdown() {
	w.mu.Lock()
	w.closed = true
	for _, t := range w.timers {
		t.Stop()
	}
	w.timers = nil
	close(w.jobs)
	w.mu.Unlock()
	w.wg.Wait()
}
