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
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const (
	// DocFileSuffix is the suffix of the files picked up by the AutoIndexer.
	DocFileSuffix = ".crawldoc"
	// OpenFileSuffix marks document files which are still being written.
	OpenFileSuffix = ".open"
)

// AutoIndexer indexes the document files in a set of directories and keeps watching them for new files.
type AutoIndexer struct {
	watcher     *fsnotify.Watcher
	indexWorker *indexWorker
	watchDepth  int
	done        chan struct{}
}

// NewAutoIndexer indexes the files in dirs, descending at most watchDepth levels, and starts watching the
// directories for changes.
func NewAutoIndexer(db *Db, dirs []string, watchDepth int) (*AutoIndexer, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	a := &AutoIndexer{
		watcher:     watcher,
		indexWorker: newIndexWorker(db, 8),
		watchDepth:  watchDepth,
		done:        make(chan struct{}),
	}
	go a.fileWatcher()

	for _, dir := range dirs {
		if dir, err = filepath.Abs(dir); err != nil {
			a.Shutdown()
			return nil, err
		}
		if err := a.addAndIndexDir(dir, 0); err != nil {
			a.Shutdown()
			return nil, err
		}
	}
	return a, nil
}

// Shutdown stops watching and waits for running index jobs.
func (a *AutoIndexer) Shutdown() {
	_ = a.watcher.Close()
	<-a.done
	a.indexWorker.Shutdown()
}

func skipFile(name string) bool {
	return strings.HasSuffix(name, "~") || strings.HasSuffix(name, OpenFileSuffix)
}

func isDocFile(name string) bool {
	return strings.HasSuffix(name, DocFileSuffix)
}

func (a *AutoIndexer) fileWatcher() {
	defer close(a.done)
	for {
		select {
		case event, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if skipFile(event.Name) {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write && isDocFile(event.Name) {
				log.Debugf("modified file: %v", event.Name)
				a.indexWorker.Queue(event.Name, 10*time.Second)
			} else if event.Op&fsnotify.Create == fsnotify.Create {
				fStat, err := os.Stat(event.Name)
				if err != nil {
					log.Warnf("failed to stat new file '%v': %v", event.Name, err)
					continue
				}
				if !fStat.IsDir() {
					if !isDocFile(event.Name) {
						continue
					}
					log.Debugf("new file: %v", event.Name)
					a.indexWorker.Queue(event.Name, 0)
					continue
				}
				if err := a.watcher.Add(event.Name); err != nil {
					log.Errorf("Error occurred when trying to listen to new directory '%v', err: %v", event.Name, err)
				}
			}

		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("watcher error: %v", err)
		}
	}
}

// addAndIndexDir recursively adds path to the watcher and queues its files for indexing.
func (a *AutoIndexer) addAndIndexDir(path string, currentDepth int) error {
	if err := a.watcher.Add(path); err != nil {
		return err
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if skipFile(entry.Name()) {
			continue
		}
		if !entry.IsDir() {
			if !isDocFile(entry.Name()) {
				continue
			}
			a.indexWorker.Queue(filepath.Join(path, entry.Name()), 0)
		} else if currentDepth < a.watchDepth {
			if err := a.addAndIndexDir(filepath.Join(path, entry.Name()), currentDepth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
