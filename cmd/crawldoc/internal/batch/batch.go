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

// Package batch runs a function over every record of a set of document files.
package batch

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/nlnwa/gocrawldoc"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Visitor is called for each record of a file. The Document is reused for the next record.
type Visitor func(doc *crawldoc.Document, offset int64) error

// ScanFiles reads every record of files with at most jobs files open at a time.
//
// newVisitor is called once for each file, so state kept by the returned Visitor is never shared between
// goroutines. The first error stops the scan.
func ScanFiles(ctx context.Context, files []string, jobs int, opts []crawldoc.Option, newVisitor func() Visitor) error {
	if jobs < 1 {
		jobs = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, file := range files {
		file := file
		g.Go(func() error {
			return scanFile(ctx, file, opts, newVisitor())
		})
	}
	return g.Wait()
}

func scanFile(ctx context.Context, file string, opts []crawldoc.Option, visit Visitor) error {
	r, err := crawldoc.NewDocFileReader(file, 0, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	count := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, offset, err := r.Next()
		if err == io.EOF {
			log.Debugf("%s: %d records", file, count)
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: record %d at offset %d: %w", file, count, offset, err)
		}
		count++
		if err := visit(doc, offset); err != nil {
			return err
		}
	}
}

// Count is the number of occurrences of Key.
type Count struct {
	Key   string
	Count int64
}

// Counter tallies strings. It is safe for concurrent use.
type Counter struct {
	mu     sync.Mutex
	counts map[string]int64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[string]int64)}
}

func (c *Counter) Add(key string, n int64) {
	c.mu.Lock()
	c.counts[key] += n
	c.mu.Unlock()
}

// Merge adds all counts of m.
func (c *Counter) Merge(m map[string]int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, n := range m {
		c.counts[k] += n
	}
}

// Sorted returns the counts of at least minCount, highest count first and then by key.
func (c *Counter) Sorted(minCount int64) []Count {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]Count, 0, len(c.counts))
	for k, n := range c.counts {
		if n >= minCount {
			result = append(result, Count{Key: k, Count: n})
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	return result
}

// Print writes one line with count and key per entry.
func Print(w io.Writer, counts []Count) error {
	for _, c := range counts {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", c.Count, c.Key); err != nil {
			return err
		}
	}
	return nil
}
