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

import "time"

type Options struct {
	Dir            string
	InMemory       bool
	IndexCacheSize int64
	BatchMaxSize   int
	BatchMaxWait   time.Duration
	GcInterval     time.Duration
}

func DefaultOptions() Options {
	return Options{
		Dir:            "",
		InMemory:       false,
		IndexCacheSize: 0,
		BatchMaxSize:   10000,
		BatchMaxWait:   5 * time.Second,
		GcInterval:     5 * time.Minute,
	}
}

func (opt Options) WithDir(val string) Options {
	opt.Dir = val
	return opt
}

// WithInMemory keeps the index in memory only. Dir is ignored.
func (opt Options) WithInMemory(val bool) Options {
	opt.InMemory = val
	return opt
}

func (opt Options) WithIndexCacheSize(val int64) Options {
	opt.IndexCacheSize = val
	return opt
}

func (opt Options) WithBatchMaxSize(val int) Options {
	opt.BatchMaxSize = val
	return opt
}

func (opt Options) WithBatchMaxWait(val time.Duration) Options {
	opt.BatchMaxWait = val
	return opt
}

func (opt Options) WithGcInterval(val time.Duration) Options {
	opt.GcInterval = val
	return opt
}
