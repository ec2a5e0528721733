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
Package loader fetches stored document records.

A Loader first asks a StorageRefResolver where the record for a URL is stored and then reads it with a
StorageLoader. Storage refs have the form docfile:<file name>:<offset>.
*/
package loader

import (
	"context"

	"github.com/nlnwa/gocrawldoc"
	log "github.com/sirupsen/logrus"
)

type StorageRefResolver interface {
	Resolve(url string) (storageRef string, err error)
}

type StorageLoader interface {
	Load(ctx context.Context, storageRef string) (doc *crawldoc.Document, err error)
}

type Loader struct {
	Resolver StorageRefResolver
	Loader   StorageLoader
}

// Get returns the stored record of url.
func (l *Loader) Get(ctx context.Context, url string) (doc *crawldoc.Document, err error) {
	storageRef, err := l.Resolver.Resolve(url)
	if err != nil {
		return
	}
	log.Debugf("resolved %v -> %v", url, storageRef)
	return l.Loader.Load(ctx, storageRef)
}
