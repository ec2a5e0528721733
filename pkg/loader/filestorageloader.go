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

package loader

import (
	"context"

	"github.com/nlnwa/gocrawldoc"
	log "github.com/sirupsen/logrus"
)

// FileStorageLoader loads records from document files on local disk.
type FileStorageLoader struct {
	// FilePathResolver maps a file name to its path. If nil the file name is used as path.
	FilePathResolver func(fileName string) (filePath string, err error)
	// Options used when parsing the loaded record
	Options []crawldoc.Option
}

func (f *FileStorageLoader) Load(ctx context.Context, storageRef string) (doc *crawldoc.Document, err error) {
	if err = ctx.Err(); err != nil {
		return nil, err
	}
	filePath, offset, err := f.parseStorageRef(storageRef)
	if err != nil {
		return nil, err
	}
	log.Debugf("loading record from file: %s, offset: %v", filePath, offset)

	r, err := crawldoc.NewDocFileReader(filePath, offset, f.Options...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()

	doc, _, err = r.Next()
	if err != nil {
		log.Warnf("failed loading record from %s at offset %d: %v", filePath, offset, err)
		return nil, err
	}
	return doc, nil
}

func (f *FileStorageLoader) parseStorageRef(storageRef string) (filePath string, offset int64, err error) {
	filePath, offset, err = ParseStorageRef(storageRef)
	if err != nil {
		return
	}
	if f.FilePathResolver != nil {
		filePath, err = f.FilePathResolver(filePath)
	}
	return
}
