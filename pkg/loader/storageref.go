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
	"fmt"
	"strconv"
	"strings"
)

// StorageRefScheme is the scheme of storage refs pointing into document files.
const StorageRefScheme = "docfile"

// FormatStorageRef returns the storage ref of the record at offset in the document file fileName.
func FormatStorageRef(fileName string, offset int64) string {
	return StorageRefScheme + ":" + fileName + ":" + strconv.FormatInt(offset, 10)
}

// ParseStorageRef splits a storage ref of the form docfile:<file name>:<offset>.
// The file name may itself contain colons; the offset follows the last one.
func ParseStorageRef(storageRef string) (fileName string, offset int64, err error) {
	rest := strings.TrimPrefix(storageRef, StorageRefScheme+":")
	sep := strings.LastIndexByte(rest, ':')
	if rest == storageRef || sep <= 0 {
		return "", 0, fmt.Errorf("storage ref '%s' is not a document file ref", storageRef)
	}
	fileName, digits := rest[:sep], rest[sep+1:]
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return "", 0, fmt.Errorf("storage ref '%s' has illegal offset", storageRef)
	}
	offset, err = strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("storage ref '%s' has illegal offset", storageRef)
	}
	return fileName, offset, nil
}
