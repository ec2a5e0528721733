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
	"fmt"
	"io"
	"strings"
)

const (
	// Field names written by the crawler
	FieldURL          = "URL"
	FieldIPAddress    = "Ip-Address"
	FieldCrawlTime    = "Crawl-Time"
	FieldIsSeed       = "Is-Seed"
	FieldPathFromSeed = "Path-From-Seed"
	FieldVia          = "Via"
	FieldRecordID     = "Record-Id"
)

type nameValue struct {
	Name  string
	Value string
}

func (n *nameValue) String() string {
	return n.Name + ": " + n.Value
}

// DocFields is the field block of a document record.
//
// Fields keep the order they were added in. Names are case sensitive.
type DocFields []*nameValue

// Get gets the first value associated with the given name.
// If the name doesn't exist, Get returns "".
// To access multiple values of a name, use GetAll.
func (df *DocFields) Get(name string) string {
	for _, nv := range *df {
		if nv.Name == name {
			return nv.Value
		}
	}
	return ""
}

func (df *DocFields) GetAll(name string) []string {
	var result []string
	for _, nv := range *df {
		if nv.Name == name {
			result = append(result, nv.Value)
		}
	}
	return result
}

func (df *DocFields) Has(name string) bool {
	for _, nv := range *df {
		if nv.Name == name {
			return true
		}
	}
	return false
}

func (df *DocFields) Add(name string, value string) {
	*df = append(*df, &nameValue{Name: name, Value: value})
}

// Set replaces the first value of name and removes the others.
// If name doesn't exist, the field is added last.
func (df *DocFields) Set(name string, value string) {
	isSet := false
	result := (*df)[:0]
	for _, nv := range *df {
		if nv.Name == name {
			if isSet {
				continue
			}
			nv.Value = value
			isSet = true
		}
		result = append(result, nv)
	}
	*df = result
	if !isSet {
		df.Add(name, value)
	}
}

func (df *DocFields) Delete(name string) {
	result := (*df)[:0]
	for _, nv := range *df {
		if nv.Name != name {
			result = append(result, nv)
		}
	}
	*df = result
}

// Names returns the field names in order. A name occurs once for each of its values.
func (df *DocFields) Names() []string {
	result := make([]string, len(*df))
	for i, nv := range *df {
		result[i] = nv.Name
	}
	return result
}

// Write writes the fields as "Name: value" lines. The end of fields marker is not written.
func (df *DocFields) Write(w io.Writer) (bytesWritten int64, err error) {
	var n int
	for _, field := range *df {
		n, err = fmt.Fprintf(w, "%s: %s\r\n", field.Name, field.Value)
		bytesWritten += int64(n)
		if err != nil {
			return
		}
	}
	return
}

func (df *DocFields) String() string {
	sb := &strings.Builder{}
	if _, err := df.Write(sb); err != nil {
		panic(err)
	}
	return sb.String()
}
