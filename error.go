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
)

// MalformedRecordError is returned when a buffer can not be parsed as a document record.
type MalformedRecordError struct {
	msg     string
	pos     int
	wrapped error
}

func newMalformedRecordError(msg string, pos int) *MalformedRecordError {
	return &MalformedRecordError{msg: msg, pos: pos}
}

func newMalformedRecordErrorf(pos int, msg string, param ...interface{}) *MalformedRecordError {
	return &MalformedRecordError{msg: fmt.Sprintf(msg, param...), pos: pos}
}

func newWrappedMalformedRecordError(msg string, pos int, wrapped error) *MalformedRecordError {
	return &MalformedRecordError{msg: msg, pos: pos, wrapped: wrapped}
}

func (e *MalformedRecordError) Error() string {
	var s string
	if e.pos >= 0 {
		s = fmt.Sprintf("crawldoc: %s at position %d", e.msg, e.pos)
	} else {
		s = "crawldoc: " + e.msg
	}
	if e.wrapped != nil {
		s += ": " + e.wrapped.Error()
	}
	return s
}

// Position returns the offset in the record where the error was detected or -1 if unknown.
func (e *MalformedRecordError) Position() int {
	return e.pos
}

func (e *MalformedRecordError) Unwrap() error {
	return e.wrapped
}
