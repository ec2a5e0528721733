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

// Package timestamp converts between time.Time and the 14 digit timestamps found in document records.
package timestamp

import (
	"fmt"
	"time"
)

const layout14 = "20060102150405"

// UTC14 formats t as a 14 digit timestamp (yyyyMMddHHmmss) in UTC.
func UTC14(t time.Time) string {
	return t.UTC().Format(layout14)
}

// From14ToTime parses a 14 digit timestamp as a time in UTC.
func From14ToTime(s string) (time.Time, error) {
	t, err := time.Parse(layout14, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("could not parse timestamp %q: %w", s, err)
	}
	return t, nil
}
