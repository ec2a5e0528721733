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
	"bytes"
)

const sphtcr = " \t\r"

type fieldsParser struct {
	opts *options
}

// parse reads the field block of buf starting at pos and adds the fields to df.
// It returns the position of the first byte after the block.
//
// Fields with an empty value are skipped. In lenient mode a line without a colon ends the
// block, as does the end of the buffer.
func (p *fieldsParser) parse(buf []byte, pos int, df *DocFields) (int, error) {
	n := len(buf)
	for pos < n {
		// Check for end of fields marker
		if buf[pos] == '\n' {
			return pos + 1, nil
		}
		if buf[pos] == '\r' && pos+1 < n && buf[pos+1] == '\n' {
			return pos + 2, nil
		}

		lineStart := pos
		colon := -1
		for pos < n && buf[pos] != '\n' {
			if colon == -1 && buf[pos] == ':' {
				colon = pos
			}
			pos++
		}
		lineEnd := pos
		if pos < n {
			pos++
		}

		if colon == -1 {
			if p.opts.strict {
				return pos, newMalformedRecordErrorf(lineStart, "missing ':' in field line %q",
					bytes.TrimRight(buf[lineStart:lineEnd], sphtcr))
			}
			return pos, nil
		}

		name := string(bytes.Trim(buf[lineStart:colon], sphtcr))
		value := string(bytes.Trim(buf[colon+1:lineEnd], sphtcr))
		if name == "" && p.opts.strict {
			return pos, newMalformedRecordError("empty field name", lineStart)
		}
		if value != "" {
			df.Add(name, value)
		}
	}
	if p.opts.strict {
		return pos, newMalformedRecordError("missing end of fields marker", pos)
	}
	return pos, nil
}
