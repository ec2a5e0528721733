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
	"strings"

	"golang.org/x/net/html/charset"
)

// cleanCharset normalizes a charset label.
//
// Surrounding quotes are removed and the label is upper cased and cut at the first character which is not a
// letter, digit, '-' or '_'. Variants of Latin-1 without the ISO- prefix become ISO-8859-1 and UTF8 becomes UTF-8.
func cleanCharset(cs string) string {
	cs = strings.TrimSpace(cs)
	if len(cs) >= 2 && (cs[0] == '"' || cs[0] == '\'') && cs[len(cs)-1] == cs[0] {
		cs = cs[1 : len(cs)-1]
	}
	cs = strings.ToUpper(cs)
	for i := 0; i < len(cs); i++ {
		c := cs[i]
		if !('A' <= c && c <= 'Z') && !('0' <= c && c <= '9') && c != '-' && c != '_' {
			cs = cs[:i]
			break
		}
	}
	switch {
	case !strings.HasPrefix(cs, "ISO-") && (strings.HasSuffix(cs, "8859-1") || strings.HasSuffix(cs, "8859_1")):
		return "ISO-8859-1"
	case strings.HasSuffix(cs, "UTF8"):
		return "UTF-8"
	}
	return cs
}

// ValidCharset returns the charset of the response if it is known to the HTML encoding registry.
// Otherwise the default charset is returned, which is ISO-8859-1 unless changed with WithDefaultCharset.
func (d *Document) ValidCharset() string {
	if d.charset == "" {
		return d.opts.defaultCharset
	}
	if _, name := charset.Lookup(d.charset); name == "" {
		return d.opts.defaultCharset
	}
	return d.charset
}
