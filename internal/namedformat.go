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

package internal

import (
	"fmt"
	"regexp"
	"strconv"
)

var namedArg = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Sprintt is like fmt.Sprintf, but takes its arguments from a map of named parameters.
// A verb refers to a parameter by putting its name in braces before the verb letter.
//
// Example:
//
//	params := map[string]any{
//	  "hello": "world",
//	  "num":   42,
//	}
//
//	result := internal.Sprintt("Hello %{hello}s. The answer is %04{num}d", params)
//
// Result will then be: 'Hello world. The answer is 0042'
func Sprintt(format string, params map[string]any) string {
	var args []any
	indexes := make(map[string]int)
	format = namedArg.ReplaceAllStringFunc(format, func(m string) string {
		name := m[1 : len(m)-1]
		idx, ok := indexes[name]
		if !ok {
			args = append(args, params[name])
			idx = len(args)
			indexes[name] = idx
		}
		return "[" + strconv.Itoa(idx) + "]"
	})
	return fmt.Sprintf(format, args...)
}
