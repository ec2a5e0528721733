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

package ls

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/nlnwa/gocrawldoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDocFile(t *testing.T, urls ...string) string {
	dir := t.TempDir()
	w := crawldoc.NewDocFileWriter(crawldoc.WithFileNameGenerator(&crawldoc.PatternNameGenerator{
		Directory: dir,
		Pattern:   "ls.crawldoc",
	}))
	for _, u := range urls {
		b := crawldoc.NewDocumentBuilder(u)
		_, err := b.WriteString("response")
		require.NoError(t, err)
		doc, err := b.Build()
		require.NoError(t, err)
		require.NoError(t, w.Write(doc)[0].Err)
	}
	require.NoError(t, w.Close())
	return filepath.Join(dir, "ls.crawldoc")
}

func TestLs(t *testing.T) {
	color.NoColor = true
	file := writeDocFile(t, "dns:a.example", "dns:b.example", "dns:c.example")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", []string{file}, []string{"dns:a.example", "dns:b.example", "dns:c.example"}},
		{"count", []string{"-c", "2", file}, []string{"dns:a.example", "dns:b.example"}},
		{"url filter", []string{"--url", "dns:b.example", file}, []string{"dns:b.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cmd := NewCommand()
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			require.Len(t, lines, len(tt.want))
			for i, u := range tt.want {
				assert.True(t, strings.HasSuffix(lines[i], u), lines[i])
				assert.Contains(t, lines[i], "  -")
			}
		})
	}
}

func TestLs_MissingFile(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.EqualError(t, cmd.Execute(), "missing file name")
}

func TestStatus(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "200", status(200))
	assert.Equal(t, "301", status(301))
	assert.Equal(t, "404", status(404))
	assert.Equal(t, "  -", status(0))
}
