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

package hash

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/nlnwa/gocrawldoc/pkg/urlhash"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	var fromStdin bool
	var cmd = &cobra.Command{
		Use:   "hash URL...",
		Short: "Print the hash and canonical form of URLs",
		Long: `Print the 64-bit identity hash and the canonical form of URLs.

With --stdin the URLs are read one per line from standard input. URLs without an authority have
no identity and are reported as such.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromStdin {
				return hashLines(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			if len(args) == 0 {
				return errors.New("missing url")
			}
			h := urlhash.NewHasher()
			for _, u := range args {
				printHash(cmd.OutOrStdout(), h, []byte(u))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read URLs from standard input")

	return cmd
}

func hashLines(in io.Reader, out io.Writer) error {
	h := urlhash.NewHasher()
	w := bufio.NewWriter(out)
	s := bufio.NewScanner(in)
	for s.Scan() {
		if len(s.Bytes()) == 0 {
			continue
		}
		printHash(w, h, s.Bytes())
	}
	if err := s.Err(); err != nil {
		return err
	}
	return w.Flush()
}

func printHash(out io.Writer, h *urlhash.Hasher, u []byte) {
	canonical, ok := h.AppendCanonical(nil, u)
	if !ok {
		log.Debugf("No identity for %s", u)
		_, _ = fmt.Fprintf(out, "%20s %s\n", "-", u)
		return
	}
	sum, _ := h.Sum64(u)
	_, _ = fmt.Fprintf(out, "%20d %s\n", sum, canonical)
}
