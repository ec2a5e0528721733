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

package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/nlnwa/gocrawldoc/internal"
	"github.com/nlnwa/gocrawldoc/pkg/index"
	"github.com/nlnwa/gocrawldoc/pkg/server"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [DIR...]",
		Short: "Serve document records by URL",
		Long: `Serve document records by URL.

Records are looked up in the index in --index-dir. With --auto-index the document files in the
document directories are indexed at start and whenever they change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Increase GOMAXPROCS as recommended by badger
			// https://github.com/dgraph-io/badger#are-there-any-go-specific-settings-that-i-should-use
			runtime.GOMAXPROCS(128)
			if len(args) > 0 {
				viper.Set("doc-dir", args)
			}
			return runE()
		},
	}

	cmd.Flags().IntP("port", "p", 9999, "Server listening port")
	cmd.Flags().IntP("watch-depth", "d", 4, "The maximum directory depth when indexing document files")
	cmd.Flags().BoolP("auto-index", "", true, "Enable automatic indexing")
	cmd.Flags().StringP("index-dir", "", ".", "Index directory")
	cmd.Flags().StringSliceP("doc-dir", "", []string{"."}, "List of directories containing document files")
	cmd.Flags().StringP("index-cache-size", "", "", "Size of index cache in bytes")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Fatalf("Failed to bind serve flags: %v", err)
	}

	return cmd
}

func runE() error {
	opts := index.DefaultOptions().WithDir(viper.GetString("index-dir"))
	if size := int64(viper.GetSizeInBytes("index-cache-size")); size > 0 {
		opts = opts.WithIndexCacheSize(size)
	}

	db, err := index.NewIndexDb(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warnf("Closing index: %v", err)
		}
	}()

	if viper.GetBool("auto-index") {
		log.Infof("Starting autoindexer")
		autoindexer, err := index.NewAutoIndexer(db, viper.GetStringSlice("doc-dir"), viper.GetInt("watch-depth"))
		if err != nil {
			return err
		}
		defer autoindexer.Shutdown()
	}

	loggingMw := func(h http.Handler) http.Handler {
		return handlers.CombinedLoggingHandler(os.Stdout, h)
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%v", viper.GetInt("port")),
		Handler: server.New(db, loggingMw),
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(ctx)
	}()

	log.Infof("Starting web server at http://%s:%v", internal.GetHostName(), viper.GetInt("port"))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
