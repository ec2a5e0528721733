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

/*
Package server serves stored document records over HTTP.

Routes:

	GET /hash?url=<url>   identity of the URL and, if indexed, where its record is stored (JSON)
	GET /doc?url=<url>    the response body of the stored record
	GET /files            names of the indexed document files (JSON)
	GET /metrics          Prometheus metrics
*/
package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/nlnwa/gocrawldoc/pkg/index"
	"github.com/nlnwa/gocrawldoc/pkg/loader"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type Server struct {
	router   *mux.Router
	db       *index.Db
	loader   *loader.Loader
	registry *prometheus.Registry
	metrics  *metrics
}

// New creates a Server looking up records in db. The middleware wraps every route.
func New(db *index.Db, middleware ...mux.MiddlewareFunc) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		db:       db,
		registry: prometheus.NewRegistry(),
		loader: &loader.Loader{
			Resolver: db,
			Loader:   &loader.FileStorageLoader{FilePathResolver: db.GetFilePath},
		},
	}
	s.metrics = newMetrics(s.registry)

	s.router.Handle("/hash", s.metrics.instrument("hash", &hashHandler{db: s.db, metrics: s.metrics})).Methods(http.MethodGet)
	s.router.Handle("/doc", s.metrics.instrument("doc", &contentHandler{loader: s.loader, metrics: s.metrics})).Methods(http.MethodGet)
	s.router.Handle("/files", s.metrics.instrument("files", http.HandlerFunc(s.files))).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	s.router.Use(middleware...)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) files(w http.ResponseWriter, r *http.Request) {
	names, err := s.db.ListFileNames()
	if err != nil {
		log.Errorf("listing files: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, names)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("writing response: %v", err)
	}
}
