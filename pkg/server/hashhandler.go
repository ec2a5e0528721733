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

package server

import (
	"errors"
	"net/http"

	"github.com/nlnwa/gocrawldoc/pkg/index"
	log "github.com/sirupsen/logrus"
)

type hashHandler struct {
	db      *index.Db
	metrics *metrics
}

func (h *hashHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	uri := r.URL.Query().Get("url")
	log.Debugf("hash request url: %v", uri)
	if uri == "" {
		http.Error(w, "Missing url parameter", http.StatusBadRequest)
		return
	}

	entry, ok := index.NewEntry(uri)
	if !ok {
		h.metrics.lookup("hash", lookupInvalid)
		http.Error(w, "URL has no identity", http.StatusBadRequest)
		return
	}

	ref, err := h.db.GetStorageRefByHash(entry.Hash)
	switch {
	case err == nil:
		entry.StorageRef = ref
		h.metrics.lookup("hash", lookupFound)
	case errors.Is(err, index.ErrNotFound):
		h.metrics.lookup("hash", lookupMissing)
	default:
		log.Errorf("lookup of %s: %v", uri, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entry)
}
