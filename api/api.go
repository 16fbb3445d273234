// Package api exposes the Supervisor's submit/poll contract over HTTP.
// The mining packages themselves own no transport; this package is the
// outer surface a deployable worker needs.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"github.com/kadena-io/chainweb-mining-worker/persist"
	"github.com/kadena-io/chainweb-mining-worker/supervisor"
)

// API wraps a Supervisor with an httprouter-backed HTTP server. No
// authentication or rate limiting is implemented; that is the enclosing
// deployment's responsibility.
type API struct {
	sup    *supervisor.Supervisor
	log    *persist.Logger
	router *httprouter.Router
}

// New builds an API around sup. log may be nil, in which case requests
// are not logged.
func New(sup *supervisor.Supervisor, log *persist.Logger) *API {
	a := &API{sup: sup, log: log}
	a.router = buildRoutes(a)
	return a
}

// ServeHTTP implements http.Handler.
func (a *API) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	a.router.ServeHTTP(w, req)
}

func (a *API) logf(format string, args ...interface{}) {
	if a.log == nil {
		return
	}
	a.log.Printf(format, args...)
}

// unrecognizedCallHandler handles calls to unknown routes (404).
func unrecognizedCallHandler(w http.ResponseWriter, req *http.Request) {
	http.Error(w, "404 - unrecognized call", http.StatusNotFound)
}

// writeError writes an error to the API caller.
func writeError(w http.ResponseWriter, msg string, status int) {
	http.Error(w, msg, status)
}

// writeJSON writes obj to w as JSON. If encoding fails, an error is
// written instead.
func writeJSON(w http.ResponseWriter, obj interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if json.NewEncoder(w).Encode(obj) != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}

// writeSuccess writes {"success":true} to the ResponseWriter.
func writeSuccess(w http.ResponseWriter) {
	writeJSON(w, struct {
		Success bool `json:"success"`
	}{true})
}

// headerKeyFromParams extracts a chainweb.Key from the :chainId and
// :height httprouter params of the poll route.
func headerKeyFromParams(ps httprouter.Params) (chainweb.Key, error) {
	var key chainweb.Key
	if err := scanUint32(ps.ByName("chainId"), &key.ChainID); err != nil {
		return key, err
	}
	if err := scanUint64(ps.ByName("height"), &key.Height); err != nil {
		return key, err
	}
	return key, nil
}
