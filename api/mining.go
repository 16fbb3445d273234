package api

import (
	"io"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/kadena-io/chainweb-mining-worker/chainweb"
)

// MinerStatus contains all of the fields returned when querying the
// worker's status.
type MinerStatus struct {
	Version       chainweb.ChainwebVersion `json:"version"`
	Hashrate      float64                  `json:"hashrate"` // hashes per second
	HeadersSolved int                      `json:"headerssolved"`
}

// minerHandler handles the API call that queries the worker's status.
func (a *API) minerHandler(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	solved, _ := a.sup.Solved()
	writeJSON(w, MinerStatus{
		Version:       a.sup.Version(),
		Hashrate:      a.sup.Hashrate(),
		HeadersSolved: solved,
	})
}

// miningWorkHandlerPUT handles the API call to submit a candidate header
// for mining. The request body is the raw serialized header; submission
// replaces any pending job.
func (a *API) miningWorkHandlerPUT(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	buf, err := io.ReadAll(req.Body)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := a.sup.SubmitBytes(buf); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	a.logf("accepted work of %v bytes", len(buf))
	writeSuccess(w)
}

// miningSolvedHandlerGET handles the API call that polls for a solved
// header by chain id and block height. The response body is the raw
// serialized header; a 404 means no result has been published for the
// key yet.
func (a *API) miningSolvedHandlerGET(w http.ResponseWriter, req *http.Request, ps httprouter.Params) {
	key, err := headerKeyFromParams(ps)
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	header, ok := a.sup.Poll(key)
	if !ok {
		writeError(w, "no solved header for this chain and height", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(header.Bytes())
}
