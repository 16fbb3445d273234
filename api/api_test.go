package api

import (
	"bytes"
	"crypto/sha512"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NebulousLabs/fastrand"
	"github.com/kadena-io/chainweb-mining-worker/chainweb"
	"github.com/kadena-io/chainweb-mining-worker/persist"
	"github.com/kadena-io/chainweb-mining-worker/supervisor"
)

// newTestAPI builds an API over a one-core supervisor and closes both
// when the test ends.
func newTestAPI(t *testing.T) *API {
	sup, err := supervisor.New(supervisor.Config{
		Cores:   1,
		Version: chainweb.Test,
		Log:     persist.NewStreamLogger(io.Discard),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := sup.Close(); err != nil {
			t.Error(err)
		}
	})
	return New(sup, nil)
}

// request runs one HTTP request against the API and returns the recorded
// response.
func request(a *API, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	w := httptest.NewRecorder()
	a.ServeHTTP(w, req)
	return w
}

// TestMiningWorkAndSolved submits work over HTTP and polls the solved
// header back.
func TestMiningWorkAndSolved(t *testing.T) {
	a := newTestAPI(t)

	header := chainweb.NewRawHeader(0, 0, 2, 9, chainweb.MaxTarget).WithPayload(fastrand.Bytes(28))
	w := request(a, http.MethodPut, "/mining/work", header.Bytes())
	if w.Code != http.StatusOK {
		t.Fatal("submit failed:", w.Code, w.Body.String())
	}

	var solved []byte
	for start := time.Now(); ; {
		w := request(a, http.MethodGet, "/mining/solved/2/9", nil)
		if w.Code == http.StatusOK {
			solved = w.Body.Bytes()
			break
		}
		if w.Code != http.StatusNotFound {
			t.Fatal("unexpected poll status:", w.Code, w.Body.String())
		}
		if time.Since(start) > 30*time.Second {
			t.Fatal("no solved header was ever published")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if len(solved) != chainweb.RawHeaderLength {
		t.Fatal("solved header has the wrong length:", len(solved))
	}
	digest := sha512.Sum512_256(solved)
	if !chainweb.MaxTarget.Meets(digest) {
		t.Error("the solved header does not meet its target")
	}
	if !bytes.Equal(solved[16:], header.Bytes()[16:]) {
		t.Error("the solved header differs from the submission outside the nonce/time bytes")
	}
}

// TestMiningWorkRejectsMalformed checks that a bad submission is a 400,
// not an accepted job.
func TestMiningWorkRejectsMalformed(t *testing.T) {
	a := newTestAPI(t)

	w := request(a, http.MethodPut, "/mining/work", fastrand.Bytes(10))
	if w.Code != http.StatusBadRequest {
		t.Error("expected a 400 for a short header, got", w.Code)
	}
}

// TestMiningSolvedBadParams checks parameter validation on the poll
// route.
func TestMiningSolvedBadParams(t *testing.T) {
	a := newTestAPI(t)

	w := request(a, http.MethodGet, "/mining/solved/notanumber/9", nil)
	if w.Code != http.StatusBadRequest {
		t.Error("expected a 400 for a bad chain id, got", w.Code)
	}
	w = request(a, http.MethodGet, "/mining/solved/2/notanumber", nil)
	if w.Code != http.StatusBadRequest {
		t.Error("expected a 400 for a bad height, got", w.Code)
	}
	w = request(a, http.MethodGet, "/mining/solved/2/9", nil)
	if w.Code != http.StatusNotFound {
		t.Error("expected a 404 for an unsolved key, got", w.Code)
	}
}

// TestMinerStatus checks the status call's JSON shape.
func TestMinerStatus(t *testing.T) {
	a := newTestAPI(t)

	w := request(a, http.MethodGet, "/miner", nil)
	if w.Code != http.StatusOK {
		t.Fatal("status call failed:", w.Code)
	}
	var status MinerStatus
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Version != chainweb.Test {
		t.Error("status reports the wrong version:", status.Version)
	}
}

// TestUnrecognizedCall checks the 404 handler.
func TestUnrecognizedCall(t *testing.T) {
	a := newTestAPI(t)

	w := request(a, http.MethodGet, "/definitely/not/a/route", nil)
	if w.Code != http.StatusNotFound {
		t.Error("expected a 404 for an unknown route, got", w.Code)
	}
}
