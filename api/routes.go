package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// buildRoutes sets up and returns an *httprouter.Router connected to the
// given API.
func buildRoutes(a *API) *httprouter.Router {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(unrecognizedCallHandler)
	router.RedirectTrailingSlash = false

	// Miner status calls.
	router.GET("/miner", a.minerHandler)

	// Mining work calls.
	router.PUT("/mining/work", a.miningWorkHandlerPUT)
	router.GET("/mining/solved/:chainId/:height", a.miningSolvedHandlerGET)

	return router
}
