package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/fuel-streams/fuel-indexer/buildinfo"
)

// router is a thin gorilla/mux wrapper giving main.go a small surface to
// mount sub-handlers and shared middleware onto before serving.
type router struct {
	r *mux.Router
}

func newRouter() *router {
	r := mux.NewRouter()
	r.PathPrefix("/").Methods(http.MethodOptions) // accept OPTIONS on all routes and do nothing
	return &router{r}
}

// Mount hands every request under prefix to handler with its full,
// unstripped path (used for the httpapi query routes and the WS upgrade
// endpoint).
func (r *router) Mount(prefix string, handler http.Handler) {
	r.r.PathPrefix(prefix).Handler(handler)
}

// Use adds middleware applied to every route (spec's ambient HTTP stack:
// CORS, trace id, logging, otel).
func (r *router) Use(mid ...mux.MiddlewareFunc) {
	r.r.Use(mid...)
}

// Serve starts listening on port in a background goroutine and returns the
// server at once, so the caller can shut it down later.
func (r *router) Serve(port string) *http.Server {
	srv := &http.Server{
		Addr:         ":" + port,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  120 * time.Second,
		Handler:      r.r,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info().Msg("http server gracefully closed")
				return
			}
			log.Fatal().Err(err).Str("port", port).Msg("couldn't start HTTP server")
		}
	}()
	return srv
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-type", "application/json")
	_ = json.NewEncoder(w).Encode(buildinfo.GetSummary())
}
