// Package wsserver implements the Live Subscription Engine (spec §4.G): a
// WebSocket surface where a client subscribes to a wildcard subject,
// optionally replays history from a given block height, and then receives
// every new matching record as it's ingested.
//
// Grounded on _examples/original_source's sv-webserver/src/server/ws
// socket handling for the state machine, and on the teacher's
// pkg/eventprocessor for the broker subscription idiom this borrows its
// fan-out style from.
package wsserver

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/fuel-streams/fuel-indexer/pkg/apikey"
	"github.com/fuel-streams/fuel-indexer/pkg/broker"
	"github.com/fuel-streams/fuel-indexer/pkg/dataparser"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/catalogue"
	"github.com/fuel-streams/fuel-indexer/pkg/logging"
	"github.com/fuel-streams/fuel-indexer/pkg/metrics"
	"github.com/fuel-streams/fuel-indexer/pkg/subject"
)

const (
	// historyBatchSize bounds how many historical rows one fetch pulls at a
	// time while replaying (spec §4.G step 5). Small enough that a slow
	// client's backpressure shows up quickly, large enough to not thrash
	// the database with tiny pages.
	historyBatchSize = 200

	pingInterval = 30 * time.Second
	pongTimeout  = 60 * time.Second

	sendBufferSize = 256
)

// Config bundles the Engine's construction-time dependencies.
type Config struct {
	Namespace string
	Registry  *subject.Registry
	Repos     *catalogue.Repositories
	Broker    broker.Broker
	Keys      apikey.Store
	Limits    *apikey.Controller
	Parser    dataparser.Parser
	Metrics   *metrics.Domain // optional; nil disables instrument publishing
}

// Engine is the WS surface's process-wide state: one Engine serves every
// connection, handing each its own goroutines and channels.
type Engine struct {
	namespace string
	registry  *subject.Registry
	streams   map[string]stream
	broker    broker.Broker
	keys      apikey.Store
	limits    *apikey.Controller
	parser    dataparser.Parser
	metrics   *metrics.Domain
	log       zerolog.Logger
	upgrader  websocket.Upgrader
}

// New builds an Engine ready to serve HTTP upgrade requests.
func New(cfg Config) *Engine {
	return &Engine{
		namespace: cfg.Namespace,
		registry:  cfg.Registry,
		streams:   buildStreams(cfg.Repos),
		broker:    cfg.Broker,
		keys:      cfg.Keys,
		limits:    cfg.Limits,
		parser:    cfg.Parser,
		metrics:   cfg.Metrics,
		log:       logging.Component("wsserver"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Subscription access is gated by API key, not origin; the
			// browser-facing WebClient role is expected to connect
			// cross-origin from arbitrary frontends.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// apiKeyFrom extracts the bearer key from an upgrade request: the
// "X-Api-Key" header takes precedence, falling back to the "api_key" query
// parameter for clients that can't set custom headers (browser
// EventSource-style connections).
func apiKeyFrom(r *http.Request) string {
	if k := r.Header.Get("X-Api-Key"); k != "" {
		return k
	}
	return r.URL.Query().Get("api_key")
}

// ServeHTTP authenticates the upgrade request (spec §4.G step 1) and, on
// success, upgrades it and hands the connection off to its own read/write
// pumps. Wire this at whatever path cmd/api's router mounts the WS
// endpoint on.
func (e *Engine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := apiKeyFrom(r)
	role, err := e.keys.Resolve(key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newConnection(e, conn, key, role)
	c.run()
}
