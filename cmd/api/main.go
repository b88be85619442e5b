package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/textileio/cli"

	"github.com/fuel-streams/fuel-indexer/buildinfo"
	"github.com/fuel-streams/fuel-indexer/pkg/apikey"
	"github.com/fuel-streams/fuel-indexer/pkg/blocksource"
	"github.com/fuel-streams/fuel-indexer/pkg/broker"
	"github.com/fuel-streams/fuel-indexer/pkg/dataparser"
	"github.com/fuel-streams/fuel-indexer/pkg/domain/catalogue"
	"github.com/fuel-streams/fuel-indexer/pkg/httpapi"
	"github.com/fuel-streams/fuel-indexer/pkg/httpmw"
	"github.com/fuel-streams/fuel-indexer/pkg/ingest"
	"github.com/fuel-streams/fuel-indexer/pkg/logging"
	"github.com/fuel-streams/fuel-indexer/pkg/metrics"
	"github.com/fuel-streams/fuel-indexer/pkg/sqlstore/postgres"
	"github.com/fuel-streams/fuel-indexer/pkg/wsserver"
)

func main() {
	var dirPath string

	root := &cobra.Command{
		Use:   "fuel-indexer-api",
		Short: "Fuel indexer ingest pipeline and query API",
	}
	root.PersistentFlags().StringVar(
		&dirPath, "dir", os.ExpandEnv("${HOME}/.fuel-indexer"), "directory where config and state live")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run the ingest pipeline and the HTTP/WS query API",
		Run: func(cmd *cobra.Command, args []string) {
			runServe(dirPath)
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "run pending database migrations and exit",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrate(dirPath)
		},
	}

	root.AddCommand(serveCmd, migrateCmd)
	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}

func runMigrate(dirPath string) {
	conf := setupConfig(dirPath)
	logging.SetupLogger("fuel-indexer-api", buildinfo.GitCommit, conf.Log.Debug, conf.Log.Human)
	if err := postgres.Migrate(conf.Postgres.URI); err != nil {
		log.Fatal().Err(err).Msg("running migrations")
	}
	log.Info().Msg("migrations applied")
}

func runServe(dirPath string) {
	conf := setupConfig(dirPath)

	logging.SetupLogger("fuel-indexer-api", buildinfo.GitCommit, conf.Log.Debug, conf.Log.Human)

	if err := metrics.SetupInstrumentation(":"+conf.Metrics.Port, "fuel_indexer_api"); err != nil {
		log.Fatal().Err(err).Str("port", conf.Metrics.Port).Msg("could not setup instrumentation")
	}
	domainMetrics, err := metrics.NewDomain()
	if err != nil {
		log.Fatal().Err(err).Msg("registering domain instruments")
	}

	ctx, cancel := context.WithCancel(context.Background())

	store, err := postgres.New(ctx, conf.Postgres.URI)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to postgres")
	}

	registry := catalogue.NewRegistry()
	repos := catalogue.NewRepositories(store)

	ackWait, err := time.ParseDuration(conf.Broker.AckWait)
	if err != nil {
		log.Fatal().Err(err).Msg("parsing broker ack wait")
	}
	brk, err := broker.Connect(broker.Config{
		URL:       conf.Broker.URL,
		Namespace: conf.Namespace,
		AckWait:   ackWait,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to broker")
	}

	keys := apikey.NewStaticStore(apiKeysFrom(conf.APIKeys))
	limits := apikey.NewController()
	parser := dataparser.NewZstdJSON()

	// The real Fuel node client is an external collaborator (spec.md §1);
	// local/dev deployments seed it with an empty in-memory source until
	// one is wired in.
	source := blocksource.NewMemory()

	pipeline := ingest.New(ingest.Config{
		Namespace:      conf.Namespace,
		BlockBatchSize: conf.Ingest.BlockBatchSize,
	}, source, parser, brk, store, repos, registry)

	pipelineDone := make(chan error, 1)
	go func() { pipelineDone <- pipeline.Run(ctx) }()

	connLimiter, err := httpmw.ConnectionRateLimiter(httpmw.ConnectionRateLimiterConfig{
		MaxRPI:   conf.HTTP.ConnMaxRequestPerInterval,
		Interval: mustParseDuration(conf.HTTP.ConnRateLimInterval),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("configuring connection rate limiter")
	}

	apiRouter := httpapi.NewRouter(repos, parser)
	apiRouter.Use(
		connLimiter,
		httpmw.Authentication(keys),
		httpmw.RateLimiter(limits),
	)

	r := newRouter()
	r.Use(httpmw.TraceID, httpmw.WithLogging, httpmw.OtelHTTP("fuel_indexer_api"), httpmw.CORS)
	r.Mount("/health", http.HandlerFunc(healthHandler))
	r.Mount(conf.WS.Path, wsserver.New(wsserver.Config{
		Namespace: conf.Namespace,
		Registry:  registry,
		Repos:     repos,
		Broker:    brk,
		Keys:      keys,
		Limits:    limits,
		Parser:    parser,
		Metrics:   domainMetrics,
	}))
	r.Mount("/", apiRouter) // catch-all; must be mounted last

	srv := r.Serve(conf.HTTP.Port)

	cli.HandleInterrupt(func() {
		log.Info().Msg("shutting down")

		shutdownCtx, cls := context.WithTimeout(context.Background(), 10*time.Second)
		defer cls()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutting down http server")
		}

		cancel()
		select {
		case err := <-pipelineDone:
			if err != nil && err != context.Canceled {
				log.Error().Err(err).Msg("ingest pipeline stopped")
			}
		case <-time.After(30 * time.Second):
			log.Warn().Msg("ingest pipeline didn't drain in time")
		}

		brk.Close()
		store.Close()
	})
}

func apiKeysFrom(cfgs []APIKeyConfig) map[string]apikey.Role {
	keys := make(map[string]apikey.Role, len(cfgs))
	for _, c := range cfgs {
		if c.Key == "" {
			continue
		}
		keys[c.Key] = apikey.Role(c.Role)
	}
	return keys
}

func mustParseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Fatal().Err(err).Str("duration", s).Msg("parsing configured duration")
	}
	return d
}
