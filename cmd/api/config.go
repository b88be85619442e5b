package main

import (
	"encoding/json"
	"os"
	"path"
	"strings"

	"github.com/omeid/uconfig"
	"github.com/omeid/uconfig/plugins"
	"github.com/omeid/uconfig/plugins/file"
	"github.com/rs/zerolog/log"
)

// configFilename is the filename of the config file automatically loaded
// from the data directory.
var configFilename = "config.json"

type config struct {
	Namespace string `default:"" env:"NAMESPACE"`

	Postgres PostgresConfig
	Broker   BrokerConfig
	HTTP     HTTPConfig
	WS       WSConfig
	Ingest   IngestConfig

	Metrics struct {
		Port string `default:"9090"`
	}
	Log struct {
		Human bool `default:"false"`
		Debug bool `default:"false"`
	}

	APIKeys []APIKeyConfig
}

// PostgresConfig holds the connection string for the persisted store (spec
// §6.4).
type PostgresConfig struct {
	URI string `default:"postgres://localhost:5432/fuel_indexer?sslmode=disable" env:"POSTGRES_URI"`
}

// BrokerConfig holds the NATS connection parameters (spec §4.E).
type BrokerConfig struct {
	URL     string `default:"nats://localhost:4222" env:"BROKER_URL"`
	AckWait string `default:"5s"`
}

// HTTPConfig contains configuration for the HTTP query API (spec §6.2).
type HTTPConfig struct {
	Port string `default:"8080"`

	ConnRateLimInterval       string `default:"1s"`
	ConnMaxRequestPerInterval uint64 `default:"500"` // pre-auth, per-ip flood guard
}

// WSConfig contains configuration for the live subscription engine (spec
// §4.G), served on the same HTTP server as the query API.
type WSConfig struct {
	Path string `default:"/ws"`
}

// IngestConfig holds the ingest pipeline's tunables (spec §4.F).
type IngestConfig struct {
	BlockBatchSize int `default:"16"`
}

// APIKeyConfig binds one provisioned key to its role (spec §4.H). Key
// provisioning itself is deployment glue (spec.md §1 out of scope); this
// is just the static seed for pkg/apikey.StaticStore.
type APIKeyConfig struct {
	Key  string `default:""`
	Role string `default:"web_client"`
}

func setupConfig(dirPath string) *config {
	_ = os.MkdirAll(dirPath, 0o755)

	var plugs []plugins.Plugin
	fullPath := path.Join(dirPath, configFilename)
	configFileBytes, err := os.ReadFile(fullPath)
	if os.IsNotExist(err) {
		log.Info().Str("config_file_path", fullPath).Msg("config file not found")
	} else if err != nil {
		log.Fatal().Str("config_file_path", fullPath).Err(err).Msg("opening config file")
	} else {
		fileStr := os.ExpandEnv(string(configFileBytes))
		plugs = append(plugs, file.NewReader(strings.NewReader(fileStr), json.Unmarshal))
	}

	conf := &config{}
	c, err := uconfig.Classic(&conf, file.Files{}, plugs...)
	if err != nil {
		c.Usage()
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	return conf
}
