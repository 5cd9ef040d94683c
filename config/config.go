package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppName                       string `env:"APP_NAME" envDefault:"recommendations-api"`
	Port                          int    `env:"PORT" envDefault:"3004"`
	LogLevel                      string `env:"LOG_LEVEL" envDefault:"info"`
	PrettyLogs                    bool   `env:"PRETTY_LOGS" envDefault:"false"`
	TestMode                      bool   `env:"TEST_MODE" envDefault:"false"`
	HttpServerWriteTimeoutSeconds int    `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" envDefault:"10"`
	HttpServerReadTimeoutSeconds  int    `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" envDefault:"10"`
	HttpServerIdleTimeoutSeconds  int    `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" envDefault:"10"`

	// Graph Database (Neo4j)
	Neo4jURI      string `env:"NEO4J_URI" envDefault:"bolt://localhost:7687"`
	Neo4jUser     string `env:"NEO4J_USER" envDefault:""`
	Neo4jPassword string `env:"NEO4J_PASSWORD" envDefault:""`

	// SQS Consumer (vtagz change events - ingestion)
	SQSQueueURL                 string `env:"SQS_QUEUE_URL" envDefault:""`
	SQSQueueEndpoint            string `env:"SQS_QUEUE_ENDPOINT" envDefault:""`
	SQSMaxMessages              int32  `env:"SQS_MAX_MESSAGES" envDefault:"10"`
	SQSVisibilityTimeoutSeconds int32  `env:"SQS_VISIBILITY_TIMEOUT_SECONDS" envDefault:"15"`
	SQSWaitTimeSeconds          int32  `env:"SQS_WAIT_TIME_SECONDS" envDefault:"20"`
	SQSConsumerEnabled          bool   `env:"SQS_CONSUMER_ENABLED" envDefault:"true"`
}

// Load reads configuration from the environment, applying .env first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	// Long polling is disabled in test mode so the loop can be driven synchronously.
	if cfg.TestMode {
		cfg.SQSWaitTimeSeconds = 0
	}

	return cfg, nil
}
