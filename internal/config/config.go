package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// ErrMissingConfig is returned by Validate when connection parameters are absent.
var ErrMissingConfig = errors.New("missing configuration")

type Neo4jConfig struct {
	URI      string `toml:"uri" env:"NEO4J_URI"`
	User     string `toml:"user" env:"NEO4J_USER"`
	Password string `toml:"password" env:"NEO4J_PASSWORD"`
	Database string `toml:"database" env:"NEO4J_DATABASE"`
	// MaxRetryTimeMS bounds the driver's retries inside one transaction.
	MaxRetryTimeMS int `toml:"max_retry_time_ms" env:"NEO4J_MAX_RETRY_TIME_MS"`
}

// FilesConfig names the per-entity dataset files inside the datasets directory.
type FilesConfig struct {
	Parties  string `toml:"partidos"`
	Deputies string `toml:"deputados"`
	Caucuses string `toml:"frentes"`
	Bodies   string `toml:"orgaos"`
	Bills    string `toml:"proposicoes"`
	Votes    string `toml:"votacoes"`
}

type ImportConfig struct {
	DatasetsDir              string      `toml:"datasets_dir" env:"DATASETS_DIR"`
	BatchSize                int         `toml:"batch_size" env:"IMPORT_BATCH_SIZE"`
	RetryAttempts            int         `toml:"retry_attempts" env:"IMPORT_RETRY_ATTEMPTS"`
	RetryBackoffMS           int         `toml:"retry_backoff_ms" env:"IMPORT_RETRY_BACKOFF_MS"`
	Parallel                 bool        `toml:"parallel" env:"IMPORT_PARALLEL"`
	SkipNulls                bool        `toml:"skip_nulls" env:"IMPORT_SKIP_NULLS"`
	SkipSecondaryConstraints bool        `toml:"skip_secondary_constraints" env:"IMPORT_SKIP_SECONDARY_CONSTRAINTS"`
	Files                    FilesConfig `toml:"files"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LOG_LEVEL"`
	Pretty bool   `toml:"pretty" env:"LOG_PRETTY"`
}

type ServerConfig struct {
	Port string `toml:"port" env:"PORT"`
}

type Config struct {
	Neo4j  Neo4jConfig  `toml:"neo4j"`
	Import ImportConfig `toml:"import"`
	Log    LogConfig    `toml:"log"`
	Server ServerConfig `toml:"server"`
}

// Default returns the configuration used for keys absent from the file.
func Default() *Config {
	return &Config{
		Neo4j: Neo4jConfig{
			Database: "neo4j",
		},
		Import: ImportConfig{
			DatasetsDir:    "datasets",
			BatchSize:      1000,
			RetryAttempts:  2,
			RetryBackoffMS: 1000,
			Files: FilesConfig{
				Parties:  "partidos.json",
				Deputies: "deputados.json",
				Caucuses: "frentes.json",
				Bodies:   "orgaos.json",
				Bills:    "proposicoes.json",
				Votes:    "votacoes.json",
			},
		},
		Log: LogConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Port: "8080",
		},
	}
}

// Load reads the TOML file at path over the defaults. An empty path skips
// the file. Environment variables named by the env tags are applied last;
// unset or empty variables leave the value alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the process environment. Missing
// files are ignored; variables already set are not overwritten.
func LoadEnvFiles(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Validate reports every missing connection parameter at once.
func (c *Config) Validate() error {
	var missing []string
	if c.Neo4j.URI == "" {
		missing = append(missing, "NEO4J_URI")
	}
	if c.Neo4j.User == "" {
		missing = append(missing, "NEO4J_USER")
	}
	if c.Neo4j.Password == "" {
		missing = append(missing, "NEO4J_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func (c ImportConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

func (c Neo4jConfig) MaxRetryTime() time.Duration {
	return time.Duration(c.MaxRetryTimeMS) * time.Millisecond
}
