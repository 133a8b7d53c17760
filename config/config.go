// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package config loads motif application settings from an optional YAML
// file, an optional .env file and MOTIF_* environment variables, in
// increasing order of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/motif/ai"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "MOTIF_"

var (
	// ErrInvalidConfig is returned when loaded settings fail validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds application settings.
type Config struct {
	// DataRoot is the directory manifest paths are resolved against.
	DataRoot string `yaml:"data_root"`

	// Manifest is the CSV file listing corpus paths.
	Manifest string `yaml:"manifest"`

	// Database is the badger directory holding indexed songs.
	Database string `yaml:"database"`

	LogLevel string `yaml:"log_level"`

	Scan      ScanConfig      `yaml:"scan"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Server    ServerConfig    `yaml:"server"`
}

// ScanConfig tunes pattern scans.
type ScanConfig struct {
	Workers     int           `yaml:"workers"`
	FileTimeout time.Duration `yaml:"file_timeout"`
}

// EmbeddingConfig describes the title embedding service.
type EmbeddingConfig struct {
	Host              string  `yaml:"host"`
	Model             string  `yaml:"model"`
	Token             string  `yaml:"token"`
	BatchSize         int     `yaml:"batch_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// PostgresConfig describes the optional pgvector feature store. An empty
// DSN disables it.
type PostgresConfig struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the built-in settings.
func Default() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		DataRoot: ".",
		Manifest: "data/manifest.csv",
		Database: "motif.db",
		LogLevel: "info",
		Embedding: EmbeddingConfig{
			Host:      aiDefaults.EmbeddingHost,
			Model:     aiDefaults.EmbeddingModel,
			Token:     aiDefaults.Token,
			BatchSize: aiDefaults.BatchSize,
		},
		Postgres: PostgresConfig{Table: "music_features"},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load builds the configuration. path names a YAML file and envFile a
// .env file; either may be empty, and a missing envFile is ignored.
// Variables already present in the environment win over envFile.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to unmarshal YAML config: %w", err)
	}
	return nil
}

// applyEnv overrides settings from MOTIF_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	num := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
				return
			}
			*dst = n
		}
	}

	str("DATA_ROOT", &c.DataRoot)
	str("MANIFEST", &c.Manifest)
	str("DB", &c.Database)
	str("LOG_LEVEL", &c.LogLevel)
	num("SCAN_WORKERS", &c.Scan.Workers)
	str("EMBEDDING_HOST", &c.Embedding.Host)
	str("EMBEDDING_MODEL", &c.Embedding.Model)
	str("EMBEDDING_TOKEN", &c.Embedding.Token)
	num("EMBEDDING_BATCH_SIZE", &c.Embedding.BatchSize)
	str("POSTGRES_DSN", &c.Postgres.DSN)
	str("POSTGRES_TABLE", &c.Postgres.Table)
	str("LISTEN_ADDR", &c.Server.Addr)

	if v, ok := lookup(EnvPrefix + "EMBEDDING_RPS"); ok {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sEMBEDDING_RPS: %w", EnvPrefix, err))
		} else {
			c.Embedding.RequestsPerSecond = rps
		}
	}
	if v, ok := lookup(EnvPrefix + "ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = strings.Split(v, ",")
	}
	if v, ok := lookup(EnvPrefix + "SCAN_FILE_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSCAN_FILE_TIMEOUT: %w", EnvPrefix, err))
		} else {
			c.Scan.FileTimeout = d
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks settings that have no usable fallback.
func (c *Config) Validate() error {
	switch {
	case c.DataRoot == "":
		return fmt.Errorf("%w: data_root is required", ErrInvalidConfig)
	case c.Scan.Workers < 0:
		return fmt.Errorf("%w: scan.workers must not be negative", ErrInvalidConfig)
	case c.Scan.FileTimeout < 0:
		return fmt.Errorf("%w: scan.file_timeout must not be negative", ErrInvalidConfig)
	case c.Embedding.RequestsPerSecond < 0:
		return fmt.Errorf("%w: embedding.requests_per_second must not be negative", ErrInvalidConfig)
	}
	return nil
}

// AIConfig returns the embedding settings as an ai.Config.
func (c *Config) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithToken(c.Embedding.Token),
		ai.WithBatchSize(c.Embedding.BatchSize),
	)
}
