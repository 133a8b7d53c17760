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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "motif",
		Usage: "Melodic pattern search and similarity over symbolic music corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML configuration file",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file with MOTIF_* settings",
				Value: ".env",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "find",
				Usage:     "Find corpus songs containing a note pattern",
				ArgsUsage: "<pattern.json|pattern.mid>",
				Action:    findCommand,
				Flags: []cli.Flag{
					manifestFlag(),
					dataRootFlag(),
					&cli.StringSliceFlag{
						Name:  "attr",
						Usage: "Note attribute compared when matching (repeatable)",
						Value: cli.NewStringSlice("pitch"),
					},
					&cli.IntFlag{
						Name:  "tolerance",
						Usage: "Allowed difference for integer attributes",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent file workers",
					},
					&cli.DurationFlag{
						Name:  "file-timeout",
						Usage: "Per-file time limit (0 for none)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the result as JSON",
					},
				},
			},
			{
				Name:   "manifest",
				Usage:  "Write a manifest of every JSON song under the data root",
				Action: manifestCommand,
				Flags: []cli.Flag{
					dataRootFlag(),
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of paths (0 for all)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file (default stdout)",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Encode features and embed titles for every manifest song",
				Action: indexCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					manifestFlag(),
					dataRootFlag(),
					postgresFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Songs per embedding request",
						Value: 64,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent load workers",
					},
					&cli.Float64Flag{
						Name:  "rps",
						Usage: "Maximum embedding requests per second (0 for unlimited)",
					},
				}, embeddingFlags()...),
			},
			{
				Name:      "search",
				Usage:     "Search song titles",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:    "max-results",
						Aliases: []string{"n"},
						Usage:   "Maximum number of titles",
						Value:   10,
					},
					&cli.BoolFlag{
						Name:  "hnsw",
						Usage: "Search an in-memory HNSW index instead of scanning",
					},
				}, embeddingFlags()...),
			},
			{
				Name:      "similar",
				Usage:     "List songs musically similar to the given titles",
				ArgsUsage: "<title>...",
				Action:    similarCommand,
				Flags: []cli.Flag{
					dbFlag(),
					postgresFlag(),
					&cli.IntFlag{
						Name:  "top-n",
						Usage: "Number of songs to list",
						Value: 5,
					},
				},
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all song titles with the configured model",
				Action: reembedCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of songs to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N songs",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				}, embeddingFlags()...),
			},
			{
				Name:      "export",
				Usage:     "Write a corpus song as a standard MIDI file",
				ArgsUsage: "<manifest path>",
				Action:    exportCommand,
				Flags: []cli.Flag{
					dataRootFlag(),
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Destination .mid file",
						Required: true,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					dbFlag(),
					manifestFlag(),
					dataRootFlag(),
					postgresFlag(),
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address",
					},
					&cli.BoolFlag{
						Name:  "hnsw",
						Usage: "Answer title searches from an in-memory HNSW index",
					},
				}, embeddingFlags()...),
			},
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "db",
		Aliases: []string{"d"},
		Usage:   "Path to BadgerDB database directory",
	}
}

func dataRootFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "data-root",
		Usage: "Directory manifest paths are resolved against",
	}
}

func manifestFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "manifest",
		Aliases: []string{"m"},
		Usage:   "CSV manifest listing corpus paths",
	}
}

func postgresFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "postgres-dsn",
		Usage: "pgvector feature store connection string",
	}
}

func embeddingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
