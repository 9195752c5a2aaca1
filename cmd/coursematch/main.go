// Copyright 2026 Poiesic Systems
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/coursematch"
	"github.com/poiesic/coursematch/config"
	"github.com/poiesic/coursematch/core"
	"github.com/poiesic/coursematch/corpus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	topFlag := &cli.IntFlag{
		Name:    "top",
		Aliases: []string{"k"},
		Usage:   "Number of results to return",
		Value:   5,
	}

	return &cli.App{
		Name:  "coursematch",
		Usage: "Course recommendations from a TF-IDF vector space",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"COURSEMATCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides config)",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Path to the course catalog, CSV or SQLite (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Print Prometheus metrics to stderr after the command",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Fit the vector space and persist it",
				Action: buildCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Refit even when the persisted space matches the catalog",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Rank courses against a free-text query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags:     []cli.Flag{topFlag},
			},
			{
				Name:      "similar",
				Usage:     "List courses similar to a course",
				ArgsUsage: "<code>",
				Action:    similarCommand,
				Flags:     []cli.Flag{topFlag},
			},
			{
				Name:      "course",
				Usage:     "Show one course",
				ArgsUsage: "<code>",
				Action:    courseCommand,
			},
			{
				Name:   "status",
				Usage:  "Show corpus and vector space status",
				Action: statusCommand,
			},
			{
				Name:   "import",
				Usage:  "Import a CSV catalog into a SQLite catalog",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "csv",
						Usage:    "CSV catalog to read",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "SQLite database to write",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Table to replace",
						Value: "courses",
					},
				},
			},
		},
	}
}

func buildCommand(c *cli.Context) error {
	return withRecommender(c, func(ctx context.Context, rec *coursematch.Recommender) error {
		if err := rec.Rebuild(ctx, c.Bool("force")); err != nil {
			return fmt.Errorf("build failed: %w", err)
		}
		status, err := rec.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(c, status)
		return nil
	})
}

func searchCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	return withRecommender(c, func(ctx context.Context, rec *coursematch.Recommender) error {
		results, err := rec.Search(ctx, query, c.Int("top"))
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		printResults(c, results)
		return nil
	})
}

func similarCommand(c *cli.Context) error {
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("course code is required")
	}
	return withRecommender(c, func(ctx context.Context, rec *coursematch.Recommender) error {
		results, err := rec.Similar(ctx, code, c.Int("top"))
		if err != nil {
			return fmt.Errorf("similar failed: %w", err)
		}
		printResults(c, results)
		return nil
	})
}

func courseCommand(c *cli.Context) error {
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("course code is required")
	}
	return withRecommender(c, func(ctx context.Context, rec *coursematch.Recommender) error {
		course, err := rec.Course(ctx, code)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s: %s (%g credits)\n%s\n", course.Code, course.Title, course.Credits, course.Description)
		return nil
	})
}

func statusCommand(c *cli.Context) error {
	return withRecommender(c, func(ctx context.Context, rec *coursematch.Recommender) error {
		status, err := rec.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(c, status)
		return nil
	})
}

func importCommand(c *cli.Context) error {
	ctx := context.Background()

	records, err := corpus.NewCSVSource(c.String("csv")).Records(ctx)
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	// Reject catalogs the recommender would refuse to load.
	if _, err := corpus.Load(records); err != nil {
		return err
	}

	dest, err := corpus.OpenSQLiteSource(c.String("out"), corpus.WithTable(c.String("table")))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer dest.Close()

	if err := dest.ReplaceAll(ctx, records); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d courses into %s\n", len(records), c.String("out"))
	return nil
}

// withRecommender loads the configuration, opens the catalog and the
// database, and runs fn against a recommender built from them.
func withRecommender(c *cli.Context, fn func(context.Context, *coursematch.Recommender) error) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if !c.IsSet("log-level") {
		level, _ := config.ParseLevel(cfg.Logging.Level)
		setDefaultLogger(level)
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	opts := []coursematch.Option{
		coursematch.WithBuildConfig(cfg.BuildConfig()),
		coursematch.WithWorkers(cfg.Vectorizer.Workers),
		coursematch.WithProgress(c.App.ErrWriter, 100),
		coursematch.WithLogger(slog.Default()),
	}
	if !cfg.Database.InMemory {
		opts = append(opts, coursematch.WithDatabasePath(cfg.Database.Path))
	}
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled || c.Bool("metrics") {
		registry = prometheus.NewRegistry()
		opts = append(opts, coursematch.WithMetrics(registry))
	}

	rec, err := coursematch.NewRecommender(source, opts...)
	if err != nil {
		return fmt.Errorf("failed to open recommender: %w", err)
	}
	defer rec.Close()

	if err := fn(ctx, rec); err != nil {
		return err
	}
	if registry != nil {
		return writeMetrics(c, registry)
	}
	return nil
}

func loadConfig(c *cli.Context) (config.Config, error) {
	var cfg config.Config
	if path := c.String("config"); path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if cfg, err = config.Decode(data); err != nil {
			return cfg, err
		}
	}
	if db := c.String("db"); db != "" {
		cfg.Database.Path = db
		cfg.Database.InMemory = false
	}
	if catalog := c.String("catalog"); catalog != "" {
		cfg.Catalog.Path = catalog
		cfg.Catalog.Format = ""
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openSource(cfg config.Config) (corpus.Source, func() error, error) {
	switch cfg.Catalog.Format {
	case config.FormatSQLite:
		src, err := corpus.OpenSQLiteSource(cfg.Catalog.Path,
			corpus.WithTable(cfg.Catalog.Table),
			corpus.WithSQLiteLogger(slog.Default()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open catalog: %w", err)
		}
		return src, src.Close, nil
	default:
		return corpus.NewCSVSource(cfg.Catalog.Path), func() error { return nil }, nil
	}
}

func printResults(c *cli.Context, results []*core.SearchResult) {
	fmt.Fprintf(c.App.Writer, "Found %d courses\n", len(results))
	for _, hit := range results {
		fmt.Fprintf(c.App.Writer, "%d: %s '%s' (%g credits)[%0.3f]\n",
			hit.Rank, hit.Course.Code, hit.Course.Title, hit.Course.Credits, hit.Score)
	}
}

func printStatus(c *cli.Context, status core.Status) {
	fmt.Fprintf(c.App.Writer, "Courses: %d\n", status.CorpusSize)
	fmt.Fprintf(c.App.Writer, "Vocabulary: %d\n", status.VocabularySize)
	fmt.Fprintf(c.App.Writer, "Persisted: %t\n", status.CacheFresh)
	fmt.Fprintf(c.App.Writer, "Origin: %s\n", status.Origin)
	if !status.BuiltAt.IsZero() {
		fmt.Fprintf(c.App.Writer, "Built: %s\n", status.BuiltAt.Format("2006-01-02 15:04:05 MST"))
	}
}

func writeMetrics(c *cli.Context, registry *prometheus.Registry) error {
	families, err := registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(c.App.ErrWriter, mf); err != nil {
			return err
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := c.String("log-level")
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := config.ParseLevel(levelStr)
	if err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
	setDefaultLogger(level)
	return nil
}

func setDefaultLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
