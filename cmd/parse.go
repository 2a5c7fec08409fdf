package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/citesweep/citesweep/internal/api"
	"github.com/citesweep/citesweep/internal/config"
	"github.com/citesweep/citesweep/internal/extract"
	"github.com/citesweep/citesweep/internal/fetch/mediawiki"
	"github.com/citesweep/citesweep/internal/logging"
	"github.com/citesweep/citesweep/internal/metrics"
	"github.com/citesweep/citesweep/internal/pipeline"
	"github.com/citesweep/citesweep/internal/pool"
	"github.com/citesweep/citesweep/internal/store/postgres"
	"github.com/citesweep/citesweep/internal/worker"
)

// newParseCmd creates the 'parse' subcommand, which runs one full
// ingestion pass over a pageid file.
func newParseCmd() *cobra.Command {
	var (
		timeout     time.Duration
		keepScratch bool
	)

	cmd := &cobra.Command{
		Use:   "parse <pageid-file>",
		Short: "Parses the given pages and stores their unsourced snippets",
		Long: `Reads one page id per line from the given file, fetches the pages in
batches and records every citation-needed snippet found. The run is
bounded by --timeout; on expiry outstanding work is abandoned and
whatever was already written is kept.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd.Context(), args[0], timeout, keepScratch)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "maximum run duration (0 = unlimited)")
	cmd.Flags().BoolVar(&keepScratch, "keep-scratch", false, "do not reset the scratch tables before the run")
	return cmd
}

func runParse(ctx context.Context, pageidFile string, timeout time.Duration, keepScratch bool) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush
	logger = logger.With(zap.String("run_id", uuid.NewString()))

	metrics.Init()
	if cfg.Debug.Addr != "" {
		go serveDebug(cfg.Debug.Addr, logger)
	}

	ids, err := readPageIDs(pageidFile)
	if err != nil {
		return err
	}
	batches := pool.MakeBatches(ids, cfg.Parse.BatchSize)
	logger.Info("scheduling run",
		zap.Int("pageids", len(ids)),
		zap.Int("batches", len(batches)),
		zap.Int("workers", cfg.Parse.Workers),
		zap.Duration("timeout", timeout),
	)

	storeCfg := postgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: int32(cfg.DB.MaxConns),
		MinConns: int32(cfg.DB.MinConns),
	}

	if !keepScratch {
		if err := resetScratch(ctx, storeCfg, logger); err != nil {
			return err
		}
	}

	initWorker := func(ctx context.Context) (*worker.Worker, error) {
		client := mediawiki.New(mediawiki.Config{
			APIURL:    cfg.APIURL(),
			UserAgent: cfg.Wiki.UserAgent,
			Timeout:   cfg.FetchTimeout(),
		}, logger)
		store, err := postgres.NewSnippetStore(ctx, storeCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("init worker store: %w", err)
		}
		return worker.New(client, extract.New(), store, worker.Config{
			WikiURL:        cfg.WikiURL(),
			SnippetMinSize: cfg.Parse.SnippetMinSize,
			SnippetMaxSize: cfg.Parse.SnippetMaxSize,
			LeadSection:    cfg.Parse.LeadSection,
		}, logger), nil
	}

	p, err := pool.New(pool.Config{
		Workers:     cfg.Parse.Workers,
		MaxFailures: cfg.Parse.MaxFailures,
		Deadline:    timeout,
	}, initWorker, logger)
	if err != nil {
		return err
	}

	res, err := p.Run(ctx, batches)
	if err != nil {
		return err
	}
	if res.TimedOut {
		logger.Info("timeout, canceling outstanding work",
			zap.Int("batches_completed", res.Completed),
			zap.Int("batches_isolated", res.Isolated),
		)
		return nil
	}
	logger.Info("all done",
		zap.Int("batches_completed", res.Completed),
		zap.Int("batches_isolated", res.Isolated),
		zap.Int("dead_workers", res.DeadWorkers),
	)
	return nil
}

func resetScratch(ctx context.Context, storeCfg postgres.Config, logger *zap.Logger) error {
	store, err := postgres.NewSnippetStore(ctx, storeCfg, logger)
	if err != nil {
		return fmt.Errorf("connect for scratch reset: %w", err)
	}
	defer store.Close()
	if err := store.Reset(ctx); err != nil {
		return err
	}
	logger.Info("scratch tables reset")
	return nil
}

func serveDebug(addr string, logger *zap.Logger) {
	logger.Info("debug server listening", zap.String("addr", addr))
	srv := api.NewServer(logger)
	if err := http.ListenAndServe(addr, srv.Handler()); err != nil { //nolint:gosec // debug listener
		logger.Error("debug server failed", zap.Error(err))
	}
}

// readPageIDs loads the newline-delimited pageid file. Blank lines are
// skipped; surrounding whitespace is trimmed. Duplicates are collapsed
// later, at batching time.
func readPageIDs(path string) ([]pipeline.PageID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pageid file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	var ids []pipeline.PageID
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ids = append(ids, pipeline.PageID(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read pageid file: %w", err)
	}
	return ids, nil
}
