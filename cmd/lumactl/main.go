// lumactl is the offline companion to the API server: batch ingestion,
// search index administration, and thumbnail derivation.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lumakr/luma/internal/config"
	dbMongo "github.com/lumakr/luma/internal/db/mongo"
	dbRedis "github.com/lumakr/luma/internal/db/redis"
	"github.com/lumakr/luma/internal/fetch"
	logpkg "github.com/lumakr/luma/internal/logger"
	"github.com/lumakr/luma/internal/repository/blob"
	"github.com/lumakr/luma/internal/repository/faillog"
	recordrepo "github.com/lumakr/luma/internal/repository/record"
	"github.com/lumakr/luma/internal/repository/searchindex"
	indexuc "github.com/lumakr/luma/internal/usecase/index"
	ingestuc "github.com/lumakr/luma/internal/usecase/ingest"
	mediauc "github.com/lumakr/luma/internal/usecase/media"
	thumbnailuc "github.com/lumakr/luma/internal/usecase/thumbnail"
	"github.com/lumakr/luma/internal/version"
)

var rootCmd = &cobra.Command{
	Use:     "lumactl",
	Short:   "Content administration for the luma service",
	Version: fmt.Sprintf("%s (%s)", version.Version, version.Commit),
}

var (
	ingestOverwrite bool
	ingestWorkers   int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [manifest.json]",
	Short: "Ingest records from a JSON manifest",
	Long: `Reads a JSON array of record inputs and saves each one atomically,
downloading referenced media. Records whose serial number already
exists are skipped unless --overwrite is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

var setupIndexCmd = &cobra.Command{
	Use:   "setup-index",
	Short: "Rebuild the per-language search indices",
	Long: `Drops every language index together with its indexed documents and
completion dictionary, then recreates them empty. Run reindex afterwards.`,
	RunE: runSetupIndex,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [record-id]",
	Short: "Project records into the search indices",
	Long:  `Reindexes one record by id, or every stored record when no id is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReindex,
}

var thumbnailsListFailures bool

var thumbnailsCmd = &cobra.Command{
	Use:   "thumbnails",
	Short: "Derive thumbnails for stored assets",
	Long: `Re-derives a fixed-width JPEG thumbnail for every stored raster asset.
Assets that cannot be processed are recorded in the failure log.`,
	RunE: runThumbnails,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestOverwrite, "overwrite", false, "Refetch media and ignore the serial number idempotency check")
	ingestCmd.Flags().IntVar(&ingestWorkers, "workers", 0, "Concurrent record saves (default from config)")
	thumbnailsCmd.Flags().BoolVar(&thumbnailsListFailures, "list-failures", false, "Print the failure log instead of running the batch")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(setupIndexCmd)
	rootCmd.AddCommand(reindexCmd)
	rootCmd.AddCommand(thumbnailsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the configuration and logger every command needs.
type app struct {
	cfg config.Config
	log *zap.Logger
}

func newApp() (*app, error) {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	return &app{cfg: cfg, log: logger}, nil
}

func (a *app) openMongo(ctx context.Context) (*dbMongo.Client, error) {
	client, err := dbMongo.Connect(ctx, dbMongo.Config{
		URI:      a.cfg.Mongo.URI,
		Database: a.cfg.Mongo.Database,
	})
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	if err := client.WaitForReady(ctx, time.Duration(a.cfg.Mongo.ReadinessTimeout)*time.Second); err != nil {
		return nil, err
	}
	return client, nil
}

func (a *app) openSearch(ctx context.Context) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    a.cfg.Search.Addrs,
		Username: a.cfg.Search.Username,
		Password: a.cfg.Search.Password,
		DB:       a.cfg.Search.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect search store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(a.cfg.Search.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()
	ctx := cmd.Context()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	var inputs []ingestuc.RecordInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return fmt.Errorf("parse manifest: %w", err)
	}
	if len(inputs) == 0 {
		return fmt.Errorf("manifest is empty")
	}

	client, err := a.openMongo(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	recordRepo := recordrepo.NewRepository(client.Database())
	blobStore, err := blob.NewStore(client.Database())
	if err != nil {
		return err
	}
	if err := recordRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := blobStore.EnsureIndexes(ctx); err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: time.Duration(a.cfg.Fetch.TimeoutSec) * time.Second}
	fetcher := fetch.New(httpClient, fetch.Config{
		MaxRetries: a.cfg.Fetch.MaxRetries,
		RetryDelay: time.Duration(a.cfg.Fetch.RetryDelaySec) * time.Second,
	}, a.log)
	mediaSvc := mediauc.New(fetcher, blobStore)

	workers := ingestWorkers
	if workers <= 0 {
		workers = a.cfg.Ingest.Workers
	}
	svc := ingestuc.New(recordRepo, mediaSvc, client, workers, a.log)

	a.log.Info("Ingesting records",
		zap.Int("count", len(inputs)),
		zap.Int("workers", workers),
		zap.Bool("overwrite", ingestOverwrite),
	)
	result, err := svc.SaveBatch(ctx, inputs, ingestOverwrite)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "saved %d, failed %d\n", result.Saved, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("%d records failed", result.Failed)
	}
	return nil
}

func runSetupIndex(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()
	ctx := cmd.Context()

	store, err := a.openSearch(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	indexRepo := searchindex.NewRepository(store, a.cfg.Search.KeyPrefix)
	if err := indexRepo.Setup(ctx); err != nil {
		return fmt.Errorf("setup indices: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "search indices rebuilt")
	return nil
}

func runReindex(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()
	ctx := cmd.Context()

	client, err := a.openMongo(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	store, err := a.openSearch(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	recordRepo := recordrepo.NewRepository(client.Database())
	indexRepo := searchindex.NewRepository(store, a.cfg.Search.KeyPrefix)
	svc := indexuc.New(recordRepo, indexRepo, a.log)

	if len(args) == 1 {
		if err := svc.ReindexOne(ctx, args[0]); err != nil {
			return fmt.Errorf("reindex %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reindexed %s\n", args[0])
		return nil
	}

	count, err := svc.ReindexAll(ctx)
	fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d records\n", count)
	return err
}

func runThumbnails(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()
	ctx := cmd.Context()

	client, err := a.openMongo(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close(ctx) }()

	fails := faillog.NewRepository(client.Database())

	if thumbnailsListFailures {
		failures, err := fails.List(ctx)
		if err != nil {
			return err
		}
		for _, f := range failures {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n",
				f.Handle, f.RecordedAt.Format(time.RFC3339), f.Reason)
		}
		return nil
	}

	blobStore, err := blob.NewStore(client.Database())
	if err != nil {
		return err
	}

	svc := thumbnailuc.New(blobStore, fails, thumbnailuc.Config{
		Width:   a.cfg.Thumbnail.Width,
		Quality: a.cfg.Thumbnail.Quality,
		Workers: a.cfg.Thumbnail.Workers,
	}, a.log)

	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "derived %d, skipped %d, failed %d\n",
		result.Derived, result.Skipped, result.Failed)
	return nil
}
