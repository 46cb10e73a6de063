package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jgivc/casebridge/internal/adapter/alephadapter"
	"github.com/jgivc/casebridge/internal/adapter/mhtmladapter"
	"github.com/jgivc/casebridge/internal/adapter/zipadapter"
	"github.com/jgivc/casebridge/internal/config"
	"github.com/jgivc/casebridge/internal/entity"
	"github.com/jgivc/casebridge/internal/repository/foldercache"
	"github.com/jgivc/casebridge/internal/service/folders"
	"github.com/jgivc/casebridge/internal/service/report"
	"github.com/jgivc/casebridge/internal/service/uploader"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const (
	defaultCategory = "other"
)

type App struct {
	cfgPath string
	cfg     *config.Config
	client  *alephadapter.Client
	log     *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath: cfgPath,
	}
}

func (a *App) setup() {
	a.cfg = config.MustLoad(a.cfgPath)

	lo := &slog.HandlerOptions{}
	switch a.cfg.LogLevel {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		panic("unknown log level")
	}
	a.log = slog.New(slog.NewTextHandler(os.Stderr, lo))

	a.client = alephadapter.NewClient(&a.cfg.Aleph, a.log)
}

func (a *App) folderCache(ctx context.Context) folders.FolderCache {
	if a.cfg.RedisURL == "" {
		return foldercache.NewMemoryCache(a.cfg.FolderCacheSeed)
	}

	opt, err := redis.ParseURL(a.cfg.RedisURL)
	if err != nil {
		panic(err)
	}

	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		panic(err)
	}

	return foldercache.NewRedisCache(rdb, a.log)
}

// Upload runs the full pipeline over one case archive.
func (a *App) Upload(ctx context.Context, archivePath string) error {
	a.setup()

	archive, err := zipadapter.New(a.log).Open(archivePath)
	if err != nil {
		return fmt.Errorf("cannot open case archive: %w", err)
	}
	defer archive.Close()

	resolver := folders.NewService(a.folderCache(ctx), a.client, a.log)
	collector := report.NewCollector(a.log)
	recon := mhtmladapter.New(a.log)

	srv := uploader.NewService(&a.cfg.Uploader, a.cfg.Aleph.CollectionID,
		recon, a.client, resolver, collector, afero.NewOsFs(), a.log)

	rep, runErr := srv.Run(ctx, archive)
	if rep != nil {
		a.printReport(rep)
		collector.Persist(afero.NewOsFs(), a.cfg.Uploader.ReportDir)
	}

	return runErr
}

// CreateCollection creates a new investigation and prints its id.
func (a *App) CreateCollection(ctx context.Context, label string) error {
	a.setup()

	collection, err := a.client.CreateCollection(ctx, entity.CollectionSpec{
		Label:    label,
		Category: defaultCategory,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created collection %s: %s\n", collection.ID, label)

	return nil
}

// DeleteCollections removes collections by id. Failures are reported per id,
// remaining ids are still processed.
func (a *App) DeleteCollections(ctx context.Context, ids []string) error {
	a.setup()

	var failed int
	for _, id := range ids {
		if err := a.client.DeleteCollection(ctx, id, true); err != nil {
			a.log.Error("Cannot delete collection", slog.String("id", id), slog.Any("error", err))
			failed++

			continue
		}

		fmt.Printf("Deleted collection %s\n", id)
	}

	if failed > 0 {
		return fmt.Errorf("cannot delete %d of %d collections", failed, len(ids))
	}

	return nil
}

func (a *App) printReport(rep *entity.RunReport) {
	fmt.Printf("Attempted: %d, uploaded: %d, skipped: %d, failed: %d\n",
		rep.Attempted, rep.Uploaded, rep.Skipped, rep.Failed)

	for i, res := range rep.Failures() {
		fmt.Printf("%d. FAILED %s: %s\n", i+1, res.Name, res.Error)
	}
}
