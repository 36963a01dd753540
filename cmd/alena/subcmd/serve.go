package subcmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zzzzlzzzz/alena"
	"github.com/zzzzlzzzz/alena/config"
	"github.com/zzzzlzzzz/alena/driver"
	"github.com/zzzzlzzzz/alena/driver/leveldb"
	"github.com/zzzzlzzzz/alena/driver/redis"
	"github.com/zzzzlzzzz/alena/jobs"
	"github.com/zzzzlzzzz/alena/queue"
	"github.com/zzzzlzzzz/alena/stat"
)

// OpenStore opens the driver named by cfg.Driver.
func OpenStore(cfg *config.Config) (store driver.StoreDriver, err error) {
	switch cfg.Driver {
	case "memstore":
		store = driver.NewMemStoreDriver()
	case "leveldb":
		store, err = leveldb.NewLevelDBDriver(cfg.DBPath)
	case "redis":
		store, err = redis.NewRedisDriver(cfg.Redis)
	default:
		err = fmt.Errorf("unknown driver: %q", cfg.Driver)
	}
	return
}

// Serve runs the task server on addr until ctx is done.
func Serve(ctx context.Context, cfg *config.Config, addr string, log *zap.Logger) error {
	store, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	registry := jobs.NewDelayedRegistry(cfg.ReverseDelay, cfg.TranspositionDelay)
	stats := stat.NewStats(driver.TYPE_REVERSE.String(), driver.TYPE_TRANSPOSITION.String())
	q := queue.New()
	defer q.Close()

	server := alena.NewServer(store, q, registry, stats, alena.Options{
		Timeout: cfg.Timeout,
		Workers: cfg.Workers,
		HTTP:    cfg.HTTP,
	}, log)
	log.Info("using driver", zap.String("driver", cfg.Driver))
	return server.ListenAndServe(ctx, addr)
}
