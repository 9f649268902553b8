package main

import (
	"context"
	"net"
	"net/http"

	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/signals"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/database"
	"github.com/shishobooks/locallibrary/pkg/migrations"
	"github.com/shishobooks/locallibrary/pkg/server"
	"github.com/shishobooks/locallibrary/pkg/version"
	"github.com/uptrace/bun"
)

func main() {
	ctx := context.Background()
	log := logger.New()

	log.Info("starting locallibrary", logger.Data{"version": version.Version})

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Err(err).Fatal("database error")
	}

	group, err := migrations.BringUpToDate(ctx, db)
	if err != nil {
		log.Err(err).Fatal("migrations error")
	}
	if group.ID == 0 {
		log.Info("no new migrations to run")
	} else {
		log.Info("migrated to new group", logger.Data{"group_id": group.ID, "migration_names": group.Migrations.String()})
	}

	if cfg.SeedSampleData {
		seedCatalog(ctx, db, log)
	}

	srv, err := server.New(cfg, db)
	if err != nil {
		log.Err(err).Fatal("server error")
	}

	graceful := signals.Setup()

	go func() {
		lc := net.ListenConfig{}
		listener, err := lc.Listen(ctx, "tcp", srv.Addr)
		if err != nil {
			log.Err(err).Fatal("failed to bind port")
		}

		// ServerPort may be 0, so report the port actually bound.
		actualPort := listener.Addr().(*net.TCPAddr).Port
		log.Info("server started", logger.Data{"port": actualPort, "environment": cfg.Environment})

		err = srv.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Fatal("server stopped")
		}
		log.Info("server stopped")
	}()

	<-graceful
	log.Info("starting graceful shutdown")

	err = srv.Shutdown(ctx)
	if err != nil {
		log.Err(err).Error("server shutdown error")
	}
	log.Info("server shutdown")

	err = db.Close()
	if err != nil {
		log.Err(err).Error("database close error")
	}
	log.Info("database closed")
}

// seedCatalog loads the sample library into an empty catalog. A catalog that
// already has books is left alone.
func seedCatalog(ctx context.Context, db *bun.DB, log logger.Logger) {
	result, err := catalog.Seed(log.WithContext(ctx), db)
	if errors.Is(err, catalog.ErrNotEmpty) {
		log.Info("catalog already has books, skipping sample data")
		return
	}
	if err != nil {
		log.Err(err).Fatal("seed error")
	}
	log.Info("sample data loaded", logger.Data{"books": result.Books, "book_instances": result.BookInstances})
}
