package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/shishobooks/locallibrary/pkg/binder"
	"github.com/shishobooks/locallibrary/pkg/catalog"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/errcodes"
	"github.com/shishobooks/locallibrary/pkg/metrics"
	"github.com/shishobooks/locallibrary/pkg/models"
	"github.com/shishobooks/locallibrary/pkg/testutils"
	"github.com/shishobooks/locallibrary/pkg/views"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e, err := NewEcho(cfg, db)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
		ReadTimeout:       cfg.RequestTimeout,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
	}

	return srv, nil
}

// NewEcho builds the router with every middleware and route the server uses.
func NewEcho(cfg *config.Config, db *bun.DB) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	renderer, err := views.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Renderer = renderer

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.ContextTimeout(cfg.RequestTimeout))

	health.RegisterRoutes(e)
	metrics.RegisterRoutes(e)

	e.GET("/", func(c echo.Context) error {
		return errors.WithStack(c.Redirect(http.StatusFound, models.CatalogPath))
	})
	catalog.RegisterRoutesWithGroup(e.Group(models.CatalogPath), db)

	if cfg.Environment == "test" {
		testutils.RegisterRoutes(e, db)
	}

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	return e, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
