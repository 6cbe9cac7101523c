// Package server wires the diary service together: database, weather
// source, services, the daily scheduler and the HTTP API. It also handles
// graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/weatherdiary/internal/logging"
	"github.com/dmitrijs2005/weatherdiary/internal/server/config"
	"github.com/dmitrijs2005/weatherdiary/internal/server/httpapi"
	"github.com/dmitrijs2005/weatherdiary/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/weatherdiary/internal/server/scheduler"
	"github.com/dmitrijs2005/weatherdiary/internal/server/services"
	"github.com/dmitrijs2005/weatherdiary/internal/server/storage"
	"github.com/dmitrijs2005/weatherdiary/internal/server/weather"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	scheduler *scheduler.Scheduler
	http      *httpapi.HTTPServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.Debug)

	loc, err := c.Location()
	if err != nil {
		return nil, err
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Region:       c.S3Region,
		AccessKey:    c.S3RootUser,
		SecretKey:    c.S3RootPassword,
		Bucket:       c.S3Bucket,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	client := weather.NewClient(c.WeatherBaseURL, c.WeatherLocation, c.WeatherAPIKey, c.WeatherTimeout, logger)
	source := weather.NewSource(client, loc)

	ds := services.NewDiaryService(db, rm, source, logger)
	ws := services.NewWeatherService(db, rm, source, logger)
	as := services.NewArchiveService(ds, store, c.ArchiveLinkTTL, logger)

	return &App{
		config:    c,
		logger:    logger,
		db:        db,
		scheduler: scheduler.New(ws, c.ScheduleCron, loc, c.JobTimeout, logger),
		http:      httpapi.NewHTTPServer(c.EndpointAddr, c.BasePath, os.Stdout, logger, ds, ws, as),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or the HTTP server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.closeDB(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	if err := app.scheduler.Start(); err != nil {
		app.logger.Error(ctx, err.Error())
		return
	}
	defer app.scheduler.Stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	<-ctx.Done()
	wg.Wait()

	app.logger.Info(ctx, "App stopped")
}

func (app *App) closeDB(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
