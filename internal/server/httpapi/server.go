// Package httpapi exposes the diary service over HTTP using fiber.
package httpapi

import (
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/weatherdiary/internal/logging"
	"github.com/dmitrijs2005/weatherdiary/internal/server/models"
	"github.com/dmitrijs2005/weatherdiary/internal/server/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/oklog/ulid/v2"
)

const shutdownTimeout = 10 * time.Second

type DiaryService interface {
	CreateDiary(ctx context.Context, date time.Time, text string) (*models.DiaryEntry, error)
	ReadDiary(ctx context.Context, date time.Time) ([]*models.DiaryEntry, error)
	ReadDiaries(ctx context.Context, start, end time.Time) ([]*models.DiaryEntry, error)
	UpdateDiary(ctx context.Context, date time.Time, text string) (*models.DiaryEntry, error)
	DeleteDiary(ctx context.Context, date time.Time) (int64, error)
}

type WeatherService interface {
	SaveDailyWeather(ctx context.Context) (*models.WeatherSnapshot, error)
}

type ArchiveService interface {
	ExportRange(ctx context.Context, start, end time.Time) (*services.ArchiveResult, error)
}

type HTTPServer struct {
	address  string
	basePath string
	diaries  DiaryService
	weather  WeatherService
	archive  ArchiveService
	logger   logging.Logger
	app      *fiber.App
}

// NewHTTPServer builds the fiber app with all routes mounted under basePath.
// /health and the OpenAPI description under /docs stay at the root.
// Access logs go to accessLog; nil disables them.
func NewHTTPServer(addr, basePath string, accessLog io.Writer, l logging.Logger,
	ds DiaryService, ws WeatherService, as ArchiveService) *HTTPServer {

	s := &HTTPServer{
		address:  addr,
		basePath: basePath,
		diaries:  ds,
		weather:  ws,
		archive:  as,
		logger:   l.With("module", "http_server"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "weatherdiary",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          s.errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: func() string { return ulid.Make().String() },
	}))
	if accessLog != nil {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
			Output: accessLog,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	docs, err := loadAPIDocs(basePath)
	if err != nil {
		// the document is embedded at build time
		panic(err)
	}
	docs.register(app)

	s.registerRoutes(app.Group(basePath))
	s.app = app
	return s
}

func (s *HTTPServer) registerRoutes(r fiber.Router) {
	r.Post("/create/diary", s.createDiary)
	r.Get("/read/diary", s.readDiary)
	r.Get("/read/diaries", s.readDiaries)
	r.Put("/update/diary", s.updateDiary)
	r.Delete("/delete/diary", s.deleteDiary)

	r.Post("/archive/diaries", s.archiveDiaries)
	r.Post("/weather/fetch", s.fetchWeather)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			s.logger.Error(ctx, "error during shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address, "base_path", s.basePath)

	return s.app.Listen(s.address)
}
