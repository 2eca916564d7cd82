package api

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"statement-parser/docs"
	"statement-parser/internal/api/handlers"
	"statement-parser/internal/dto"
	"statement-parser/pkg/config"
	"statement-parser/pkg/metrics"
	"statement-parser/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

const welcomeMessage = "Credit card statement parser. POST a PDF as multipart field \"file\" to /parse."

func SetupRouter(
	statementHandler *handlers.StatementHandler,
	m *metrics.Metrics,
	cfg *config.ServerConfig,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.BodyLimit(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(dto.ErrorResponse{Error: fe.Message})
			}
			appLogger.Error("Unhandled error",
				zap.String("request_id", middleware.RequestID(c)),
				zap.Error(err),
			)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: "An unexpected error occurred: " + err.Error(),
			})
		},
	})

	// Middleware
	app.Use(middleware.RequestLogger(appLogger))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
	}))

	_ = docs.SwaggerInfo // docs init() registers the API description with swag
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/healthz", handlers.Health)
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	webStaticPath := findWebStaticPath(appLogger)
	if webStaticPath != "" {
		appLogger.Info("Serving static files", zap.String("path", webStaticPath))
		app.Static("/static", webStaticPath)
	}

	app.Get("/", func(c *fiber.Ctx) error {
		if webStaticPath != "" {
			return c.SendFile(filepath.Join(webStaticPath, "index.html"))
		}
		return c.SendString(welcomeMessage)
	})

	parse := []fiber.Handler{statementHandler.ParseStatement}
	if cfg.RateLimitPerMinute > 0 {
		parse = append([]fiber.Handler{limiter.New(limiter.Config{
			Max:        cfg.RateLimitPerMinute,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
					Error: "Too many requests",
				})
			},
		})}, parse...)
	}

	app.Post("/parse", parse...)

	v1 := app.Group("/api/v1")
	v1.Post("/statements/parse", parse...)

	return app
}

// findWebStaticPath finds web/static relative to the working directory.
func findWebStaticPath(logger *zap.Logger) string {
	paths := []string{
		"./web/static",
		"../web/static",
		"../../web/static",
	}

	for _, path := range paths {
		if fileExists(filepath.Join(path, "index.html")) {
			return path
		}
		logger.Debug("Tried static path", zap.String("path", path))
	}

	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
