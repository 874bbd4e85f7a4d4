package server

import (
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	redisstorage "github.com/gofiber/storage/redis/v3"

	"followgate/internal/config"
)

// Server wraps the Fiber app and configuration.
type Server struct {
	App *fiber.App
	Cfg *config.Config
}

// New creates a new server with middleware configured.
func New(cfg *config.Config) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal Server Error"

			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}

			return c.Status(code).JSON(fiber.Map{
				"error":   "InternalServerError",
				"message": message,
			})
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())

	if cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Split(cfg.CORSOrigins, ","),
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
			MaxAge:       86400,
		}))
	}

	// Rate limiter state lives in Redis when configured so limits hold
	// across replicas.
	var limiterStorage fiber.Storage
	if cfg.RedisURL != "" {
		limiterStorage = redisstorage.New(redisstorage.Config{URL: cfg.RedisURL})
	}

	// 300 requests per minute per IP across the whole surface.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Storage:    limiterStorage,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: rateLimited,
	}))

	// Tighter budget on the mutating endpoint. Its keys carry their own
	// namespace so the two limiters never read each other's counters in
	// the shared storage.
	app.Use("/xrpc/app.followgate.graph.respondToFollowRequest", limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Hour,
		Storage:    limiterStorage,
		KeyGenerator: func(c fiber.Ctx) string {
			return respondLimiterKey(c.IP())
		},
		LimitReached: rateLimited,
	}))

	return &Server{
		App: app,
		Cfg: cfg,
	}
}

// respondLimiterKey namespaces the respond-route limiter's storage keys
// away from the global limiter's bare client keys.
func respondLimiterKey(ip string) string {
	return "respond:" + ip
}

func rateLimited(c fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
		"error":   "RateLimitExceeded",
		"message": "Rate limit exceeded. Please try again later.",
	})
}

// Start starts the server with the configured address and TLS settings.
func (s *Server) Start() error {
	if s.Cfg.TLSEnabled {
		log.Printf("Starting server with TLS on %s", s.Cfg.ServerAddr)
		return s.App.Listen(s.Cfg.ServerAddr, fiber.ListenConfig{
			CertFile:    s.Cfg.TLSCertFile,
			CertKeyFile: s.Cfg.TLSKeyFile,
		})
	}
	return s.App.Listen(s.Cfg.ServerAddr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
