// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/dto"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/handlers"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/app/middleware"
	"github.com/Nastu94/gestionale-subnoleggio-sub002/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	rentalHandler  handlers.RentalHandlerInterface
	quoteHandler   handlers.QuoteHandlerInterface
	feeHandler     handlers.FeeHandlerInterface
	authMiddleware *middleware.AuthMiddleware
	allowedOrigins []string
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	rentalHandler handlers.RentalHandlerInterface,
	quoteHandler handlers.QuoteHandlerInterface,
	feeHandler handlers.FeeHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	allowedOrigins []string,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Subnoleggio Back-Office API",
		ServerHeader: "Subnoleggio",
		ErrorHandler: errorHandler,
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		rentalHandler:  rentalHandler,
		quoteHandler:   quoteHandler,
		feeHandler:     feeHandler,
		authMiddleware: authMiddleware,
		allowedOrigins: allowedOrigins,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	// Prometheus scrape endpoint, outside the API group and rate limits
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// General rate limiting for all API routes
	api.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health"
		},
	}))

	// Renter-facing endpoints
	rentals := api.Group("/rentals", r.authMiddleware.Authenticate())
	rentals.Get("/:id", r.rentalHandler.GetRental)
	rentals.Post("/:id/close", r.rentalHandler.CloseRental)

	organizations := api.Group("/organizations", r.authMiddleware.Authenticate())
	organizations.Post("/:organization_id/rentals", r.rentalHandler.CreateRental)

	api.Post("/quotes", r.authMiddleware.Authenticate(), r.quoteHandler.QuotePricelist)

	// Admin endpoints
	admin := api.Group("/admin", r.authMiddleware.RequireAdmin())
	admin.Post("/rentals/backfill-numbers", r.rentalHandler.BackfillNumbers)
	admin.Get("/rentals/:id/fee", r.feeHandler.GetRentalFee)
	admin.Get("/organizations/:organization_id/fee-percent", r.feeHandler.GetActivePercent)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "same-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: r.allowedOrigins,
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Cache middleware for the health endpoint only
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			return c.Method() != "GET" || c.Path() != "/api/v1/health"
		},
		Expiration:          30 * time.Second,
		DisableCacheControl: false,
	}))

	// Structured request logging
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/api/v1/health" || c.Path() == "/metrics"
		},
	}))

	// Prometheus HTTP metrics
	r.app.Use(middleware.Metrics())

	// Response metadata headers
	r.app.Use(r.responseHeadersMiddleware)

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

func (r *FiberRouter) responseHeadersMiddleware(c fiber.Ctx) error {
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "Subnoleggio")
	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "subnoleggio-backoffice-api",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	log.Printf("Error %d: %v", code, err)

	requestID := c.Locals("requestid")

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
