package main

import (
	"io"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"mercado/internal/config"
	"mercado/internal/http/handlers"
	applog "mercado/internal/log"
	"mercado/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.Open(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal(err)
	}
	if err := repos.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPass); err != nil {
		log.Fatal(err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, isFiber := err.(*fiber.Error); isFiber {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": "internal server error"})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/healthz"
		},
	}))

	deps := handlers.NewDeps(db)
	auth := handlers.RequireAuth(deps.AuthSvc)
	admin := handlers.RequireAdmin()

	api := app.Group("/api")

	// Users & auth (login/register throttled)
	loginLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"success": false, "error": "too many attempts, retry later"})
		},
	})
	api.Post("/users/register", loginLimiter, deps.AuthHandler.Register)
	api.Post("/users/login", loginLimiter, deps.AuthHandler.Login)
	api.Post("/users/logout", auth, deps.AuthHandler.Logout)
	api.Get("/users/me", auth, deps.AuthHandler.Me)
	api.Patch("/users/me", auth, deps.AuthHandler.UpdateMe)
	api.Get("/users", auth, admin, deps.UserHandler.List)
	api.Get("/users/:id", auth, admin, deps.UserHandler.Get)
	api.Patch("/users/:id", auth, admin, deps.UserHandler.Update)
	api.Delete("/users/:id", auth, admin, deps.UserHandler.Delete)

	// Categories
	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/categories/stats", deps.CategoryHandler.Stats)
	api.Get("/categories/:id", deps.CategoryHandler.Get)
	api.Post("/categories", auth, admin, deps.CategoryHandler.Create)
	api.Patch("/categories/:id", auth, admin, deps.CategoryHandler.Update)
	api.Delete("/categories/:id", auth, admin, deps.CategoryHandler.Delete)

	// Products
	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/top", deps.ProductHandler.Top)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Post("/products", auth, admin, deps.ProductHandler.Create)
	api.Patch("/products/:id/stock", auth, admin, deps.ProductHandler.PatchStock)
	api.Patch("/products/:id", auth, admin, deps.ProductHandler.Update)
	api.Delete("/products/:id", auth, admin, deps.ProductHandler.Delete)

	// Cart (owner or admin)
	cart := api.Group("/cart/:userId", auth, handlers.RequireOwnerOrAdmin("userId"))
	cart.Get("/", deps.CartHandler.Get)
	cart.Get("/total", deps.CartHandler.Totals)
	cart.Post("/items", deps.CartHandler.AddItem)
	cart.Patch("/items/:productId", deps.CartHandler.UpdateItem)
	cart.Delete("/items/:productId", deps.CartHandler.RemoveItem)
	cart.Delete("/", deps.CartHandler.Clear)

	// Orders
	api.Post("/orders", auth, deps.OrderHandler.Create)
	api.Get("/orders", auth, admin, deps.OrderHandler.List)
	api.Get("/orders/stats", auth, admin, deps.OrderHandler.Stats)
	api.Get("/orders/user/:userId", auth, handlers.RequireOwnerOrAdmin("userId"), deps.OrderHandler.ListByUser)
	api.Get("/orders/:id", auth, deps.OrderHandler.Get)
	api.Patch("/orders/:id/status", auth, admin, deps.OrderHandler.UpdateStatus)
	api.Delete("/orders/:id", auth, admin, deps.OrderHandler.Delete)

	// Reviews
	api.Get("/reviews", deps.ReviewHandler.List)
	api.Get("/reviews/product/:productId", deps.ReviewHandler.ListByProduct)
	api.Post("/reviews", auth, deps.ReviewHandler.Create)
	api.Patch("/reviews/:id", auth, deps.ReviewHandler.Update)
	api.Delete("/reviews/:id", auth, deps.ReviewHandler.Delete)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "error": "not found"})
	})

	log.Printf("Starting mercado on :%s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
