package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go-procurement-ws/internal/config"
	"go-procurement-ws/internal/handler"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/internal/service"
	"go-procurement-ws/internal/ws"
	"go-procurement-ws/pkg/database"
	"go-procurement-ws/pkg/jwt"
	"go-procurement-ws/pkg/logger"
	"go-procurement-ws/pkg/numerator"
	"go-procurement-ws/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// 1. Config & logging
	cfg, err := config.Load()
	if err != nil {
		logger.Default().Fatalw("invalid configuration", "error", err)
	}
	log, err := logger.New(logger.Config{Level: cfg.LogLevel, Development: cfg.LogDevelopment})
	if err != nil {
		logger.Default().Fatalw("build logger", "error", err)
	}
	defer log.Sync()

	if cfg.UsesDefaultSecret() {
		log.Warn("JWT_SECRET is not set, using the built-in development secret")
	}
	jwt.Configure(cfg.JWTSecret, cfg.TokenTTL)

	// 2. Database
	db, err := database.ConnectDB(database.Options{DSN: cfg.DatabaseDSN, SQLDebug: cfg.SQLDebug}, log)
	if err != nil {
		log.Fatalw("connect database", "error", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatalw("migrate database", "error", err)
	}

	// 3. Seed default privileges, roles, and admin user
	ctx := context.Background()
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	seedAccessControl(ctx, log, cfg, privilegeRepo, roleRepo, userRepo)

	// 4. WebSocket hub
	wsHub := ws.NewHub(log)
	go wsHub.Run()

	// 5. Dependency injection
	txm := repository.NewTxManager(db)
	supplierRepo := repository.NewSupplierRepo(db)
	poRepo := repository.NewPurchaseOrderRepo(db)
	seqRepo := repository.NewSequenceRepo(db)
	categoryRepo := repository.NewCategoryRepo(db)
	stockItemRepo := repository.NewStockItemRepo(db)
	receivingRepo := repository.NewReceivingRepo(db)
	issuanceRepo := repository.NewIssuanceRepo(db)
	dashRepo := repository.NewDashboardRepo(db)

	numbering := numerator.Config{Prefix: cfg.PONumberPrefix, PadWidth: cfg.PONumberPadWidth}
	supplierService := service.NewSupplierService(supplierRepo, poRepo, txm, wsHub)
	poService := service.NewPurchaseOrderService(poRepo, supplierRepo, seqRepo, txm, numbering, wsHub)
	invService := service.NewInventoryService(categoryRepo, stockItemRepo, receivingRepo, issuanceRepo, poRepo, txm, wsHub)
	dashService := service.NewDashboardService(dashRepo)
	authService := service.NewAuthService(userRepo, log)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo)

	cookie := handler.SessionCookie{Name: cfg.CookieName, Secure: cfg.CookieSecure, TTL: cfg.TokenTTL}
	h := handlers{
		auth:          handler.NewAuthHandler(authService, cookie, log),
		users:         handler.NewUserHandler(userService, log),
		roles:         handler.NewRoleHandler(roleRepo, privilegeRepo, log),
		suppliers:     handler.NewSupplierHandler(supplierService, log),
		purchaseOrder: handler.NewPurchaseOrderHandler(poService, log),
		inventory:     handler.NewInventoryHandler(invService, log),
		dashboard:     handler.NewDashboardHandler(dashService, log),
		pages:         handler.NewPageHandler(poService, supplierService, dashService, log),
	}

	// 6. Fiber
	app := fiber.New(fiber.Config{
		AppName:      "Procurement Admin v1.0",
		Views:        web.NewEngine(cfg.LogDevelopment),
		ErrorHandler: errorHandler(log),
	})

	app.Use(fiberlogger.New()) // Logging request
	app.Use(recover.New())     // Panic recovery
	app.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	// 7. Routes
	registerRoutes(app, h, authService, cfg.CookieName, wsHub)

	// 8. Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			log.Panicw("listen", "error", err)
		}
	}()
	log.Infow("server started", "port", cfg.HTTPPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
