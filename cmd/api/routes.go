package main

import (
	"errors"
	"strings"

	"go-procurement-ws/internal/handler"
	"go-procurement-ws/internal/middleware"
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/ws"
	"go-procurement-ws/pkg/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type handlers struct {
	auth          *handler.AuthHandler
	users         *handler.UserHandler
	roles         *handler.RoleHandler
	suppliers     *handler.SupplierHandler
	purchaseOrder *handler.PurchaseOrderHandler
	inventory     *handler.InventoryHandler
	dashboard     *handler.DashboardHandler
	pages         *handler.PageHandler
}

func registerRoutes(app *fiber.App, h handlers, auth middleware.Authenticator, cookieName string, hub *ws.Hub) {
	requireAuth := middleware.RequireAuth(auth, cookieName)
	requireSession := middleware.RequireSession(auth, cookieName)

	// Public routes
	app.Get("/login", h.pages.LoginPage)
	app.Post("/auth/login", h.auth.SessionLogin)
	app.Post("/auth/logout", requireSession, h.auth.Logout)

	api := app.Group("/api/v1")
	authGroup := api.Group("/auth")
	authGroup.Post("/login", h.auth.Login)
	authGroup.Post("/reset-password", h.auth.ResetPassword)
	authGroup.Post("/validate-token", h.auth.ValidateToken)

	// Token routes
	protected := api.Group("", requireAuth)
	protected.Get("/auth/me", h.auth.Me)
	protected.Post("/auth/logout", h.auth.Logout)
	registerResources(protected, h)

	// User Management Routes (with privilege checks)
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), h.users.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), h.users.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), h.users.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), h.users.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), h.users.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege(model.PrivUserUpdatePrivilege), h.users.UpdateUserPrivileges)

	protected.Get("/roles", middleware.RequirePrivilege(model.PrivUserView), h.roles.GetRoles)
	protected.Get("/privileges", middleware.RequirePrivilege(model.PrivUserView), h.roles.GetPrivileges)

	// Session routes: same JSON resources, authenticated by the cookie the pages use
	registerResources(sessionRouter{app: app, auth: requireAuth}, h)

	// Pages
	app.Get("/", requireSession, func(c *fiber.Ctx) error { return c.Redirect("/dashboard") })
	app.Get("/dashboard", requireSession, h.pages.Dashboard)

	app.Get("/procurement-panel", requireSession, middleware.RequirePrivilege(model.PrivPOView), h.pages.ProcurementPanel)
	app.Post("/procurement-panel", requireSession, middleware.RequirePrivilege(model.PrivPOCreate), h.pages.CreatePurchaseOrder)
	app.Get("/procurement-panel/:id", requireSession, middleware.RequirePrivilege(model.PrivPOView), h.pages.ShowPurchaseOrder)
	app.Post("/procurement-panel/:id", requireSession, middleware.RequirePrivilege(model.PrivPOUpdate), h.pages.UpdatePurchaseOrder)
	app.Put("/procurement-panel/:id", requireSession, middleware.RequirePrivilege(model.PrivPOUpdate), h.pages.UpdatePurchaseOrder)
	app.Delete("/procurement-panel/:id", requireSession, middleware.RequirePrivilege(model.PrivPODelete), h.pages.DeletePurchaseOrder)

	app.Get("/acquisition/inbound-deliveries", requireSession, middleware.RequirePrivilege(model.PrivPOView), h.pages.InboundDeliveries)
	app.Patch("/acquisition/inbound-deliveries/:id", requireSession, middleware.RequirePrivilege(model.PrivPOUpdate), h.pages.UpdateDeliveryStatus)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.Register <- c
		defer func() { hub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}

// router is the subset of fiber.Router the resource routes need.
type router interface {
	Get(path string, hs ...fiber.Handler) fiber.Router
	Post(path string, hs ...fiber.Handler) fiber.Router
	Put(path string, hs ...fiber.Handler) fiber.Router
	Patch(path string, hs ...fiber.Handler) fiber.Router
	Delete(path string, hs ...fiber.Handler) fiber.Router
}

// sessionRouter mounts routes at the root with auth attached per route, so the
// JSON 401 never shadows the page routes' login redirect.
type sessionRouter struct {
	app  *fiber.App
	auth fiber.Handler
}

func (r sessionRouter) with(hs []fiber.Handler) []fiber.Handler {
	return append([]fiber.Handler{r.auth}, hs...)
}

func (r sessionRouter) Get(path string, hs ...fiber.Handler) fiber.Router {
	return r.app.Get(path, r.with(hs)...)
}

func (r sessionRouter) Post(path string, hs ...fiber.Handler) fiber.Router {
	return r.app.Post(path, r.with(hs)...)
}

func (r sessionRouter) Put(path string, hs ...fiber.Handler) fiber.Router {
	return r.app.Put(path, r.with(hs)...)
}

func (r sessionRouter) Patch(path string, hs ...fiber.Handler) fiber.Router {
	return r.app.Patch(path, r.with(hs)...)
}

func (r sessionRouter) Delete(path string, hs ...fiber.Handler) fiber.Router {
	return r.app.Delete(path, r.with(hs)...)
}

func registerResources(r router, h handlers) {
	priv := middleware.RequirePrivilege

	// Dashboard
	r.Get("/dashboard/stats", priv(model.PrivDashboardView), h.dashboard.GetDashboardStats)
	r.Get("/dashboard/stock-movement", priv(model.PrivDashboardView), h.dashboard.GetStockMovement)
	r.Get("/dashboard/delivery-summary", priv(model.PrivDashboardView), h.dashboard.GetDeliverySummary)

	// Suppliers
	r.Get("/suppliers", priv(model.PrivSupplierView), h.suppliers.List)
	r.Get("/suppliers/:id", priv(model.PrivSupplierView), h.suppliers.Get)
	r.Post("/suppliers", priv(model.PrivSupplierCreate), h.suppliers.Create)
	r.Put("/suppliers/:id", priv(model.PrivSupplierUpdate), h.suppliers.Update)
	r.Delete("/suppliers/:id", priv(model.PrivSupplierDelete), h.suppliers.Delete)

	// Purchase orders
	r.Get("/next-po-number", priv(model.PrivPOCreate), h.purchaseOrder.NextNumber)
	r.Get("/purchase-orders", priv(model.PrivPOView), h.purchaseOrder.List)
	r.Get("/purchase-orders/:id", priv(model.PrivPOView), h.purchaseOrder.Get)
	r.Get("/purchase-orders/:id/export", priv(model.PrivPOView), h.purchaseOrder.Export)
	r.Post("/purchase-orders", priv(model.PrivPOCreate), h.purchaseOrder.Create)
	r.Put("/purchase-orders/:id", priv(model.PrivPOUpdate), h.purchaseOrder.Update)
	r.Patch("/purchase-orders/:id/delivery-status", priv(model.PrivPOUpdate), h.purchaseOrder.UpdateDeliveryStatus)
	r.Delete("/purchase-orders/:id", priv(model.PrivPODelete), h.purchaseOrder.Delete)

	// Inventory
	view, manage := priv(model.PrivInventoryView), priv(model.PrivInventoryManage)
	r.Get("/inventory/categories", view, h.inventory.ListCategories)
	r.Get("/inventory/categories/:id", view, h.inventory.GetCategory)
	r.Post("/inventory/categories", manage, h.inventory.CreateCategory)
	r.Put("/inventory/categories/:id", manage, h.inventory.UpdateCategory)
	r.Delete("/inventory/categories/:id", manage, h.inventory.DeleteCategory)

	r.Get("/inventory/items", view, h.inventory.ListItems)
	r.Get("/inventory/items/:id", view, h.inventory.GetItem)
	r.Post("/inventory/items", manage, h.inventory.CreateItem)

	r.Get("/inventory/receiving", view, h.inventory.ListReceivings)
	r.Get("/inventory/receiving/:id", view, h.inventory.GetReceiving)
	r.Post("/inventory/receiving", manage, h.inventory.Receive)
	r.Put("/inventory/receiving/:id", manage, h.inventory.UpdateReceiving)
	r.Delete("/inventory/receiving/:id", manage, h.inventory.DeleteReceiving)

	r.Get("/inventory/issuance", view, h.inventory.ListIssuances)
	r.Get("/inventory/issuance/:id", view, h.inventory.GetIssuance)
	r.Post("/inventory/issuance", manage, h.inventory.Issue)
	r.Put("/inventory/issuance/:id", manage, h.inventory.UpdateIssuance)
	r.Delete("/inventory/issuance/:id", manage, h.inventory.DeleteIssuance)
}

// errorHandler answers errors no handler dealt with: routing misses, body limits, panics.
func errorHandler(log *logger.Logger) fiber.ErrorHandler {
	log = log.WithComponent("http")
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal server error"
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}
		if code >= fiber.StatusInternalServerError {
			log.Errorw("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
		}

		if strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMETextHTML) {
			return c.Status(code).Render("pages/error", fiber.Map{
				"Title":   "Error",
				"Code":    code,
				"Message": message,
			}, "layouts/base")
		}
		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
