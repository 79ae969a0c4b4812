package handler

import (
	"time"

	"go-procurement-ws/internal/repository"
	"go-procurement-ws/internal/service"
	"go-procurement-ws/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
	log     *logger.Logger
}

func NewInventoryHandler(s service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{service: s, log: log.WithComponent("inventory_handler")}
}

// ---- categories ----

func (h *InventoryHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(categories)
}

func (h *InventoryHandler) GetCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	category, err := h.service.GetCategory(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(category)
}

func (h *InventoryHandler) CreateCategory(c *fiber.Ctx) error {
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	category, err := h.service.CreateCategory(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Category created", "data": category})
}

func (h *InventoryHandler) UpdateCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	var req service.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	category, err := h.service.UpdateCategory(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Category updated", "data": category})
}

func (h *InventoryHandler) DeleteCategory(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid category ID")
	}
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Category deleted"})
}

// ---- stock items ----

// ListItems
// GET /inventory/items?category_id=&search=&low_stock=true
func (h *InventoryHandler) ListItems(c *fiber.Ctx) error {
	filter := repository.StockItemFilter{
		CategoryID: queryUUID(c, "category_id"),
		Search:     c.Query("search"),
		LowStock:   c.QueryBool("low_stock"),
		Page:       pageFrom(c),
	}
	paged, err := h.service.ListStockItems(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(paged)
}

func (h *InventoryHandler) GetItem(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid stock item ID")
	}
	item, err := h.service.GetStockItem(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(item)
}

func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	var req service.StockItemRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	item, err := h.service.CreateStockItem(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock item created", "data": item})
}

// ---- receiving ----

// ListReceivings
// GET /inventory/receiving?stock_item_id=&from=2026-01-01&to=2026-01-31
func (h *InventoryHandler) ListReceivings(c *fiber.Ctx) error {
	paged, err := h.service.ListReceivings(c.UserContext(), movementFilter(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(paged)
}

func (h *InventoryHandler) GetReceiving(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid receiving ID")
	}
	receiving, err := h.service.GetReceiving(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(receiving)
}

func (h *InventoryHandler) Receive(c *fiber.Ctx) error {
	var req service.ReceivingRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	receiving, err := h.service.Receive(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock received", "data": receiving})
}

func (h *InventoryHandler) UpdateReceiving(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid receiving ID")
	}
	var req service.MovementNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	receiving, err := h.service.UpdateReceiving(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Receiving updated", "data": receiving})
}

func (h *InventoryHandler) DeleteReceiving(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid receiving ID")
	}
	if err := h.service.DeleteReceiving(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Receiving deleted"})
}

// ---- issuance ----

func (h *InventoryHandler) ListIssuances(c *fiber.Ctx) error {
	paged, err := h.service.ListIssuances(c.UserContext(), movementFilter(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(paged)
}

func (h *InventoryHandler) GetIssuance(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid issuance ID")
	}
	issuance, err := h.service.GetIssuance(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(issuance)
}

func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	var req service.IssuanceRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	issuance, err := h.service.Issue(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Stock issued", "data": issuance})
}

func (h *InventoryHandler) UpdateIssuance(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid issuance ID")
	}
	var req service.MovementNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	issuance, err := h.service.UpdateIssuance(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Issuance updated", "data": issuance})
}

func (h *InventoryHandler) DeleteIssuance(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid issuance ID")
	}
	if err := h.service.DeleteIssuance(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Issuance deleted"})
}

func movementFilter(c *fiber.Ctx) repository.MovementFilter {
	filter := repository.MovementFilter{
		StockItemID: queryUUID(c, "stock_item_id"),
		Page:        pageFrom(c),
	}
	if t, err := time.Parse("2006-01-02", c.Query("from")); err == nil {
		filter.From = &t
	}
	if t, err := time.Parse("2006-01-02", c.Query("to")); err == nil {
		// inclusive of the whole day
		end := t.AddDate(0, 0, 1)
		filter.To = &end
	}
	return filter
}
