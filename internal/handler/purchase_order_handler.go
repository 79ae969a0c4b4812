package handler

import (
	"bytes"

	"go-procurement-ws/internal/export"
	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/internal/service"
	"go-procurement-ws/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PurchaseOrderHandler struct {
	service service.PurchaseOrderService
	log     *logger.Logger
}

func NewPurchaseOrderHandler(s service.PurchaseOrderService, log *logger.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: s, log: log.WithComponent("purchase_order_handler")}
}

// List returns a page of purchase orders
// GET /purchase-orders?supplier_id=&delivery_status=&search=&page=&page_size=
func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	filter := repository.PurchaseOrderFilter{
		SupplierID:     queryUUID(c, "supplier_id"),
		DeliveryStatus: model.DeliveryStatus(c.Query("delivery_status")),
		Search:         c.Query("search"),
		Page:           pageFrom(c),
	}
	paged, err := h.service.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(paged)
}

// Get returns the order with its supplier and items
// GET /purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid purchase order ID")
	}
	po, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(po)
}

// Create stores a new order and assigns its number
// POST /purchase-orders
func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var req service.PurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	po, err := h.service.Create(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Purchase order created", "data": po})
}

// Update replaces the header and items of an order
// PUT /purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid purchase order ID")
	}
	var req service.PurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	po, err := h.service.Update(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order updated", "data": po})
}

// Delete removes an order and its items
// DELETE /purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid purchase order ID")
	}
	if err := h.service.Delete(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Purchase order deleted"})
}

// UpdateDeliveryStatus
// PATCH /purchase-orders/:id/delivery-status
func (h *PurchaseOrderHandler) UpdateDeliveryStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid purchase order ID")
	}
	var req struct {
		DeliveryStatus string `json:"delivery_status" form:"delivery_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	po, err := h.service.UpdateDeliveryStatus(c.UserContext(), id, req.DeliveryStatus, actorFrom(c))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Delivery status updated", "data": po})
}

// NextNumber previews the number the next order will get
// GET /next-po-number
func (h *PurchaseOrderHandler) NextNumber(c *fiber.Ctx) error {
	number, err := h.service.NextNumber(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"po_number": number})
}

// Export downloads the order as a spreadsheet
// GET /purchase-orders/:id/export
func (h *PurchaseOrderHandler) Export(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "Invalid purchase order ID")
	}
	po, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var buf bytes.Buffer
	if err := export.WritePurchaseOrder(&buf, po); err != nil {
		return respondError(c, h.log, err)
	}
	c.Attachment(export.PurchaseOrderFilename(po))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	return c.Send(buf.Bytes())
}
