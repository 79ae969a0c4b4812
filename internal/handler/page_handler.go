package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go-procurement-ws/internal/model"
	"go-procurement-ws/internal/repository"
	"go-procurement-ws/internal/service"
	"go-procurement-ws/pkg/apperror"
	"go-procurement-ws/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

const baseLayout = "layouts/base"

// PageHandler renders the procurement panel and the other server-side pages.
type PageHandler struct {
	orders    service.PurchaseOrderService
	suppliers service.SupplierService
	dashboard service.DashboardService
	log       *logger.Logger
}

func NewPageHandler(orders service.PurchaseOrderService, suppliers service.SupplierService, dashboard service.DashboardService, log *logger.Logger) *PageHandler {
	return &PageHandler{
		orders:    orders,
		suppliers: suppliers,
		dashboard: dashboard,
		log:       log.WithComponent("page_handler"),
	}
}

// view starts the data of every page: current user, privileges and notice.
func (h *PageHandler) view(c *fiber.Ctx, title string) fiber.Map {
	privileges, _ := c.Locals("user_privileges").([]string)
	data := fiber.Map{
		"Title":      title,
		"Notice":     c.Query("notice"),
		"Privileges": privileges,
		"Errors":     map[string]string{},
	}
	if _, ok := c.Locals("user_id").(string); ok {
		data["User"] = actorFrom(c)
	}
	return data
}

func (h *PageHandler) fail(c *fiber.Ctx, err error) error {
	status := apperror.GetHTTPStatus(err)
	message := "Something went wrong."
	if appErr, ok := apperror.AsAppError(err); ok && status < fiber.StatusInternalServerError {
		message = appErr.Message
	} else {
		h.log.Errorw("page failed", "path", c.Path(), "error", err)
	}
	data := h.view(c, "Error")
	data["Code"] = status
	data["Message"] = message
	return c.Status(status).Render("pages/error", data, baseLayout)
}

func redirectWithNotice(c *fiber.Ctx, path, notice string) error {
	return c.Redirect(path + "?notice=" + url.QueryEscape(notice))
}

// LoginPage
// GET /login
func (h *PageHandler) LoginPage(c *fiber.Ctx) error {
	return c.Render("pages/login", h.view(c, "Sign in"), baseLayout)
}

// Dashboard
// GET /dashboard
func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	stats, err := h.dashboard.GetDashboardStats(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	deliveries, err := h.dashboard.GetDeliverySummary(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	days := 7
	movement, err := h.dashboard.GetStockMovement(ctx, days)
	if err != nil {
		return h.fail(c, err)
	}

	data := h.view(c, "Dashboard")
	data["Stats"] = stats
	data["Deliveries"] = deliveries
	data["Movement"] = movement
	data["Days"] = days
	return c.Render("pages/dashboard", data, baseLayout)
}

// ProcurementPanel lists orders and shows the create form
// GET /procurement-panel
func (h *PageHandler) ProcurementPanel(c *fiber.Ctx) error {
	form := &service.PurchaseOrderRequest{DeliveryStatus: string(model.DeliveryPending)}
	return h.renderPanel(c, fiber.StatusOK, form, nil)
}

// CreatePurchaseOrder handles the panel form
// POST /procurement-panel
func (h *PageHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	form, parseErrs := parsePurchaseOrderForm(c.Request().PostArgs())
	if len(parseErrs) > 0 {
		return h.renderPanel(c, fiber.StatusUnprocessableEntity, form, parseErrs)
	}

	po, err := h.orders.Create(c.UserContext(), form, actorFrom(c))
	if err != nil {
		if errs := formErrors(err); errs != nil {
			return h.renderPanel(c, fiber.StatusUnprocessableEntity, form, errs)
		}
		return h.fail(c, err)
	}
	return redirectWithNotice(c, "/procurement-panel", fmt.Sprintf("Purchase order %s created.", po.PONumber))
}

func (h *PageHandler) renderPanel(c *fiber.Ctx, status int, form *service.PurchaseOrderRequest, errs map[string]string) error {
	ctx := c.UserContext()
	filter := repository.PurchaseOrderFilter{
		DeliveryStatus: model.DeliveryStatus(c.Query("delivery_status")),
		Search:         c.Query("search"),
		Page:           pageFrom(c),
	}
	if !filter.DeliveryStatus.Valid() {
		filter.DeliveryStatus = ""
	}
	orders, err := h.orders.List(ctx, filter)
	if err != nil {
		return h.fail(c, err)
	}
	suppliers, err := h.suppliers.ListActive(ctx)
	if err != nil {
		return h.fail(c, err)
	}
	next, err := h.orders.NextNumber(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	data := h.view(c, "Purchase Orders")
	data["Orders"] = orders
	data["Suppliers"] = suppliers
	data["Statuses"] = model.DeliveryStatuses
	data["NextNumber"] = next
	data["Search"] = filter.Search
	data["StatusFilter"] = string(filter.DeliveryStatus)
	data["Form"] = form
	data["Creating"] = true
	if errs != nil {
		data["Errors"] = errs
		data["Error"] = "Please correct the highlighted fields."
	}
	return c.Status(status).Render("pages/procurement_panel", data, baseLayout)
}

// ShowPurchaseOrder renders one order with its edit form
// GET /procurement-panel/:id
func (h *PageHandler) ShowPurchaseOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.fail(c, apperror.NewNotFound("purchase order", c.Params("id")))
	}
	po, err := h.orders.Get(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return h.renderOrder(c, fiber.StatusOK, po, requestFromOrder(po), nil)
}

// UpdatePurchaseOrder handles the edit form
// POST /procurement-panel/:id
func (h *PageHandler) UpdatePurchaseOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.fail(c, apperror.NewNotFound("purchase order", c.Params("id")))
	}
	ctx := c.UserContext()
	existing, err := h.orders.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}

	form, parseErrs := parsePurchaseOrderForm(c.Request().PostArgs())
	if len(parseErrs) > 0 {
		return h.renderOrder(c, fiber.StatusUnprocessableEntity, existing, form, parseErrs)
	}
	po, err := h.orders.Update(ctx, id, form, actorFrom(c))
	if err != nil {
		if errs := formErrors(err); errs != nil {
			return h.renderOrder(c, fiber.StatusUnprocessableEntity, existing, form, errs)
		}
		return h.fail(c, err)
	}
	return redirectWithNotice(c, "/procurement-panel/"+id.String(), fmt.Sprintf("Purchase order %s updated.", po.PONumber))
}

// DeletePurchaseOrder
// DELETE /procurement-panel/:id (form with _method=DELETE)
func (h *PageHandler) DeletePurchaseOrder(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.fail(c, apperror.NewNotFound("purchase order", c.Params("id")))
	}
	ctx := c.UserContext()
	po, err := h.orders.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.orders.Delete(ctx, id, actorFrom(c)); err != nil {
		return h.fail(c, err)
	}
	return redirectWithNotice(c, "/procurement-panel", fmt.Sprintf("Purchase order %s deleted.", po.PONumber))
}

func (h *PageHandler) renderOrder(c *fiber.Ctx, status int, po *model.PurchaseOrder, form *service.PurchaseOrderRequest, errs map[string]string) error {
	suppliers, err := h.suppliers.ListActive(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	suppliers = withSupplier(suppliers, po.Supplier)

	data := h.view(c, "Purchase Order "+po.PONumber)
	data["Order"] = po
	data["Form"] = form
	data["Suppliers"] = suppliers
	data["Statuses"] = model.DeliveryStatuses
	data["Creating"] = false
	if errs != nil {
		data["Errors"] = errs
		data["Error"] = "Please correct the highlighted fields."
	}
	return c.Status(status).Render("pages/procurement_panel_show", data, baseLayout)
}

// InboundDeliveries lists orders by delivery status
// GET /acquisition/inbound-deliveries
func (h *PageHandler) InboundDeliveries(c *fiber.Ctx) error {
	filter := repository.PurchaseOrderFilter{
		DeliveryStatus: model.DeliveryStatus(c.Query("delivery_status")),
		Page:           pageFrom(c),
	}
	if !filter.DeliveryStatus.Valid() {
		filter.DeliveryStatus = ""
	}
	orders, err := h.orders.List(c.UserContext(), filter)
	if err != nil {
		return h.fail(c, err)
	}

	data := h.view(c, "Inbound Deliveries")
	data["Orders"] = orders
	data["Statuses"] = model.DeliveryStatuses
	data["StatusFilter"] = string(filter.DeliveryStatus)
	return c.Render("pages/inbound_deliveries", data, baseLayout)
}

// UpdateDeliveryStatus
// PATCH /acquisition/inbound-deliveries/:id (form with _method=PATCH)
func (h *PageHandler) UpdateDeliveryStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return h.fail(c, apperror.NewNotFound("purchase order", c.Params("id")))
	}
	po, err := h.orders.UpdateDeliveryStatus(c.UserContext(), id, c.FormValue("delivery_status"), actorFrom(c))
	if err != nil {
		if errs := formErrors(err); errs != nil {
			return redirectWithNotice(c, "/acquisition/inbound-deliveries", "Delivery status "+errs["delivery_status"]+".")
		}
		return h.fail(c, err)
	}
	return redirectWithNotice(c, "/acquisition/inbound-deliveries",
		fmt.Sprintf("%s marked %s.", po.PONumber, po.DeliveryStatus))
}

// formErrors flattens a validation error into field -> message; nil for other errors.
func formErrors(err error) map[string]string {
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		return nil
	}
	out := make(map[string]string, len(appErr.Fields))
	for _, f := range appErr.Fields {
		if _, seen := out[f.Field]; !seen {
			out[f.Field] = f.Message
		}
	}
	return out
}

// parsePurchaseOrderForm reads the url-encoded panel form. Item rows arrive as parallel
// stock_no[] unit[] description[] quantity[] unit_cost[] lists; rows left blank are skipped.
// Numbers that do not parse are reported as field errors.
func parsePurchaseOrderForm(args *fasthttp.Args) (*service.PurchaseOrderRequest, map[string]string) {
	get := func(key string) string { return strings.TrimSpace(string(args.Peek(key))) }
	checked := func(key string) bool {
		switch strings.ToLower(get(key)) {
		case "on", "true", "1", "yes":
			return true
		}
		return false
	}

	req := &service.PurchaseOrderRequest{
		PONumber:          get("po_number"),
		SupplierID:        get("supplier_id"),
		Date:              get("date"),
		Mode:              get("mode"),
		FundCluster:       get("fund_cluster"),
		JobOrder:          checked("job_order"),
		ContractAgreement: checked("contract_agreement"),
		PurchaseOrder:     checked("purchase_order"),
		PlaceOfDelivery:   get("place_of_delivery"),
		DateOfDelivery:    get("date_of_delivery"),
		DeliveryTerm:      get("delivery_term"),
		PaymentTerm:       get("payment_term"),
		DeliveryStatus:    get("delivery_status"),
		EndUser:           get("end_user"),
		Department:        get("department"),
		Designation:       get("designation"),
		Items:             []service.PurchaseOrderItemRequest{},
	}

	column := func(key string) []string {
		var out []string
		for _, v := range args.PeekMulti(key) {
			out = append(out, strings.TrimSpace(string(v)))
		}
		return out
	}
	stockNos, units, descriptions := column("stock_no[]"), column("unit[]"), column("description[]")
	quantities, costs := column("quantity[]"), column("unit_cost[]")
	rows := max(len(stockNos), len(units), len(descriptions), len(quantities), len(costs))

	errs := map[string]string{}
	for i := 0; i < rows; i++ {
		stockNo, unit, description := at(stockNos, i), at(units, i), at(descriptions, i)
		quantity, cost := at(quantities, i), at(costs, i)
		if stockNo == "" && unit == "" && description == "" && quantity == "" && cost == "" {
			continue
		}

		line := len(req.Items)
		item := service.PurchaseOrderItemRequest{StockNo: stockNo, Unit: unit, Description: description}
		if quantity != "" {
			n, err := strconv.Atoi(quantity)
			if err != nil {
				errs[fmt.Sprintf("items[%d].quantity", line)] = "must be a whole number"
			}
			item.Quantity = n
		}
		if cost != "" {
			d, err := decimal.NewFromString(cost)
			if err != nil {
				errs[fmt.Sprintf("items[%d].unit_cost", line)] = "must be a number"
			}
			item.UnitCost = d
		}
		req.Items = append(req.Items, item)
	}
	if len(errs) == 0 {
		return req, nil
	}
	return req, errs
}

func at(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}

// requestFromOrder fills the edit form with the stored order.
func requestFromOrder(po *model.PurchaseOrder) *service.PurchaseOrderRequest {
	req := &service.PurchaseOrderRequest{
		PONumber:          po.PONumber,
		SupplierID:        po.SupplierID.String(),
		Date:              po.Date.Format("2006-01-02"),
		Mode:              po.Mode,
		FundCluster:       po.FundCluster,
		JobOrder:          po.IsJobOrder,
		ContractAgreement: po.IsContractAgreement,
		PurchaseOrder:     po.IsPurchaseOrder,
		PlaceOfDelivery:   po.PlaceOfDelivery,
		DeliveryTerm:      po.DeliveryTerm,
		PaymentTerm:       po.PaymentTerm,
		DeliveryStatus:    string(po.DeliveryStatus),
		EndUser:           po.EndUser,
		Department:        po.Department,
		Designation:       po.Designation,
		Items:             make([]service.PurchaseOrderItemRequest, len(po.Items)),
	}
	if po.DateOfDelivery != nil {
		req.DateOfDelivery = po.DateOfDelivery.Format("2006-01-02")
	}
	for i, item := range po.Items {
		req.Items[i] = service.PurchaseOrderItemRequest{
			StockNo:     item.StockNo,
			Unit:        item.Unit,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
		}
	}
	return req
}

// withSupplier keeps the order's current supplier selectable even when it is no longer active.
func withSupplier(active []model.Supplier, current *model.Supplier) []model.Supplier {
	if current == nil || current.ID == uuid.Nil {
		return active
	}
	for _, s := range active {
		if s.ID == current.ID {
			return active
		}
	}
	return append(active, *current)
}
