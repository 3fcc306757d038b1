package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/campsite-app/dbctx"
	"github.com/yeremiapane/campsite-app/services"
	"github.com/yeremiapane/campsite-app/utils"
)

// OrderService is what the order endpoints need from the aggregator.
type OrderService interface {
	CreateUniqueOrder(dbc dbctx.Context, req services.CreateOrderRequest) (bool, error)
	CreateComboOrder(dbc dbctx.Context, req services.CreateComboOrderRequest) (bool, error)
	GetOrderDetail(dbc dbctx.Context, id uint) (*services.OrderDetail, error)
	GetCustomerOrderDetail(dbc dbctx.Context, id uint) (*services.OrderDetail, error)
	EnterDeposit(dbc dbctx.Context, id uint, amount decimal.Decimal) (bool, error)
	CancelDeposit(dbc dbctx.Context, id uint) (bool, error)
	DeleteOrder(dbc dbctx.Context, id uint) (bool, error)
	UpdateActivityOrder(dbc dbctx.Context, orderID, activityID uint) (bool, error)
	UpdateOrder(dbc dbctx.Context, req services.UpdateOrderRequest) (bool, error)
	UpdateTicket(dbc dbctx.Context, lines []services.LineUpdate) (bool, error)
	UpdateGear(dbc dbctx.Context, lines []services.LineUpdate) (bool, error)
	UpdateFood(dbc dbctx.Context, lines []services.LineUpdate) (bool, error)
	UpdateCombo(dbc dbctx.Context, lines []services.LineUpdate) (bool, error)
	UpdateComboFood(dbc dbctx.Context, lines []services.LineUpdate) (bool, error)
	GetAllOrders(dbc dbctx.Context, filter services.OrderFilter) ([]services.OrderSummary, error)
	GetAllOrderDepositAndUsing(dbc dbctx.Context) ([]services.OrderSummary, error)
	GetCustomerOrders(dbc dbctx.Context, customerID uint, statusOrder *bool, activityID *uint) ([]services.OrderSummary, error)
	GetListOrderGearByUsageDate(dbc dbctx.Context, date time.Time) ([]services.GearUsage, error)
}

type OrderController struct {
	Orders OrderService
}

func NewOrderController(orders OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

func requestCtx(c *gin.Context) dbctx.Context {
	return dbctx.New(c.Request.Context())
}

func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondError(c, http.StatusBadRequest, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

// orderFilterQuery membaca ?status= dan ?activity_id=.
func orderFilterQuery(c *gin.Context) (*bool, *uint, error) {
	var status *bool
	var activity *uint
	if v := c.Query("status"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid status %q", v)
		}
		status = &b
	}
	if v := c.Query("activity_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return nil, nil, fmt.Errorf("invalid activity_id %q", v)
		}
		id := uint(n)
		activity = &id
	}
	return status, activity, nil
}

// respondWrite maps a write result: validation -> 400, not found -> 404,
// anything else -> 500.
func respondWrite(c *gin.Context, ok bool, err error, message string, code int) {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		utils.RespondErrorData(c, http.StatusBadRequest, err, ve.Fields)
	case err != nil:
		c.Error(err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
	case !ok:
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
	default:
		utils.RespondJSON(c, code, message, nil)
	}
}

func respondInternal(c *gin.Context, err error) {
	c.Error(err)
	utils.RespondError(c, http.StatusInternalServerError, errors.New("internal server error"))
}

// GetAllOrders -> list order, filter opsional status & activity
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	status, activity, err := orderFilterQuery(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := oc.Orders.GetAllOrders(requestCtx(c), services.OrderFilter{StatusOrder: status, ActivityID: activity})
	if err != nil {
		respondInternal(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetAllOrderDepositAndUsing(c *gin.Context) {
	orders, err := oc.Orders.GetAllOrderDepositAndUsing(requestCtx(c))
	if err != nil {
		respondInternal(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Deposited orders in use", orders)
}

// GetGearByUsageDate -> ?date=YYYY-MM-DD
func (oc *OrderController) GetGearByUsageDate(c *gin.Context) {
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
		return
	}

	gear, err := oc.Orders.GetListOrderGearByUsageDate(requestCtx(c), day)
	if err != nil {
		respondInternal(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Gear in use on "+day.Format("2006-01-02"), gear)
}

func (oc *OrderController) GetOrderDetail(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	detail, err := oc.Orders.GetOrderDetail(requestCtx(c), id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if detail == nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", detail)
}

func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ok, err := oc.Orders.CreateUniqueOrder(requestCtx(c), req)
	respondWrite(c, ok, err, "Order created", http.StatusCreated)
}

func (oc *OrderController) CreateComboOrder(c *gin.Context) {
	var req services.CreateComboOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	ok, err := oc.Orders.CreateComboOrder(requestCtx(c), req)
	respondWrite(c, ok, err, "Combo order created", http.StatusCreated)
}

func (oc *OrderController) UpdateOrder(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	var req services.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req.OrderID = id

	ok, err := oc.Orders.UpdateOrder(requestCtx(c), req)
	respondWrite(c, ok, err, "Order updated", http.StatusOK)
}

func (oc *OrderController) EnterDeposit(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	var body struct {
		Amount *decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if body.Amount == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount is required"))
		return
	}

	ok, err := oc.Orders.EnterDeposit(requestCtx(c), id, *body.Amount)
	respondWrite(c, ok, err, "Deposit entered", http.StatusOK)
}

func (oc *OrderController) CancelDeposit(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	ok, err := oc.Orders.CancelDeposit(requestCtx(c), id)
	respondWrite(c, ok, err, "Deposit cancelled", http.StatusOK)
}

func (oc *OrderController) UpdateActivity(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}
	activityID, ok := paramID(c, "activity_id")
	if !ok {
		return
	}

	ok, err := oc.Orders.UpdateActivityOrder(requestCtx(c), id, activityID)
	respondWrite(c, ok, err, "Order activity updated", http.StatusOK)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	ok, err := oc.Orders.DeleteOrder(requestCtx(c), id)
	respondWrite(c, ok, err, "Order deleted", http.StatusOK)
}

// updateLines binds a JSON array of line updates and hands it to fn.
func (oc *OrderController) updateLines(fn func(dbctx.Context, []services.LineUpdate) (bool, error), label string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var lines []services.LineUpdate
		if err := c.ShouldBindJSON(&lines); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}

		ok, err := fn(requestCtx(c), lines)
		respondWrite(c, ok, err, label+" lines updated", http.StatusOK)
	}
}

func (oc *OrderController) UpdateTickets() gin.HandlerFunc {
	return oc.updateLines(oc.Orders.UpdateTicket, "Ticket")
}

func (oc *OrderController) UpdateGears() gin.HandlerFunc {
	return oc.updateLines(oc.Orders.UpdateGear, "Camping gear")
}

func (oc *OrderController) UpdateFoods() gin.HandlerFunc {
	return oc.updateLines(oc.Orders.UpdateFood, "Food")
}

func (oc *OrderController) UpdateCombos() gin.HandlerFunc {
	return oc.updateLines(oc.Orders.UpdateCombo, "Combo")
}

func (oc *OrderController) UpdateFoodCombos() gin.HandlerFunc {
	return oc.updateLines(oc.Orders.UpdateComboFood, "Food combo")
}
