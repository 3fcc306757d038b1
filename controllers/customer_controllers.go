package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/campsite-app/middlewares"
	"github.com/yeremiapane/campsite-app/utils"
)

// CustomerController serves the signed-in customer's own orders.
type CustomerController struct {
	Orders OrderService
}

func NewCustomerController(orders OrderService) *CustomerController {
	return &CustomerController{Orders: orders}
}

func (cc *CustomerController) GetMyOrders(c *gin.Context) {
	userID := middlewares.UserID(c)
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	status, activity, err := orderFilterQuery(c)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	orders, err := cc.Orders.GetCustomerOrders(requestCtx(c), userID, status, activity)
	if err != nil {
		respondInternal(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of your orders", orders)
}

// GetMyOrderDetail answers 404 for orders of other customers.
func (cc *CustomerController) GetMyOrderDetail(c *gin.Context) {
	userID := middlewares.UserID(c)
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}
	id, ok := paramID(c, "order_id")
	if !ok {
		return
	}

	detail, err := cc.Orders.GetCustomerOrderDetail(requestCtx(c), id)
	if err != nil {
		respondInternal(c, err)
		return
	}
	if detail == nil || detail.CustomerID == nil || *detail.CustomerID != userID {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", detail)
}
