package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/campsite-app/controllers"
	"github.com/yeremiapane/campsite-app/hub"
	"github.com/yeremiapane/campsite-app/middlewares"
	"github.com/yeremiapane/campsite-app/utils"
)

type Deps struct {
	Orders      controllers.OrderService
	Hub         *hub.Hub
	RateLimiter *middlewares.RateLimiter
	CORSOrigins []string
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Apply security middlewares
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.RateLimit())
	}

	// Inisialisasi controller
	orderCtrl := controllers.NewOrderController(d.Orders)
	customerCtrl := controllers.NewCustomerController(d.Orders)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authorized := r.Group("/")
	authorized.Use(middlewares.AuthMiddleware())

	// ----------------------------------------------------------------
	//                      STAFF ROUTES
	// ----------------------------------------------------------------
	staff := authorized.Group("/admin")
	staff.Use(middlewares.RequireRoles(utils.RoleAdmin, utils.RoleEmployee))
	{
		orders := staff.Group("/orders")
		orders.GET("", orderCtrl.GetAllOrders)
		orders.GET("/deposit-using", orderCtrl.GetAllOrderDepositAndUsing)
		orders.GET("/gear-usage", orderCtrl.GetGearByUsageDate)
		orders.GET("/:order_id", orderCtrl.GetOrderDetail)
		orders.POST("", orderCtrl.CreateOrder)
		orders.POST("/combo", orderCtrl.CreateComboOrder)
		orders.PUT("/:order_id", orderCtrl.UpdateOrder)
		orders.PUT("/:order_id/deposit", orderCtrl.EnterDeposit)
		orders.DELETE("/:order_id/deposit", orderCtrl.CancelDeposit)
		orders.PUT("/:order_id/activity/:activity_id", orderCtrl.UpdateActivity)
		orders.DELETE("/:order_id", orderCtrl.DeleteOrder)

		lines := staff.Group("/order-lines")
		lines.PUT("/tickets", orderCtrl.UpdateTickets())
		lines.PUT("/gears", orderCtrl.UpdateGears())
		lines.PUT("/foods", orderCtrl.UpdateFoods())
		lines.PUT("/combos", orderCtrl.UpdateCombos())
		lines.PUT("/food-combos", orderCtrl.UpdateFoodCombos())
	}

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	customer := authorized.Group("/customer")
	customer.Use(middlewares.RequireRoles(utils.RoleCustomer))
	{
		customer.GET("/orders", customerCtrl.GetMyOrders)
		customer.GET("/orders/:order_id", customerCtrl.GetMyOrderDetail)
	}

	if d.Hub != nil {
		ws := authorized.Group("/ws")
		ws.Use(middlewares.RequireRoles(utils.RoleAdmin, utils.RoleEmployee))
		ws.GET("/orders", d.Hub.Handler)
	}

	return r
}
