package controllers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/campsite-app/database"
	"github.com/yeremiapane/campsite-app/dbctx"
	"github.com/yeremiapane/campsite-app/middlewares"
	"github.com/yeremiapane/campsite-app/models"
	"github.com/yeremiapane/campsite-app/repository"
	"github.com/yeremiapane/campsite-app/services"
	"github.com/yeremiapane/campsite-app/utils"
)

func setupTestDBForOrders(t *testing.T) *gorm.DB {
	t.Helper()
	utils.SilenceLoggers()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	// Seed data: satu item per katalog dan satu akun customer
	db.Create(&models.Ticket{ID: 1, Name: "VIP Ticket", Price: decimal.NewFromInt(50)})
	db.Create(&models.CampingGear{ID: 1, Name: "Tent", RentalPrice: decimal.NewFromInt(30), Quantity: 5})
	db.Create(&models.FoodAndDrink{ID: 1, Name: "Vegan Meal", Price: decimal.NewFromInt(15)})
	db.Create(&models.FoodCombo{ID: 1, Name: "Breakfast Set", Price: decimal.NewFromInt(20), Status: true})
	db.Create(&models.Combo{ID: 1, Name: "Family Combo", Price: decimal.NewFromInt(25)})
	db.Create(&models.User{ID: 7, FirstName: "Dana", LastName: "Putri", Email: "dana@example.com", Role: utils.RoleCustomer})
	return db
}

func newAggregator(db *gorm.DB) *services.OrderAggregator {
	return services.NewOrderAggregator(db, repository.NewOrderRepository(db), repository.NewCatalogRepository(db), nil)
}

func setupOrderRouter(orders OrderService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	orderCtrl := NewOrderController(orders)
	router.GET("/orders", orderCtrl.GetAllOrders)
	router.GET("/orders/deposit-using", orderCtrl.GetAllOrderDepositAndUsing)
	router.GET("/orders/gear-usage", orderCtrl.GetGearByUsageDate)
	router.GET("/orders/:order_id", orderCtrl.GetOrderDetail)
	router.POST("/orders", orderCtrl.CreateOrder)
	router.POST("/orders/combo", orderCtrl.CreateComboOrder)
	router.PUT("/orders/:order_id", orderCtrl.UpdateOrder)
	router.PUT("/orders/:order_id/deposit", orderCtrl.EnterDeposit)
	router.DELETE("/orders/:order_id/deposit", orderCtrl.CancelDeposit)
	router.PUT("/orders/:order_id/activity/:activity_id", orderCtrl.UpdateActivity)
	router.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)
	router.PUT("/order-lines/tickets", orderCtrl.UpdateTickets())
	router.PUT("/order-lines/gears", orderCtrl.UpdateGears())
	router.PUT("/order-lines/foods", orderCtrl.UpdateFoods())
	router.PUT("/order-lines/combos", orderCtrl.UpdateCombos())
	router.PUT("/order-lines/food-combos", orderCtrl.UpdateFoodCombos())
	return router
}

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCreateAndGetOrder(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(newAggregator(db))

	payload := map[string]interface{}{
		"order": map[string]interface{}{
			"customer_name":    "Walk-in",
			"phone_customer":   "0812",
			"order_usage_date": "2024-07-01T00:00:00Z",
			"total_amount":     "300",
			"deposit":          "70",
		},
		"order_ticket":       []map[string]interface{}{{"item_id": 1, "quantity": 2, "description": "front row"}},
		"order_camping_gear": []map[string]interface{}{{"item_id": 1, "quantity": 1}},
	}
	w, env := doJSON(t, router, http.MethodPost, "/orders", payload)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Status)

	var order models.Order
	require.NoError(t, db.First(&order).Error)

	w, env = doJSON(t, router, http.MethodGet, "/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var detail services.OrderDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, order.ID, detail.OrderID)
	assert.Equal(t, "Walk-in", detail.CustomerName)
	assert.True(t, detail.AmountPayable.Equal(decimal.NewFromInt(230)))
	assert.True(t, detail.StatusOrder)
	require.Len(t, detail.Tickets, 1)
	assert.Equal(t, "VIP Ticket", detail.Tickets[0].Name)
	require.Len(t, detail.Gears, 1)
	assert.Empty(t, detail.Foods)
	assert.True(t, detail.LinesTotal.Equal(decimal.NewFromInt(130)))
}

func TestCreateOrder_ValidationError(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(newAggregator(db))

	w, env := doJSON(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"order": map[string]interface{}{"customer_name": "Nobody", "total_amount": 100},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Status)

	var fields []services.FieldError
	require.NoError(t, json.Unmarshal(env.Data, &fields))
	require.NotEmpty(t, fields)
	assert.Equal(t, "order_lines", fields[0].Field)

	w, _ = doJSON(t, router, http.MethodPost, "/orders", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateComboOrderEndpoint(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(newAggregator(db))

	w, _ := doJSON(t, router, http.MethodPost, "/orders/combo", map[string]interface{}{
		"order":            map[string]interface{}{"customer_id": 7, "total_amount": 45},
		"order_combo":      []map[string]interface{}{{"item_id": 1, "quantity": 1}},
		"order_food_combo": []map[string]interface{}{{"item_id": 1, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.OrderLine{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func createViaAPI(t *testing.T, router http.Handler, customerID interface{}) {
	t.Helper()
	order := map[string]interface{}{"customer_name": "Guest", "total_amount": 100}
	if customerID != nil {
		order["customer_id"] = customerID
	}
	w, _ := doJSON(t, router, http.MethodPost, "/orders", map[string]interface{}{
		"order":              order,
		"order_camping_gear": []map[string]interface{}{{"item_id": 1, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestDepositActivityAndDeleteEndpoints(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(newAggregator(db))
	createViaAPI(t, router, nil)

	w, _ := doJSON(t, router, http.MethodPut, "/orders/1/deposit", map[string]interface{}{"amount": 40})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/orders/1/deposit", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/orders/1/deposit", map[string]interface{}{"amount": 500})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/orders/99/deposit", map[string]interface{}{"amount": 10})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/orders/1/activity/2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := doJSON(t, router, http.MethodGet, "/orders/deposit-using", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var using []services.OrderSummary
	require.NoError(t, json.Unmarshal(env.Data, &using))
	require.Len(t, using, 1)
	assert.Equal(t, "In use", using[0].ActivityName)

	w, _ = doJSON(t, router, http.MethodDelete, "/orders/1/deposit", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = doJSON(t, router, http.MethodGet, "/orders?status=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var paid []services.OrderSummary
	require.NoError(t, json.Unmarshal(env.Data, &paid))
	assert.Empty(t, paid)

	w, _ = doJSON(t, router, http.MethodGet, "/orders?status=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/orders/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, router, http.MethodDelete, "/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, router, http.MethodGet, "/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, router, http.MethodGet, "/orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderAndLinesEndpoints(t *testing.T) {
	db := setupTestDBForOrders(t)
	router := setupOrderRouter(newAggregator(db))
	createViaAPI(t, router, nil)

	w, _ := doJSON(t, router, http.MethodPut, "/orders/1", map[string]interface{}{
		"customer_name":    "Renamed",
		"total_amount":     "150",
		"order_usage_date": "2024-08-17T09:00:00Z",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/order-lines/gears", []map[string]interface{}{
		{"order_id": 1, "item_id": 1, "quantity": 3},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/order-lines/foods", []map[string]interface{}{
		{"order_id": 1, "item_id": 1, "quantity": 2, "description": "no sugar"},
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/order-lines/food-combos", []map[string]interface{}{
		{"order_id": 1, "item_id": 1, "quantity": 1, "description": "not allowed"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/order-lines/tickets", []map[string]interface{}{
		{"order_id": 42, "item_id": 1, "quantity": 1},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := doJSON(t, router, http.MethodGet, "/orders/gear-usage?date=2024-08-17", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var gear []services.GearUsage
	require.NoError(t, json.Unmarshal(env.Data, &gear))
	assert.Equal(t, []services.GearUsage{{OrderID: 1, GearID: 1, Quantity: 3}}, gear)

	w, _ = doJSON(t, router, http.MethodGet, "/orders/gear-usage?date=17-08-2024", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = doJSON(t, router, http.MethodGet, "/orders/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail services.OrderDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Renamed", detail.CustomerName)
	assert.True(t, detail.AmountPayable.Equal(decimal.NewFromInt(150)))
	require.Len(t, detail.Foods, 1)
	assert.Equal(t, 2, detail.Foods[0].Quantity)
}

// failingOrders returns a persistence error from every call.
type failingOrders struct{ OrderService }

var errDB = errors.New("db down")

func (failingOrders) GetAllOrders(dbctx.Context, services.OrderFilter) ([]services.OrderSummary, error) {
	return nil, errDB
}

func (failingOrders) DeleteOrder(dbctx.Context, uint) (bool, error) { return false, errDB }

func TestPersistenceErrorsAreHidden(t *testing.T) {
	utils.SilenceLoggers()
	router := setupOrderRouter(failingOrders{})

	w, env := doJSON(t, router, http.MethodGet, "/orders", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, env.Message, "db down")

	w, _ = doJSON(t, router, http.MethodDelete, "/orders/1", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCustomerController(t *testing.T) {
	db := setupTestDBForOrders(t)
	agg := newAggregator(db)
	staff := setupOrderRouter(agg)
	createViaAPI(t, staff, 7)
	createViaAPI(t, staff, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	cc := NewCustomerController(agg)
	asUser := func(id uint) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(middlewares.CtxUserID, id)
			c.Next()
		}
	}
	router.GET("/me7/orders", asUser(7), cc.GetMyOrders)
	router.GET("/me7/orders/:order_id", asUser(7), cc.GetMyOrderDetail)
	router.GET("/me8/orders/:order_id", asUser(8), cc.GetMyOrderDetail)
	router.GET("/anon/orders", cc.GetMyOrders)

	w, env := doJSON(t, router, http.MethodGet, "/me7/orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []services.OrderSummary
	require.NoError(t, json.Unmarshal(env.Data, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "Dana Putri", mine[0].CustomerName)

	w, _ = doJSON(t, router, http.MethodGet, "/me7/orders/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = doJSON(t, router, http.MethodGet, "/me7/orders/2", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, router, http.MethodGet, "/me8/orders/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = doJSON(t, router, http.MethodGet, "/anon/orders", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
