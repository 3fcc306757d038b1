package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/yeremiapane/campsite-app/models"
)

// OrderHeader holds the order fields entered at the counter. A customer is
// named either by account id or by free-text name.
type OrderHeader struct {
	EmployeeID     *uint           `json:"employee_id"`
	CustomerID     *uint           `json:"customer_id"`
	CustomerName   string          `json:"customer_name" validate:"required_without=CustomerID,max=255"`
	PhoneCustomer  string          `json:"phone_customer" validate:"omitempty,max=20"`
	OrderUsageDate *time.Time      `json:"order_usage_date"`
	Deposit        decimal.Decimal `json:"deposit"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// LineItem is one (item, quantity) entry of a line-item group.
type LineItem struct {
	ItemID      uint    `json:"item_id" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

type CreateOrderRequest struct {
	Order      OrderHeader `json:"order"`
	Tickets    []LineItem  `json:"order_ticket" validate:"dive"`
	Gears      []LineItem  `json:"order_camping_gear" validate:"dive"`
	Foods      []LineItem  `json:"order_food" validate:"dive"`
	FoodCombos []LineItem  `json:"order_food_combo" validate:"dive"`
	Combos     []LineItem  `json:"order_combo" validate:"dive"`
}

type lineGroup struct {
	kind  models.LineKind
	field string
	items []LineItem
}

func (r CreateOrderRequest) groups() []lineGroup {
	return []lineGroup{
		{kind: models.KindTicket, field: "order_ticket", items: r.Tickets},
		{kind: models.KindGear, field: "order_camping_gear", items: r.Gears},
		{kind: models.KindFood, field: "order_food", items: r.Foods},
		{kind: models.KindFoodCombo, field: "order_food_combo", items: r.FoodCombos},
		{kind: models.KindCombo, field: "order_combo", items: r.Combos},
	}
}

// CreateComboOrderRequest books an order made only of combos.
type CreateComboOrderRequest struct {
	Order      OrderHeader `json:"order"`
	Combos     []LineItem  `json:"order_combo" validate:"dive"`
	FoodCombos []LineItem  `json:"order_food_combo" validate:"dive"`
}

// UpdateOrderRequest edits the header of an order. Nil fields are kept.
type UpdateOrderRequest struct {
	OrderID        uint             `json:"order_id" validate:"required"`
	EmployeeID     *uint            `json:"employee_id"`
	CustomerName   *string          `json:"customer_name" validate:"omitempty,max=255"`
	PhoneCustomer  *string          `json:"phone_customer" validate:"omitempty,max=20"`
	OrderUsageDate *time.Time       `json:"order_usage_date"`
	TotalAmount    *decimal.Decimal `json:"total_amount"`
	Deposit        *decimal.Decimal `json:"deposit"`
}

// LineUpdate replaces (or adds) the line of ItemID on order OrderID.
type LineUpdate struct {
	OrderID     uint    `json:"order_id" validate:"required"`
	ItemID      uint    `json:"item_id" validate:"required"`
	Quantity    int     `json:"quantity" validate:"gte=1"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// OrderFilter narrows GetAllOrders. Nil fields do not filter.
type OrderFilter struct {
	StatusOrder *bool
	ActivityID  *uint
}

type OrderSummary struct {
	OrderID        uint            `json:"order_id"`
	CustomerID     *uint           `json:"customer_id,omitempty"`
	CustomerName   string          `json:"customer_name"`
	PhoneCustomer  string          `json:"phone_customer"`
	EmployeeID     *uint           `json:"employee_id,omitempty"`
	EmployeeName   string          `json:"employee_name,omitempty"`
	ActivityID     *uint           `json:"activity_id,omitempty"`
	ActivityName   string          `json:"activity_name"`
	OrderDate      time.Time       `json:"order_date"`
	OrderUsageDate *datatypes.Date `json:"order_usage_date,omitempty"`
	Deposit        decimal.Decimal `json:"deposit"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	AmountPayable  decimal.Decimal `json:"amount_payable"`
	StatusOrder    bool            `json:"status_order"`
}

type LineDetail struct {
	ItemID      uint            `json:"item_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Description *string         `json:"description,omitempty"`
}

// OrderDetail is the denormalized view of one order. Line prices are the
// current catalog prices.
type OrderDetail struct {
	OrderSummary
	Tickets    []LineDetail    `json:"order_ticket_details"`
	Gears      []LineDetail    `json:"order_camping_gear_details"`
	Foods      []LineDetail    `json:"order_food_details"`
	FoodCombos []LineDetail    `json:"order_food_combo_details"`
	Combos     []LineDetail    `json:"order_combo_details"`
	LinesTotal decimal.Decimal `json:"lines_total"`
}

func (d *OrderDetail) lines(kind models.LineKind) *[]LineDetail {
	switch kind {
	case models.KindTicket:
		return &d.Tickets
	case models.KindGear:
		return &d.Gears
	case models.KindFood:
		return &d.Foods
	case models.KindFoodCombo:
		return &d.FoodCombos
	default:
		return &d.Combos
	}
}

type GearUsage struct {
	OrderID  uint `json:"order_id"`
	GearID   uint `json:"gear_id"`
	Quantity int  `json:"quantity"`
}
