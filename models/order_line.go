package models

import (
	"time"
)

// LineKind tags an order line with the catalog it was sold from.
type LineKind string

const (
	KindTicket    LineKind = "ticket"
	KindGear      LineKind = "gear"
	KindFood      LineKind = "food"
	KindFoodCombo LineKind = "food_combo"
	KindCombo     LineKind = "combo"
)

// AllKinds lists kinds in the order they appear on an order detail.
var AllKinds = []LineKind{KindTicket, KindGear, KindFood, KindFoodCombo, KindCombo}

type kindInfo struct {
	table       string
	priceColumn string
	label       string
	description bool
}

var kinds = map[LineKind]kindInfo{
	KindTicket:    {table: "tickets", priceColumn: "price", label: "ticket", description: true},
	KindGear:      {table: "camping_gears", priceColumn: "rental_price", label: "camping gear"},
	KindFood:      {table: "food_and_drinks", priceColumn: "price", label: "food item", description: true},
	KindFoodCombo: {table: "food_combos", priceColumn: "price", label: "food combo"},
	KindCombo:     {table: "combos", priceColumn: "price", label: "combo", description: true},
}

func (k LineKind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

// Table is the catalog table holding items of this kind.
func (k LineKind) Table() string { return kinds[k].table }

func (k LineKind) NameColumn() string { return "name" }

func (k LineKind) PriceColumn() string { return kinds[k].priceColumn }

// HasDescription reports whether lines of this kind carry a free-text description.
func (k LineKind) HasDescription() bool { return kinds[k].description }

func (k LineKind) Label() string { return kinds[k].label }

type OrderLine struct {
	OrderID     uint      `gorm:"primaryKey;autoIncrement:false" json:"order_id"`
	Kind        LineKind  `gorm:"primaryKey;type:varchar(20)" json:"kind"`
	ItemID      uint      `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Order *Order `gorm:"foreignKey:OrderID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
