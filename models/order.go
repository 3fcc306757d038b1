package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Order struct {
	ID             uint            `gorm:"primaryKey" json:"order_id"`
	CustomerID     *uint           `gorm:"index" json:"customer_id,omitempty"`
	CustomerName   string          `gorm:"type:varchar(255)" json:"customer_name"`
	PhoneCustomer  string          `gorm:"type:varchar(20)" json:"phone_customer"`
	EmployeeID     *uint           `gorm:"index" json:"employee_id,omitempty"`
	ActivityID     *uint           `gorm:"index" json:"activity_id,omitempty"`
	OrderDate      time.Time       `gorm:"not null;index" json:"order_date"`
	OrderUsageDate *datatypes.Date `gorm:"index" json:"order_usage_date,omitempty"`
	Deposit        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"deposit"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_amount"`
	AmountPayable  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_payable"`
	StatusOrder    bool            `gorm:"not null;default:false" json:"status_order"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RecomputePayable keeps AmountPayable = TotalAmount - Deposit.
func (o *Order) RecomputePayable() {
	o.AmountPayable = o.TotalAmount.Sub(o.Deposit)
}

// ApplyDeposit records a prepayment. A zero amount clears the deposit.
func (o *Order) ApplyDeposit(amount decimal.Decimal) {
	if amount.IsZero() {
		o.ClearDeposit()
		return
	}
	o.Deposit = amount
	o.StatusOrder = true
	o.RecomputePayable()
}

func (o *Order) ClearDeposit() {
	o.Deposit = decimal.Zero
	o.StatusOrder = false
	o.RecomputePayable()
}

// UsageDay normalises a timestamp to its calendar day at UTC midnight, the
// form usage dates are stored and compared in.
func UsageDay(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
