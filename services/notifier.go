package services

import "github.com/yeremiapane/campsite-app/models"

// Events published after an order write commits.
const (
	EventOrderCreated     = "order_created"
	EventOrderUpdated     = "order_updated"
	EventOrderDeleted     = "order_deleted"
	EventDepositEntered   = "deposit_entered"
	EventDepositCancelled = "deposit_cancelled"
)

// Notifier receives order events, e.g. to refresh staff dashboards.
type Notifier interface {
	Notify(event string, data interface{})
}

type noopNotifier struct{}

func (noopNotifier) Notify(string, interface{}) {}

func orderEvent(o models.Order) map[string]interface{} {
	return map[string]interface{}{
		"order_id":       o.ID,
		"activity_id":    o.ActivityID,
		"status_order":   o.StatusOrder,
		"deposit":        o.Deposit,
		"total_amount":   o.TotalAmount,
		"amount_payable": o.AmountPayable,
	}
}
