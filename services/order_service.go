package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/yeremiapane/campsite-app/dbctx"
	"github.com/yeremiapane/campsite-app/models"
	"github.com/yeremiapane/campsite-app/repository"
	"github.com/yeremiapane/campsite-app/utils"
)

// OrderAggregator menyusun order dari grup item (tiket, gear, makanan,
// combo) dan menjaga konsistensi deposit serta detail order.
type OrderAggregator struct {
	db       *gorm.DB
	orders   repository.OrderRepository
	catalog  repository.CatalogRepository
	notifier Notifier
	validate *validator.Validate
	now      func() time.Time
	log      *logrus.Entry
}

// NewOrderAggregator wires the aggregator on db. A nil notifier drops events.
func NewOrderAggregator(db *gorm.DB, orders repository.OrderRepository, catalog repository.CatalogRepository, notifier Notifier) *OrderAggregator {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrderAggregator{
		db:       db,
		orders:   orders,
		catalog:  catalog,
		notifier: notifier,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
		log:      utils.InfoLogger.WithField("service", "OrderAggregator"),
	}
}

// inTx runs fn in a transaction, nested as a savepoint when dbc already has one.
func (s *OrderAggregator) inTx(dbc dbctx.Context, fn func(dbctx.Context) error) error {
	return dbctx.Transaction(s.db, dbc, fn)
}

// publish sends an event once the caller's outermost transaction commits.
func (s *OrderAggregator) publish(dbc dbctx.Context, event string, data interface{}) {
	dbc.OnCommit(func() { s.notifier.Notify(event, data) })
}

// finish maps the outcome of a write: not found is (false, nil),
// validation errors pass through, anything else is wrapped.
func (s *OrderAggregator) finish(op string, err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errNotFound):
		return false, nil
	case IsValidation(err):
		return false, err
	default:
		utils.ErrorLogger.Printf("%s failed: %v", op, err)
		return false, fmt.Errorf("%s: %w", op, err)
	}
}

func (s *OrderAggregator) checkCatalog(dbc dbctx.Context, groups []lineGroup) error {
	var fields []FieldError
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		ids := make([]uint, 0, len(g.items))
		for _, item := range g.items {
			ids = append(ids, item.ItemID)
		}
		missing, err := s.catalog.MissingItems(dbc, g.kind, ids)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fields = append(fields, FieldError{Field: g.field, Message: fmt.Sprintf("unknown %s ids %v", g.kind.Label(), missing)})
		}
	}
	return newValidationError(fields, nil)
}

// CreateUniqueOrder creates an order with every non-empty line-item group
// in one transaction.
func (s *OrderAggregator) CreateUniqueOrder(dbc dbctx.Context, req CreateOrderRequest) (bool, error) {
	if err := validateCreate(s.validate, req); err != nil {
		return false, err
	}

	var order models.Order
	err := s.inTx(dbc, func(dbc dbctx.Context) error {
		groups := req.groups()
		if err := s.checkCatalog(dbc, groups); err != nil {
			return err
		}

		activity := models.ActivityPending
		order = models.Order{
			CustomerID:    req.Order.CustomerID,
			CustomerName:  req.Order.CustomerName,
			PhoneCustomer: req.Order.PhoneCustomer,
			EmployeeID:    req.Order.EmployeeID,
			ActivityID:    &activity,
			OrderDate:     s.now(),
			TotalAmount:   req.Order.TotalAmount,
		}
		if req.Order.OrderUsageDate != nil {
			day := models.UsageDay(*req.Order.OrderUsageDate)
			order.OrderUsageDate = &day
		}
		order.ApplyDeposit(req.Order.Deposit)

		if err := s.orders.Create(dbc, &order); err != nil {
			return err
		}

		var lines []models.OrderLine
		for _, g := range groups {
			for _, item := range g.items {
				lines = append(lines, models.OrderLine{
					OrderID:     order.ID,
					Kind:        g.kind,
					ItemID:      item.ItemID,
					Quantity:    item.Quantity,
					Description: item.Description,
				})
			}
		}
		return s.orders.CreateLines(dbc, lines)
	})

	ok, err := s.finish("create order", err)
	if ok {
		s.log.WithFields(logrus.Fields{"order_id": order.ID, "total": order.TotalAmount.String()}).Info("order created")
		s.publish(dbc, EventOrderCreated, orderEvent(order))
	}
	return ok, err
}

// CreateComboOrder creates an order made only of combos and food combos.
func (s *OrderAggregator) CreateComboOrder(dbc dbctx.Context, req CreateComboOrderRequest) (bool, error) {
	return s.CreateUniqueOrder(dbc, CreateOrderRequest{
		Order:      req.Order,
		Combos:     req.Combos,
		FoodCombos: req.FoodCombos,
	})
}

func summaryFromRow(row repository.OrderRow) OrderSummary {
	name := row.CustomerName
	if row.CustomerID != nil {
		if full := (models.User{FirstName: row.CustomerFirstName, LastName: row.CustomerLastName}).FullName(); full != "" {
			name = full
		}
	}
	phone := row.PhoneCustomer
	if phone == "" {
		phone = row.CustomerPhone
	}
	return OrderSummary{
		OrderID:        row.OrderID,
		CustomerID:     row.CustomerID,
		CustomerName:   name,
		PhoneCustomer:  phone,
		EmployeeID:     row.EmployeeID,
		EmployeeName:   (models.User{FirstName: row.EmployeeFirstName, LastName: row.EmployeeLastName}).FullName(),
		ActivityID:     row.ActivityID,
		ActivityName:   row.ActivityName,
		OrderDate:      row.OrderDate,
		OrderUsageDate: row.OrderUsageDate,
		Deposit:        row.Deposit,
		TotalAmount:    row.TotalAmount,
		AmountPayable:  row.AmountPayable,
		StatusOrder:    row.StatusOrder,
	}
}

// GetOrderDetail returns the order with all its lines priced from the
// catalog, or nil when the order does not exist.
func (s *OrderAggregator) GetOrderDetail(dbc dbctx.Context, id uint) (*OrderDetail, error) {
	row, err := s.orders.GetRow(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	if row == nil {
		return nil, nil
	}

	detail := &OrderDetail{OrderSummary: summaryFromRow(*row), LinesTotal: decimal.Zero}
	for _, kind := range models.AllKinds {
		rows, err := s.orders.ListLineRows(dbc, id, kind)
		if err != nil {
			return nil, fmt.Errorf("get %s lines of order %d: %w", kind, id, err)
		}
		lines := make([]LineDetail, 0, len(rows))
		for _, r := range rows {
			lines = append(lines, LineDetail{
				ItemID:      r.ItemID,
				Name:        r.Name,
				Quantity:    r.Quantity,
				Price:       r.Price,
				Description: r.Description,
			})
			detail.LinesTotal = detail.LinesTotal.Add(r.Price.Mul(decimal.NewFromInt(int64(r.Quantity))))
		}
		*detail.lines(kind) = lines
	}
	return detail, nil
}

// GetCustomerOrderDetail is GetOrderDetail without staff-only fields.
func (s *OrderAggregator) GetCustomerOrderDetail(dbc dbctx.Context, id uint) (*OrderDetail, error) {
	detail, err := s.GetOrderDetail(dbc, id)
	if err != nil || detail == nil {
		return detail, err
	}
	detail.EmployeeID = nil
	detail.EmployeeName = ""
	return detail, nil
}

// EnterDeposit records a deposit and recomputes the payable amount.
func (s *OrderAggregator) EnterDeposit(dbc dbctx.Context, id uint, amount decimal.Decimal) (bool, error) {
	if amount.IsNegative() {
		return false, newValidationError([]FieldError{{Field: "amount", Message: "must not be negative"}}, nil)
	}

	var order *models.Order
	err := s.inTx(dbc, func(dbc dbctx.Context) error {
		var err error
		order, err = s.orders.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if order == nil {
			return errNotFound
		}
		if amount.GreaterThan(order.TotalAmount) {
			return newValidationError([]FieldError{{Field: "amount", Message: "must not exceed total amount " + order.TotalAmount.StringFixed(2)}}, nil)
		}
		order.ApplyDeposit(amount)
		return s.orders.Save(dbc, order)
	})

	ok, err := s.finish("enter deposit", err)
	if ok {
		s.log.WithFields(logrus.Fields{"order_id": id, "deposit": amount.String()}).Info("deposit entered")
		s.publish(dbc, EventDepositEntered, orderEvent(*order))
	}
	return ok, err
}

// CancelDeposit clears the deposit of an order.
func (s *OrderAggregator) CancelDeposit(dbc dbctx.Context, id uint) (bool, error) {
	var order *models.Order
	err := s.inTx(dbc, func(dbc dbctx.Context) error {
		var err error
		order, err = s.orders.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if order == nil {
			return errNotFound
		}
		order.ClearDeposit()
		return s.orders.Save(dbc, order)
	})

	ok, err := s.finish("cancel deposit", err)
	if ok {
		s.log.WithField("order_id", id).Info("deposit cancelled")
		s.publish(dbc, EventDepositCancelled, orderEvent(*order))
	}
	return ok, err
}

// DeleteOrder removes an order together with all of its lines.
func (s *OrderAggregator) DeleteOrder(dbc dbctx.Context, id uint) (bool, error) {
	var lines int64
	err := s.inTx(dbc, func(dbc dbctx.Context) error {
		order, err := s.orders.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if order == nil {
			return errNotFound
		}
		removed, err := s.orders.DeleteLines(dbc, id)
		if err != nil {
			return err
		}
		deleted, err := s.orders.Delete(dbc, id)
		if err != nil {
			return err
		}
		if !deleted {
			return errNotFound
		}
		lines = removed
		return nil
	})

	ok, err := s.finish("delete order", err)
	if ok {
		s.log.WithFields(logrus.Fields{"order_id": id, "lines": lines}).Info("order deleted")
		s.publish(dbc, EventOrderDeleted, map[string]interface{}{"order_id": id})
	}
	return ok, err
}

// UpdateActivityOrder moves an order to another activity.
func (s *OrderAggregator) UpdateActivityOrder(dbc dbctx.Context, orderID, activityID uint) (bool, error) {
	var order *models.Order
	err := s.inTx(dbc, func(dbc dbctx.Context) error {
		var err error
		order, err = s.orders.GetByID(dbc, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return errNotFound
		}
		exists, err := s.catalog.ActivityExists(dbc, activityID)
		if err != nil {
			return err
		}
		if !exists {
			return errNotFound
		}
		order.ActivityID = &activityID
		return s.orders.Save(dbc, order)
	})

	ok, err := s.finish("update order activity", err)
	if ok {
		s.log.WithFields(logrus.Fields{"order_id": orderID, "activity_id": activityID}).Info("order activity updated")
		s.publish(dbc, EventOrderUpdated, orderEvent(*order))
	}
	return ok, err
}

// UpdateOrder edits the order header and keeps the payable amount in step.
func (s *OrderAggregator) UpdateOrder(dbc dbctx.Context, req UpdateOrderRequest) (bool, error) {
	if err := validateUpdateOrder(s.validate, req); err != nil {
		return false, err
	}

	var order *models.Order
	err := s.inTx(dbc, func(dbc dbctx.Context) error {
		var err error
		order, err = s.orders.GetByID(dbc, req.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return errNotFound
		}

		if req.EmployeeID != nil {
			order.EmployeeID = req.EmployeeID
		}
		if req.CustomerName != nil {
			order.CustomerName = *req.CustomerName
		}
		if req.PhoneCustomer != nil {
			order.PhoneCustomer = *req.PhoneCustomer
		}
		if req.OrderUsageDate != nil {
			day := models.UsageDay(*req.OrderUsageDate)
			order.OrderUsageDate = &day
		}
		if req.TotalAmount != nil {
			order.TotalAmount = *req.TotalAmount
		}
		if req.Deposit != nil {
			order.ApplyDeposit(*req.Deposit)
		} else {
			order.RecomputePayable()
		}

		if fields := moneyFields("", order.Deposit, order.TotalAmount); len(fields) > 0 {
			return newValidationError(fields, nil)
		}
		return s.orders.Save(dbc, order)
	})

	ok, err := s.finish("update order", err)
	if ok {
		s.log.WithField("order_id", req.OrderID).Info("order updated")
		s.publish(dbc, EventOrderUpdated, orderEvent(*order))
	}
	return ok, err
}

func (s *OrderAggregator) UpdateTicket(dbc dbctx.Context, lines []LineUpdate) (bool, error) {
	return s.updateLines(dbc, models.KindTicket, "order_ticket", lines)
}

func (s *OrderAggregator) UpdateGear(dbc dbctx.Context, lines []LineUpdate) (bool, error) {
	return s.updateLines(dbc, models.KindGear, "order_camping_gear", lines)
}

func (s *OrderAggregator) UpdateFood(dbc dbctx.Context, lines []LineUpdate) (bool, error) {
	return s.updateLines(dbc, models.KindFood, "order_food", lines)
}

func (s *OrderAggregator) UpdateCombo(dbc dbctx.Context, lines []LineUpdate) (bool, error) {
	return s.updateLines(dbc, models.KindCombo, "order_combo", lines)
}

func (s *OrderAggregator) UpdateComboFood(dbc dbctx.Context, lines []LineUpdate) (bool, error) {
	return s.updateLines(dbc, models.KindFoodCombo, "order_food_combo", lines)
}

// updateLines upserts lines of one kind. Nothing is written when any of
// the referenced orders is missing.
func (s *OrderAggregator) updateLines(dbc dbctx.Context, kind models.LineKind, field string, updates []LineUpdate) (bool, error) {
	if err := validateLineUpdates(s.validate, kind, updates); err != nil {
		return false, err
	}

	var orderIDs []uint
	seen := map[uint]bool{}
	group := lineGroup{kind: kind, field: field}
	for _, u := range updates {
		if !seen[u.OrderID] {
			seen[u.OrderID] = true
			orderIDs = append(orderIDs, u.OrderID)
		}
		group.items = append(group.items, LineItem{ItemID: u.ItemID, Quantity: u.Quantity, Description: u.Description})
	}

	err := s.inTx(dbc, func(dbc dbctx.Context) error {
		found, err := s.orders.ExistingIDs(dbc, orderIDs)
		if err != nil {
			return err
		}
		if len(found) != len(orderIDs) {
			return errNotFound
		}
		if err := s.checkCatalog(dbc, []lineGroup{group}); err != nil {
			return err
		}

		now := s.now()
		lines := make([]models.OrderLine, 0, len(updates))
		for _, u := range updates {
			lines = append(lines, models.OrderLine{
				OrderID:     u.OrderID,
				Kind:        kind,
				ItemID:      u.ItemID,
				Quantity:    u.Quantity,
				Description: u.Description,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
		return s.orders.UpsertLines(dbc, lines)
	})

	ok, err := s.finish("update "+kind.Label()+" lines", err)
	if ok {
		s.log.WithFields(logrus.Fields{"kind": kind, "lines": len(updates), "orders": orderIDs}).Info("order lines updated")
		for _, id := range orderIDs {
			s.publish(dbc, EventOrderUpdated, map[string]interface{}{"order_id": id, "kind": kind})
		}
	}
	return ok, err
}

func summaries(rows []repository.OrderRow) []OrderSummary {
	out := make([]OrderSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, summaryFromRow(r))
	}
	return out
}

// GetAllOrders lists orders by id, optionally filtered by status and activity.
func (s *OrderAggregator) GetAllOrders(dbc dbctx.Context, filter OrderFilter) ([]OrderSummary, error) {
	rows, err := s.orders.ListRows(dbc, repository.OrderFilter{
		StatusOrder: filter.StatusOrder,
		ActivityID:  filter.ActivityID,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return summaries(rows), nil
}

// GetAllOrderDepositAndUsing lists deposited orders whose activity is in use.
func (s *OrderAggregator) GetAllOrderDepositAndUsing(dbc dbctx.Context) ([]OrderSummary, error) {
	status := true
	activity := models.ActivityInUse
	return s.GetAllOrders(dbc, OrderFilter{StatusOrder: &status, ActivityID: &activity})
}

// GetCustomerOrders lists the orders of one customer, newest first.
func (s *OrderAggregator) GetCustomerOrders(dbc dbctx.Context, customerID uint, statusOrder *bool, activityID *uint) ([]OrderSummary, error) {
	rows, err := s.orders.ListRows(dbc, repository.OrderFilter{
		CustomerID:  &customerID,
		StatusOrder: statusOrder,
		ActivityID:  activityID,
		NewestFirst: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list orders of customer %d: %w", customerID, err)
	}
	return summaries(rows), nil
}

// GetListOrderGearByUsageDate lists the camping gear booked for a day.
func (s *OrderAggregator) GetListOrderGearByUsageDate(dbc dbctx.Context, date time.Time) ([]GearUsage, error) {
	rows, err := s.orders.ListGearByUsageDate(dbc, models.UsageDay(date))
	if err != nil {
		return nil, fmt.Errorf("list gear for %s: %w", date.Format("2006-01-02"), err)
	}
	out := make([]GearUsage, 0, len(rows))
	for _, r := range rows {
		out = append(out, GearUsage{OrderID: r.OrderID, GearID: r.GearID, Quantity: r.Quantity})
	}
	return out, nil
}
