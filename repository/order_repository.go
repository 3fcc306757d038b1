package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/campsite-app/dbctx"
	"github.com/yeremiapane/campsite-app/models"
	"github.com/yeremiapane/campsite-app/utils"
)

// OrderFilter narrows order listings. Nil fields do not filter.
type OrderFilter struct {
	CustomerID  *uint
	StatusOrder *bool
	ActivityID  *uint
	NewestFirst bool
}

// OrderRow is an order header joined with the display names of the
// customer account, the employee and the activity.
type OrderRow struct {
	OrderID           uint
	CustomerID        *uint
	CustomerName      string
	PhoneCustomer     string
	CustomerFirstName string
	CustomerLastName  string
	CustomerPhone     string
	EmployeeID        *uint
	EmployeeFirstName string
	EmployeeLastName  string
	ActivityID        *uint
	ActivityName      string
	OrderDate         time.Time
	OrderUsageDate    *datatypes.Date
	Deposit           decimal.Decimal
	TotalAmount       decimal.Decimal
	AmountPayable     decimal.Decimal
	StatusOrder       bool
}

// LineRow is an order line joined with the live catalog name and price.
type LineRow struct {
	OrderID     uint
	ItemID      uint
	Quantity    int
	Description *string
	Name        string
	Price       decimal.Decimal
}

// GearUsageRow is a camping-gear line of an order used on a given day.
type GearUsageRow struct {
	OrderID  uint
	GearID   uint
	Quantity int
}

type OrderRepository interface {
	Create(dbc dbctx.Context, order *models.Order) error
	CreateLines(dbc dbctx.Context, lines []models.OrderLine) error
	UpsertLines(dbc dbctx.Context, lines []models.OrderLine) error
	GetByID(dbc dbctx.Context, id uint) (*models.Order, error)
	ExistingIDs(dbc dbctx.Context, ids []uint) ([]uint, error)
	Save(dbc dbctx.Context, order *models.Order) error
	DeleteLines(dbc dbctx.Context, orderID uint) (int64, error)
	Delete(dbc dbctx.Context, id uint) (bool, error)
	GetRow(dbc dbctx.Context, id uint) (*OrderRow, error)
	ListRows(dbc dbctx.Context, filter OrderFilter) ([]OrderRow, error)
	ListLineRows(dbc dbctx.Context, orderID uint, kind models.LineKind) ([]LineRow, error)
	ListGearByUsageDate(dbc dbctx.Context, day datatypes.Date) ([]GearUsageRow, error)
}

type orderRepo struct {
	db  *gorm.DB
	log *logrus.Entry
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db, log: utils.InfoLogger.WithField("repo", "OrderRepository")}
}

const orderRowSelect = `o.id AS order_id, o.customer_id, COALESCE(o.customer_name, '') AS customer_name,
	COALESCE(o.phone_customer, '') AS phone_customer,
	COALESCE(c.first_name, '') AS customer_first_name, COALESCE(c.last_name, '') AS customer_last_name,
	COALESCE(c.phone_number, '') AS customer_phone,
	o.employee_id, COALESCE(e.first_name, '') AS employee_first_name, COALESCE(e.last_name, '') AS employee_last_name,
	o.activity_id, COALESCE(a.name, '') AS activity_name,
	o.order_date, o.order_usage_date, o.deposit, o.total_amount, o.amount_payable, o.status_order`

func (r *orderRepo) rows(dbc dbctx.Context) *gorm.DB {
	return dbc.Conn(r.db).
		Table("orders AS o").
		Select(orderRowSelect).
		Joins("LEFT JOIN users c ON c.id = o.customer_id").
		Joins("LEFT JOIN users e ON e.id = o.employee_id").
		Joins("LEFT JOIN activities a ON a.id = o.activity_id")
}

func (r *orderRepo) Create(dbc dbctx.Context, order *models.Order) error {
	if order == nil {
		return errors.New("create order: nil order")
	}
	return dbc.Conn(r.db).Omit(clause.Associations).Create(order).Error
}

func (r *orderRepo) CreateLines(dbc dbctx.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return dbc.Conn(r.db).Create(&lines).Error
}

// UpsertLines inserts lines or replaces quantity and description of the
// existing (order, kind, item) rows.
func (r *orderRepo) UpsertLines(dbc dbctx.Context, lines []models.OrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}, {Name: "kind"}, {Name: "item_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"quantity", "description", "updated_at"}),
		}).
		Create(&lines).Error
}

func (r *orderRepo) GetByID(dbc dbctx.Context, id uint) (*models.Order, error) {
	if id == 0 {
		return nil, nil
	}
	var order models.Order
	err := dbc.Conn(r.db).First(&order, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepo) ExistingIDs(dbc dbctx.Context, ids []uint) ([]uint, error) {
	found := []uint{}
	if len(ids) == 0 {
		return found, nil
	}
	err := dbc.Conn(r.db).Model(&models.Order{}).Where("id IN ?", ids).Pluck("id", &found).Error
	return found, err
}

func (r *orderRepo) Save(dbc dbctx.Context, order *models.Order) error {
	return dbc.Conn(r.db).Omit(clause.Associations).Save(order).Error
}

// DeleteLines removes every line of an order and reports how many went.
func (r *orderRepo) DeleteLines(dbc dbctx.Context, orderID uint) (int64, error) {
	res := dbc.Conn(r.db).Where("order_id = ?", orderID).Delete(&models.OrderLine{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete order lines: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the order header. Its lines go with it through the
// cascading foreign key; callers that cannot rely on the database for that
// run DeleteLines first in the same transaction.
func (r *orderRepo) Delete(dbc dbctx.Context, id uint) (bool, error) {
	res := dbc.Conn(r.db).Delete(&models.Order{}, id)
	if res.Error != nil {
		return false, res.Error
	}
	r.log.WithField("order_id", id).Debug("order row deleted")
	return res.RowsAffected > 0, nil
}

func (r *orderRepo) GetRow(dbc dbctx.Context, id uint) (*OrderRow, error) {
	var rows []OrderRow
	if err := r.rows(dbc).Where("o.id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *orderRepo) ListRows(dbc dbctx.Context, filter OrderFilter) ([]OrderRow, error) {
	q := r.rows(dbc)
	if filter.CustomerID != nil {
		q = q.Where("o.customer_id = ?", *filter.CustomerID)
	}
	if filter.StatusOrder != nil {
		q = q.Where("o.status_order = ?", *filter.StatusOrder)
	}
	if filter.ActivityID != nil {
		q = q.Where("o.activity_id = ?", *filter.ActivityID)
	}
	if filter.NewestFirst {
		q = q.Order("o.order_date DESC").Order("o.id DESC")
	} else {
		q = q.Order("o.id ASC")
	}

	rows := []OrderRow{}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepo) ListLineRows(dbc dbctx.Context, orderID uint, kind models.LineKind) ([]LineRow, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown line kind %q", kind)
	}
	sel := fmt.Sprintf(`ol.order_id, ol.item_id, ol.quantity, ol.description,
		COALESCE(c.%s, '') AS name, COALESCE(c.%s, 0) AS price`, kind.NameColumn(), kind.PriceColumn())

	rows := []LineRow{}
	err := dbc.Conn(r.db).
		Table("order_lines AS ol").
		Select(sel).
		Joins(fmt.Sprintf("LEFT JOIN %s c ON c.id = ol.item_id", kind.Table())).
		Where("ol.order_id = ? AND ol.kind = ?", orderID, kind).
		Order("ol.item_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepo) ListGearByUsageDate(dbc dbctx.Context, day datatypes.Date) ([]GearUsageRow, error) {
	rows := []GearUsageRow{}
	err := dbc.Conn(r.db).
		Table("order_lines AS ol").
		Select("ol.order_id, ol.item_id AS gear_id, ol.quantity").
		Joins("JOIN orders o ON o.id = ol.order_id").
		Where("ol.kind = ? AND o.order_usage_date = ?", models.KindGear, day).
		Order("ol.order_id ASC, ol.item_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
