package models

import "time"

// Activity ids seeded by the migrations. An order moves Pending -> InUse ->
// Completed, or to Cancelled.
const (
	ActivityPending   uint = 1
	ActivityInUse     uint = 2
	ActivityCompleted uint = 3
	ActivityCancelled uint = 4
)

type Activity struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
