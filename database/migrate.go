package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/campsite-app/models"
	"github.com/yeremiapane/campsite-app/utils"
)

var seedActivities = []models.Activity{
	{ID: models.ActivityPending, Name: "Pending"},
	{ID: models.ActivityInUse, Name: "In use"},
	{ID: models.ActivityCompleted, Name: "Completed"},
	{ID: models.ActivityCancelled, Name: "Cancelled"},
}

// Migrate creates or updates the schema and seeds reference data.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("migrate: nil database")
	}

	err := db.AutoMigrate(
		&models.User{},
		&models.Activity{},
		&models.Ticket{},
		&models.CampingGear{},
		&models.FoodAndDrink{},
		&models.FoodCombo{},
		&models.Combo{},
		&models.Order{},
		&models.OrderLine{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	if err := SeedActivities(db); err != nil {
		return err
	}
	return nil
}

// SeedActivities inserts the fixed activity rows that are missing.
func SeedActivities(db *gorm.DB) error {
	for _, a := range seedActivities {
		row := a
		if err := db.Where(models.Activity{ID: row.ID}).Attrs(models.Activity{Name: row.Name}).FirstOrCreate(&row).Error; err != nil {
			return fmt.Errorf("seed activity %d: %w", a.ID, err)
		}
	}
	utils.InfoLogger.Printf("Seeded %d activities", len(seedActivities))
	return nil
}
