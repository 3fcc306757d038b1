package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yeremiapane/campsite-app/dbctx"
	"github.com/yeremiapane/campsite-app/models"
)

// CatalogRepository answers existence questions about catalog items and
// activities. It never writes.
type CatalogRepository interface {
	MissingItems(dbc dbctx.Context, kind models.LineKind, ids []uint) ([]uint, error)
	ActivityExists(dbc dbctx.Context, id uint) (bool, error)
}

type catalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

// MissingItems returns the ids that have no row in the catalog table of kind.
func (r *catalogRepo) MissingItems(dbc dbctx.Context, kind models.LineKind, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown line kind %q", kind)
	}

	var found []uint
	if err := dbc.Conn(r.db).Table(kind.Table()).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]struct{}, len(found))
	for _, id := range found {
		seen[id] = struct{}{}
	}
	var missing []uint
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *catalogRepo) ActivityExists(dbc dbctx.Context, id uint) (bool, error) {
	if id == 0 {
		return false, nil
	}
	var count int64
	if err := dbc.Conn(r.db).Model(&models.Activity{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
