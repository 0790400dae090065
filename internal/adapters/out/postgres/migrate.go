package postgres

import (
	"gorm.io/gorm"

	"dispatch/internal/adapters/out/postgres/blastrepo"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/eventrepo"
	"dispatch/internal/adapters/out/postgres/loadrepo"
)

// Migrate creates or updates the schema for every table the engine owns,
// then applies the partial unique indexes enforcing one active load per
// courier and one active blast per load. GORM struct tags cannot express a
// partial index, so those statements run as raw DDL after AutoMigrate.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&loadrepo.LoadDTO{},
		&blastrepo.BlastDTO{},
		&blastrepo.ResponseDTO{},
		&courierrepo.CourierDTO{},
		&courierrepo.PositionDTO{},
		&eventrepo.StatusEventDTO{},
	)
	if err != nil {
		return err
	}

	if err := db.Exec(loadrepo.ActiveAssignmentIndexDDL).Error; err != nil {
		return err
	}

	return db.Exec(blastrepo.ActiveBlastIndexDDL).Error
}
