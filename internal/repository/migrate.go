package repository

import (
	"go-procurement-ws/internal/model"

	"gorm.io/gorm"
)

// Migrate brings the schema up to date. Every step is additive and safe to re-run.
func Migrate(db *gorm.DB) error {
	// Older databases have a nullable designation column. Backfill before AutoMigrate
	// tightens it to NOT NULL.
	if db.Migrator().HasTable(&model.PurchaseOrder{}) && db.Migrator().HasColumn(&model.PurchaseOrder{}, "designation") {
		if err := db.Exec("UPDATE purchase_orders SET designation = '' WHERE designation IS NULL").Error; err != nil {
			return err
		}
	}

	err := db.AutoMigrate(
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Supplier{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.Category{},
		&model.StockItem{},
		&model.StockReceiving{},
		&model.StockIssuance{},
		&model.DocumentSequence{},
	)
	if err != nil {
		return err
	}

	if err := db.Exec("ALTER TABLE purchase_orders ALTER COLUMN designation SET DEFAULT ''").Error; err != nil {
		return err
	}
	return db.Exec("ALTER TABLE purchase_orders ALTER COLUMN designation SET NOT NULL").Error
}
