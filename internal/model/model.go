// Package model holds the gorm row types.
package model

import "gorm.io/gorm"

// AutoMigrate migrates the table for the named model.
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {
	case "Flow":
		return db.AutoMigrate(Flow{})
	case "FlowVersion":
		return db.AutoMigrate(FlowVersion{})
	}
	return nil
}

// AutoMigrateAll migrates every table owned by this service.
func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(Flow{}, FlowVersion{})
}
