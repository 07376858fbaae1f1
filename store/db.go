// Package store opens the hawiya database and keeps its schema current.
package store

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/adonese/hawiya/fields"
)

// Open connects to the sqlite database at path and migrates the schema.
// The unique indexes on users.email and users.google_id are created here;
// they are what turns a concurrent link/create race on the same email into
// one success and one typed conflict instead of two duplicate accounts.
func Open(path string, debug bool) (*gorm.DB, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&fields.User{}); err != nil {
		return nil, err
	}
	return db, nil
}
