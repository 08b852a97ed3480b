package sqlite

import (
	"strings"
	"sync"

	"notesboard/cmd/internal/domain/entity"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	handle  *gorm.DB
	initErr error
	once    sync.Once
)

// Init opens the process-wide database handle on first use and hands the
// same handle back on every later call.
func Init(path string) (*gorm.DB, error) {
	once.Do(func() {
		handle, initErr = Open(path)
	})
	return handle, initErr
}

// Open always opens a fresh handle and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(withPragmas(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// A single connection that never expires keeps in-memory databases alive
	// and serializes writers.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	err = db.AutoMigrate(&entity.User{}, &entity.Note{}, &entity.Connection{})
	if err != nil {
		return nil, err
	}
	return db, nil
}

func withPragmas(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
