package repo

import (
	"DocVault/internal/model"

	gormpg "gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// InitDB открывает БД сервера и выполняет автомиграции.
// Пустой DSN — локальный SQLite (modernc, без cgo), иначе Postgres.
func InitDB(dsn string) (*gorm.DB, error) {
	var dial gorm.Dialector
	if dsn == "" {
		dial = gormsqlite.Dialector{DriverName: "sqlite", DSN: "docvault.sqlite"}
	} else {
		dial = gormpg.Open(dsn)
	}
	db, err := gorm.Open(dial, &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.User{}, &model.Document{}, &model.SyncLog{}); err != nil {
		return nil, err
	}
	return db, nil
}
