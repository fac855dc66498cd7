// Package testutil opens an in-memory database with the production schema.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/BruksfildServices01/barber-booking/internal/db"
	"github.com/BruksfildServices01/barber-booking/internal/models"
)

func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := db.GormConfig()
	cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// every :memory: connection is its own database
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

func SeedBarber(t testing.TB, gdb *gorm.DB, name string) *models.Barber {
	t.Helper()
	b := &models.Barber{Name: name, Active: true}
	mustCreate(t, gdb, b)
	return b
}

func SeedService(t testing.TB, gdb *gorm.DB, name string, durationMin int, price float64) *models.Service {
	t.Helper()
	s := &models.Service{Name: name, DurationMin: durationMin, Price: price, Active: true}
	mustCreate(t, gdb, s)
	return s
}

func SeedClient(t testing.TB, gdb *gorm.DB, name, email string) *models.Client {
	t.Helper()
	c := &models.Client{Name: name, Email: email}
	mustCreate(t, gdb, c)
	return c
}

func ReloadClient(t testing.TB, gdb *gorm.DB, id uint) *models.Client {
	t.Helper()
	var c models.Client
	if err := gdb.First(&c, id).Error; err != nil {
		t.Fatalf("reload client %d: %v", id, err)
	}
	return &c
}

func mustCreate(t testing.TB, gdb *gorm.DB, v any) {
	t.Helper()
	if err := gdb.Create(v).Error; err != nil {
		t.Fatalf("seed %T: %v", v, err)
	}
}
