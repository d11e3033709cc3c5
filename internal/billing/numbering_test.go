package billing

import (
	"fmt"
	"testing"

	"github.com/diewo77/facturation/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Client{}, &models.Invoice{}, &models.InvoiceLine{}, &models.YearCounter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func allocate(t *testing.T, conn *gorm.DB, year int) string {
	t.Helper()
	var number string
	err := conn.Transaction(func(tx *gorm.DB) error {
		var err error
		number, err = NextNumber(tx, year)
		return err
	})
	if err != nil {
		t.Fatalf("allocate %d: %v", year, err)
	}
	return number
}

func TestNextNumberSequence(t *testing.T) {
	conn := setupTestDB(t)
	want := []string{"2024-0001", "2024-0002", "2024-0003"}
	for i, w := range want {
		got := allocate(t, conn, 2024)
		if got != w {
			t.Fatalf("allocation %d = %q, want %q", i+1, got, w)
		}
	}
}

func TestNextNumberYearsAreIndependent(t *testing.T) {
	conn := setupTestDB(t)
	for i := 0; i < 5; i++ {
		allocate(t, conn, 2024)
	}
	if got := allocate(t, conn, 2025); got != "2025-0001" {
		t.Fatalf("first 2025 allocation = %q, want 2025-0001", got)
	}
	if got := allocate(t, conn, 2024); got != "2024-0006" {
		t.Fatalf("2024 counter disturbed by 2025: got %q", got)
	}
}

func TestNextNumberZeroPadding(t *testing.T) {
	conn := setupTestDB(t)
	if err := conn.Create(&models.YearCounter{Year: "2024", LastSeq: 9998}).Error; err != nil {
		t.Fatalf("seed counter: %v", err)
	}
	if got := allocate(t, conn, 2024); got != "2024-9999" {
		t.Fatalf("got %q, want 2024-9999", got)
	}
	// Padding is a minimum width, the counter keeps going past it.
	if got := allocate(t, conn, 2024); got != "2024-10000" {
		t.Fatalf("got %q, want 2024-10000", got)
	}
}
