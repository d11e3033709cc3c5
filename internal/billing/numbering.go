package billing

import (
	"fmt"
	"strconv"

	"github.com/diewo77/facturation/internal/models"

	"gorm.io/gorm"
)

// NextNumber allocates the next invoice number for the given year, in the
// form "<year>-<4-digit sequence>". The increment runs as a single UPDATE
// inside the caller's transaction so two concurrent allocations for the
// same year serialize at the storage layer. Counters never decrease and a
// sequence value is never reissued, even after the invoice it was assigned
// to is deleted.
func NextNumber(tx *gorm.DB, year int) (string, error) {
	key := strconv.Itoa(year)
	res := tx.Model(&models.YearCounter{}).
		Where("year = ?", key).
		Update("last_seq", gorm.Expr("last_seq + 1"))
	if res.Error != nil {
		return "", fmt.Errorf("increment counter for %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		// First invoice of this year.
		if err := tx.Create(&models.YearCounter{Year: key, LastSeq: 1}).Error; err != nil {
			return "", fmt.Errorf("create counter for %s: %w", key, err)
		}
		return fmt.Sprintf("%s-%04d", key, 1), nil
	}
	var counter models.YearCounter
	if err := tx.First(&counter, "year = ?", key).Error; err != nil {
		return "", fmt.Errorf("read counter for %s: %w", key, err)
	}
	return fmt.Sprintf("%s-%04d", key, counter.LastSeq), nil
}
