package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client entity. One client may carry many invoices; clients are never
// deleted independently of their invoices.
type Client struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	Address   *string   `json:"address"`
	Email     *string   `gorm:"index" json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
