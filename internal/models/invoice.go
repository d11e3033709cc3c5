package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invoice statuses. Transitions between the two are free and only ever
// triggered by an explicit operator action.
const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Invoice header plus its computed amounts. Company fields are a snapshot
// taken at save time, not a reference to live settings, so an old document
// keeps the issuer details it was emitted with. TVARate and TVAAmount are
// NULL when TVA is not applicable, which is distinct from a 0% rate.
type Invoice struct {
	ID             string        `gorm:"primaryKey;size:36" json:"id"`
	Number         string        `gorm:"not null;uniqueIndex" json:"number"`
	ClientID       string        `gorm:"not null;index;size:36" json:"client_id"`
	Client         Client        `gorm:"foreignKey:ClientID" json:"client"`
	Lines          []InvoiceLine `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"lines"`
	IssueDate      time.Time     `gorm:"not null;index" json:"issue_date"`
	DueDate        *time.Time    `json:"due_date"`
	Reference      *string       `json:"reference"`
	Notes          *string       `json:"notes"`
	CompanyName    *string       `json:"company_name"`
	CompanyAddress *string       `json:"company_address"`
	CompanyPhone   *string       `json:"company_phone"`
	CompanyEmail   *string       `json:"company_email"`
	CompanySIRET   *string       `json:"company_siret"`
	CompanyLogoURL *string       `json:"company_logo_url"`
	SubtotalHT     float64       `gorm:"not null" json:"subtotal_ht"`
	TVAEnabled     bool          `gorm:"not null" json:"tva_enabled"`
	TVARate        *float64      `json:"tva_rate"`
	TVAAmount      *float64      `json:"tva_amount"`
	TotalTTC       float64       `gorm:"not null" json:"total_ttc"`
	Status         string        `gorm:"not null;default:'pending'" json:"status"`
	CreatedAt      time.Time     `json:"created_at"`
}

func (i *Invoice) BeforeCreate(_ *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// InvoiceLine belongs to exactly one invoice. LineTotal is written at save
// time and never recomputed on read. Position preserves the order the
// caller submitted the lines in.
type InvoiceLine struct {
	ID          string  `gorm:"primaryKey;size:36" json:"id"`
	InvoiceID   string  `gorm:"not null;index;size:36" json:"invoice_id"`
	Position    int     `gorm:"not null" json:"-"`
	Description string  `gorm:"not null" json:"description"`
	Qty         float64 `gorm:"not null" json:"qty"`
	Unit        string  `gorm:"not null;default:'unit'" json:"unit"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	LineTotal   float64 `gorm:"not null" json:"line_total"`
}

func (l *InvoiceLine) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// YearCounter backs invoice numbering: one row per calendar year holding
// the last issued sequence. Rows only ever increment.
type YearCounter struct {
	Year    string `gorm:"primaryKey;size:8"`
	LastSeq int    `gorm:"not null"`
}
