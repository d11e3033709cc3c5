package billing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/facturation/internal/models"
	"github.com/diewo77/facturation/internal/validation"

	"gorm.io/gorm"
)

// Service owns clients, invoices, and invoice lines. Every mutating
// operation is applied as one transaction: either the full set of changes
// is visible to readers, or none of it.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// ClientInput identifies or describes the invoiced client.
type ClientInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// CompanyInput is the issuer snapshot copied onto the invoice.
type CompanyInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	SIRET   string `json:"siret"`
	LogoURL string `json:"logo_url"`
}

// InvoiceInput is the invoice header as submitted. Dates use YYYY-MM-DD.
type InvoiceInput struct {
	IssueDate  string  `json:"issue_date"`
	DueDate    string  `json:"due_date"`
	Reference  string  `json:"reference"`
	Notes      string  `json:"notes"`
	TVAEnabled bool    `json:"tva_enabled"`
	TVARate    float64 `json:"tva_rate"`
}

const dateLayout = "2006-01-02"

func validateInput(client ClientInput, lines []LineInput) validation.Violations {
	v := validation.Violations{}
	validation.Required("client.name", client.Name, v)
	if len(lines) == 0 {
		v["lines"] = "required"
	}
	for i, l := range lines {
		validation.Required(fmt.Sprintf("lines[%d].description", i), l.Description, v)
		validation.PositiveFloat(fmt.Sprintf("lines[%d].qty", i), l.Qty, v)
		validation.NonNegativeFloat(fmt.Sprintf("lines[%d].unit_price", i), l.UnitPrice, v)
	}
	return v
}

func nullable(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// nullableVal is the map-update variant of nullable: nil clears the column.
func nullableVal(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}

func parseIssueDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dateLayout, s)
}

func parseDueDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// resolveClient finds an existing client by case-insensitive email match,
// then by exact name, and creates one when neither matches. This is a
// best-effort merge, not a uniqueness rule: two clients can legitimately
// share a name.
func resolveClient(tx *gorm.DB, in ClientInput) (string, error) {
	var existing models.Client
	if in.Email != "" {
		err := tx.Where("email IS NOT NULL AND lower(email) = lower(?)", in.Email).First(&existing).Error
		if err == nil {
			return existing.ID, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("lookup client by email: %w", err)
		}
	}
	err := tx.Where("name = ?", in.Name).First(&existing).Error
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("lookup client by name: %w", err)
	}
	created := models.Client{
		Name:    in.Name,
		Address: nullable(in.Address),
		Email:   nullable(in.Email),
		Phone:   nullable(in.Phone),
	}
	if err := tx.Create(&created).Error; err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}
	return created.ID, nil
}

func insertLines(tx *gorm.DB, invoiceID string, lines []LineInput) error {
	records := make([]models.InvoiceLine, 0, len(lines))
	for i, l := range lines {
		unit := strings.TrimSpace(l.Unit)
		if unit == "" {
			unit = "unit"
		}
		records = append(records, models.InvoiceLine{
			InvoiceID:   invoiceID,
			Position:    i,
			Description: l.Description,
			Qty:         l.Qty,
			Unit:        unit,
			UnitPrice:   l.UnitPrice,
			LineTotal:   l.Qty * l.UnitPrice,
		})
	}
	if err := tx.Create(&records).Error; err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

// CreateInvoiceWithClient resolves or creates the client, computes the
// amounts, allocates a number scoped to the issue date's year, and
// persists header plus lines in one transaction. Returns the new id.
func (s *Service) CreateInvoiceWithClient(client ClientInput, company CompanyInput, invoice InvoiceInput, lines []LineInput) (string, error) {
	if v := validateInput(client, lines); !v.Empty() {
		return "", &ValidationError{Violations: v}
	}
	issueDate, err := parseIssueDate(invoice.IssueDate)
	if err != nil {
		return "", &ValidationError{Violations: validation.Violations{"invoice.issue_date": "invalid_date"}}
	}
	dueDate, err := parseDueDate(invoice.DueDate)
	if err != nil {
		return "", &ValidationError{Violations: validation.Violations{"invoice.due_date": "invalid_date"}}
	}

	var id string
	err = s.db.Transaction(func(tx *gorm.DB) error {
		clientID, err := resolveClient(tx, client)
		if err != nil {
			return err
		}
		subtotal, tvaAmount, total := ComputeTotals(lines, invoice.TVAEnabled, invoice.TVARate)
		number, err := NextNumber(tx, issueDate.Year())
		if err != nil {
			return err
		}
		inv := models.Invoice{
			Number:         number,
			ClientID:       clientID,
			IssueDate:      issueDate,
			DueDate:        dueDate,
			Reference:      nullable(invoice.Reference),
			Notes:          nullable(invoice.Notes),
			CompanyName:    nullable(company.Name),
			CompanyAddress: nullable(company.Address),
			CompanyPhone:   nullable(company.Phone),
			CompanyEmail:   nullable(company.Email),
			CompanySIRET:   nullable(company.SIRET),
			CompanyLogoURL: nullable(company.LogoURL),
			SubtotalHT:     subtotal,
			TVAEnabled:     invoice.TVAEnabled,
			TotalTTC:       total,
			Status:         models.StatusPending,
		}
		if invoice.TVAEnabled {
			rate := invoice.TVARate
			inv.TVARate = &rate
			inv.TVAAmount = &tvaAmount
		}
		if err := tx.Create(&inv).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		if err := insertLines(tx, inv.ID, lines); err != nil {
			return err
		}
		id = inv.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// UpdateInvoiceFull applies a full edit: the client record is updated in
// place, amounts are recomputed, and the entire line set is replaced.
// Number, status, and creation timestamp are never touched.
func (s *Service) UpdateInvoiceFull(id string, client ClientInput, company CompanyInput, invoice InvoiceInput, lines []LineInput) error {
	if v := validateInput(client, lines); !v.Empty() {
		return &ValidationError{Violations: v}
	}
	issueDate, err := parseIssueDate(invoice.IssueDate)
	if err != nil {
		return &ValidationError{Violations: validation.Violations{"invoice.issue_date": "invalid_date"}}
	}
	dueDate, err := parseDueDate(invoice.DueDate)
	if err != nil {
		return &ValidationError{Violations: validation.Violations{"invoice.due_date": "invalid_date"}}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.First(&inv, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load invoice: %w", err)
		}

		clientUpdates := map[string]any{
			"name":    client.Name,
			"address": nullableVal(client.Address),
			"email":   nullableVal(client.Email),
			"phone":   nullableVal(client.Phone),
		}
		if err := tx.Model(&models.Client{}).Where("id = ?", inv.ClientID).Updates(clientUpdates).Error; err != nil {
			return fmt.Errorf("update client: %w", err)
		}

		subtotal, tvaAmount, total := ComputeTotals(lines, invoice.TVAEnabled, invoice.TVARate)
		updates := map[string]any{
			"issue_date":       issueDate,
			"due_date":         dueDate,
			"reference":        nullableVal(invoice.Reference),
			"notes":            nullableVal(invoice.Notes),
			"company_name":     nullableVal(company.Name),
			"company_address":  nullableVal(company.Address),
			"company_phone":    nullableVal(company.Phone),
			"company_email":    nullableVal(company.Email),
			"company_siret":    nullableVal(company.SIRET),
			"company_logo_url": nullableVal(company.LogoURL),
			"subtotal_ht":      subtotal,
			"tva_enabled":      invoice.TVAEnabled,
			"tva_rate":         nil,
			"tva_amount":       nil,
			"total_ttc":        total,
		}
		if invoice.TVAEnabled {
			updates["tva_rate"] = invoice.TVARate
			updates["tva_amount"] = tvaAmount
		}
		if err := tx.Model(&models.Invoice{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fmt.Errorf("update invoice: %w", err)
		}

		// Wholesale replacement, deliberately not a diff.
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLine{}).Error; err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		return insertLines(tx, id, lines)
	})
}

// UpdateStatus sets the invoice status to pending or paid. Unknown ids
// fail with ErrNotFound.
func (s *Service) UpdateStatus(id, status string) error {
	v := validation.Violations{}
	validation.OneOf("status", status, []string{models.StatusPending, models.StatusPaid}, v)
	if !v.Empty() {
		return &ValidationError{Violations: v}
	}
	res := s.db.Model(&models.Invoice{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("update status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteInvoice removes the invoice and all its lines. Deleting an unknown
// id is a success (idempotent delete).
func (s *Service) DeleteInvoice(id string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceLine{}).Error; err != nil {
			return fmt.Errorf("delete lines: %w", err)
		}
		if err := tx.Where("id = ?", id).Delete(&models.Invoice{}).Error; err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
}

// DuplicateInvoice copies an invoice and its lines under a new id and a
// freshly allocated number. Status resets to pending and the issue date to
// today; the client linkage and every other scalar field copy verbatim.
func (s *Service) DuplicateInvoice(id string) (string, error) {
	var newID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var src models.Invoice
		if err := tx.First(&src, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("load invoice: %w", err)
		}
		var srcLines []models.InvoiceLine
		if err := tx.Where("invoice_id = ?", id).Order("position").Find(&srcLines).Error; err != nil {
			return fmt.Errorf("load lines: %w", err)
		}

		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		number, err := NextNumber(tx, now.Year())
		if err != nil {
			return err
		}

		dup := src
		dup.ID = ""
		dup.Number = number
		dup.IssueDate = today
		dup.Status = models.StatusPending
		dup.CreatedAt = time.Time{}
		dup.Client = models.Client{}
		dup.Lines = nil
		if err := tx.Create(&dup).Error; err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		for i := range srcLines {
			srcLines[i].ID = ""
			srcLines[i].InvoiceID = dup.ID
		}
		if len(srcLines) > 0 {
			if err := tx.Create(&srcLines).Error; err != nil {
				return fmt.Errorf("copy lines: %w", err)
			}
		}
		newID = dup.ID
		return nil
	})
	if err != nil {
		return "", err
	}
	return newID, nil
}

// ListInvoices returns all invoices with their client and ordered lines,
// most recent issue date first.
func (s *Service) ListInvoices() ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.db.
		Preload("Client").
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		Order("issue_date DESC, created_at DESC").
		Find(&invs).Error
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invs, nil
}

// GetInvoice loads one invoice with its client and ordered lines.
func (s *Service) GetInvoice(id string) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.
		Preload("Client").
		Preload("Lines", func(tx *gorm.DB) *gorm.DB { return tx.Order("position") }).
		First(&inv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load invoice: %w", err)
	}
	return &inv, nil
}

// Stats is the dashboard summary block.
type Stats struct {
	Count   int64   `json:"count"`
	Pending int64   `json:"pending"`
	Paid    int64   `json:"paid"`
	Revenue float64 `json:"revenue"`
}

// DashboardStats counts invoices by status and sums total TTC.
func (s *Service) DashboardStats() (Stats, error) {
	var st Stats
	if err := s.db.Model(&models.Invoice{}).Count(&st.Count).Error; err != nil {
		return st, fmt.Errorf("count invoices: %w", err)
	}
	if err := s.db.Model(&models.Invoice{}).Where("status = ?", models.StatusPending).Count(&st.Pending).Error; err != nil {
		return st, fmt.Errorf("count pending: %w", err)
	}
	if err := s.db.Model(&models.Invoice{}).Where("status = ?", models.StatusPaid).Count(&st.Paid).Error; err != nil {
		return st, fmt.Errorf("count paid: %w", err)
	}
	row := s.db.Model(&models.Invoice{}).Select("COALESCE(SUM(total_ttc), 0)").Row()
	if err := row.Scan(&st.Revenue); err != nil {
		return st, fmt.Errorf("sum revenue: %w", err)
	}
	return st, nil
}
