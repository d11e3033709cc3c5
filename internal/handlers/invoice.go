package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diewo77/facturation/internal/billing"
	"github.com/diewo77/facturation/internal/httpx"
	pdfgen "github.com/diewo77/facturation/internal/pdf"
)

// InvoiceHandler exposes the billing service as JSON endpoints, ids passed
// as query parameters.
type InvoiceHandler struct {
	Svc *billing.Service
}

func NewInvoiceHandler(svc *billing.Service) *InvoiceHandler {
	return &InvoiceHandler{Svc: svc}
}

// invoiceRequest is the body shared by create and full update.
type invoiceRequest struct {
	Client  billing.ClientInput  `json:"client"`
	Company billing.CompanyInput `json:"company"`
	Invoice billing.InvoiceInput `json:"invoice"`
	Lines   []billing.LineInput  `json:"lines"`
}

func writeServiceError(w http.ResponseWriter, err error) {
	var verr *billing.ValidationError
	if errors.As(err, &verr) {
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", verr.Violations)
		return
	}
	if errors.Is(err, billing.ErrNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

func requireID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return "", false
	}
	return id, true
}

// List: GET /invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Svc.ListInvoices()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": invs, "total": len(invs)})
}

// Get: GET /invoices/get?id=...
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.GetInvoice(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := h.Svc.CreateInvoiceWithClient(req.Client, req.Company, req.Invoice, req.Lines)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update: POST /invoices/update?id=...
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Svc.UpdateInvoiceFull(id, req.Client, req.Company, req.Invoice, req.Lines); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": id})
}

// Status: POST /invoices/status?id=... with body {"status":"pending"|"paid"}
func (h *InvoiceHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := h.Svc.UpdateStatus(id, req.Status); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"id": id, "status": req.Status})
}

// Delete: POST /invoices/delete?id=...
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	if err := h.Svc.DeleteInvoice(id); err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Duplicate: POST /invoices/duplicate?id=...
func (h *InvoiceHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	newID, err := h.Svc.DuplicateInvoice(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"id": newID})
}

// Dashboard: GET /dashboard
func (h *InvoiceHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.DashboardStats()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatOr(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// PDF: GET /invoices/pdf?id=...
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := requireID(w, r)
	if !ok {
		return
	}
	inv, err := h.Svc.GetInvoice(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	lines := make([]pdfgen.Line, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, pdfgen.Line{
			Description: l.Description,
			Qty:         l.Qty,
			LineTotal:   l.LineTotal,
		})
	}
	data := pdfgen.Invoice{
		Number:    inv.Number,
		IssueDate: inv.IssueDate,
		Company: pdfgen.Company{
			Name:    strOr(inv.CompanyName),
			Address: strOr(inv.CompanyAddress),
			Phone:   strOr(inv.CompanyPhone),
			SIRET:   strOr(inv.CompanySIRET),
		},
		Client: pdfgen.Client{
			Name:    inv.Client.Name,
			Address: strOr(inv.Client.Address),
		},
		Lines:      lines,
		SubtotalHT: inv.SubtotalHT,
		TVAEnabled: inv.TVAEnabled,
		TVARate:    floatOr(inv.TVARate),
		TVAAmount:  floatOr(inv.TVAAmount),
		TotalTTC:   inv.TotalTTC,
		Notes:      strOr(inv.Notes),
	}

	body, genErr := pdfgen.InvoicePDF(data)
	if genErr != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"facture-"+inv.Number+".pdf\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
