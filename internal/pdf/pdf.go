// Package pdf renders an invoice's persisted state into a printable A4
// document. It displays the stored amounts exactly and never recomputes
// them, so a historical document keeps the figures it was saved with.
package pdf

import (
	"bytes"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Company struct {
	Name    string
	Address string
	Phone   string
	SIRET   string
}

type Client struct {
	Name    string
	Address string
}

type Line struct {
	Description string
	Qty         float64
	LineTotal   float64
}

// Invoice is the fully loaded state handed to the renderer. Amount fields
// carry the persisted values; TVARate and TVAAmount are only meaningful
// when TVAEnabled is true.
type Invoice struct {
	Number     string
	IssueDate  time.Time
	Company    Company
	Client     Client
	Lines      []Line
	SubtotalHT float64
	TVAEnabled bool
	TVARate    float64
	TVAAmount  float64
	TotalTTC   float64
	Notes      string
}

// Sober palette: black text, green for the grand total line.
var (
	black = [3]int{20, 20, 20}
	grey  = [3]int{90, 90, 90}
	green = [3]int{34, 139, 34}
)

const (
	margin     = 55.0
	lineHeight = 14.0
	rowHeight  = 18.0
	minRows    = 8
)

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// totalsLines builds the text of the totals block below the table. Tax
// disabled shows the franchise notice and an HT total; tax enabled shows
// subtotal, TVA rate and amount, and a TTC total.
func totalsLines(inv Invoice) []string {
	if !inv.TVAEnabled {
		return []string{
			"TVA non applicable – article 293B du CGI",
			"Total HT : " + FormatCurrency(inv.TotalTTC),
			"Total à payer HT : " + FormatCurrency(inv.TotalTTC),
		}
	}
	return []string{
		"Sous-total HT : " + FormatCurrency(inv.SubtotalHT),
		"TVA (" + formatNumber(inv.TVARate) + " %) : " + FormatCurrency(inv.TVAAmount),
		"Total TTC : " + FormatCurrency(inv.TotalTTC),
		"Total à payer TTC : " + FormatCurrency(inv.TotalTTC),
	}
}

// InvoicePDF produces the document bytes. Missing optional fields render
// as a dash or are omitted; an empty line list still renders.
func InvoicePDF(inv Invoice) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(black[0], black[1], black[2])
	doc.SetDrawColor(black[0], black[1], black[2])

	// Issuer, top left.
	y := 70.0
	doc.Text(margin, y, tr(orDash(inv.Company.Name)))
	y += lineHeight
	doc.Text(margin, y, tr(orDash(inv.Company.Address)))
	y += lineHeight
	if inv.Company.Phone != "" {
		doc.Text(margin, y, tr("Tel : "+inv.Company.Phone))
		y += lineHeight
	}
	if inv.Company.SIRET != "" {
		doc.Text(margin, y, tr("SIRET : "+inv.Company.SIRET))
		y += lineHeight
	}

	// Client, top right.
	const rightX = 360.0
	yClient := 70.0
	doc.Text(rightX, yClient, tr(inv.Client.Name))
	yClient += lineHeight
	if inv.Client.Address != "" {
		doc.Text(rightX, yClient, tr(inv.Client.Address))
		yClient += lineHeight
	}

	if yClient > y {
		y = yClient
	}
	y += 24
	doc.Text(margin, y, tr("Le "+FormatDate(inv.IssueDate)))
	y += 16
	doc.SetFont("Helvetica", "B", 12)
	title := "FACTURE N° " + inv.Number
	doc.Text(margin, y, tr(title))
	doc.SetLineWidth(0.6)
	doc.Line(margin, y+2, margin+doc.GetStringWidth(tr(title)), y+2)

	// Line item table, padded so short invoices keep the full frame.
	y += 28
	doc.SetXY(margin, y)
	doc.SetFont("Helvetica", "B", 10)
	doc.SetLineWidth(0.8)
	doc.CellFormat(260, rowHeight, tr("DESIGNATION"), "1", 0, "L", false, 0, "")
	doc.CellFormat(100, rowHeight, tr("QUANTITÉ"), "1", 0, "C", false, 0, "")
	doc.CellFormat(100, rowHeight, tr("MONTANT HT"), "1", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.SetLineWidth(0.5)
	rows := len(inv.Lines)
	if rows < minRows {
		rows = minRows
	}
	for i := 0; i < rows; i++ {
		desc, qty, amount := "", "", ""
		if i < len(inv.Lines) {
			l := inv.Lines[i]
			desc = l.Description
			qty = formatNumber(l.Qty)
			amount = FormatCurrency(l.LineTotal)
		}
		doc.SetX(margin)
		doc.CellFormat(260, rowHeight, tr(desc), "1", 0, "L", false, 0, "")
		doc.CellFormat(100, rowHeight, tr(qty), "1", 0, "C", false, 0, "")
		doc.CellFormat(100, rowHeight, tr(amount), "1", 1, "R", false, 0, "")
	}

	// Totals block.
	y = doc.GetY() + 24
	totals := totalsLines(inv)
	if !inv.TVAEnabled {
		doc.Text(margin, y, tr(totals[0]))
		doc.SetTextColor(green[0], green[1], green[2])
		doc.Text(margin+360, y, tr(totals[1]))
		doc.SetTextColor(black[0], black[1], black[2])
		doc.Text(margin, y+16, tr(totals[2]))
		y += 16
	} else {
		doc.Text(margin+300, y, tr(totals[0]))
		doc.Text(margin+300, y+16, tr(totals[1]))
		doc.SetTextColor(green[0], green[1], green[2])
		doc.Text(margin+300, y+32, tr(totals[2]))
		doc.SetTextColor(black[0], black[1], black[2])
		doc.Text(margin, y+48, tr(totals[3]))
		y += 48
	}

	if inv.Notes != "" {
		doc.SetTextColor(grey[0], grey[1], grey[2])
		doc.SetXY(margin, y+10)
		doc.MultiCell(500, lineHeight, tr("Notes : "+inv.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
