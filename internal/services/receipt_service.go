package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"dojohub/internal/models"
)

// ReceiptRenderer turns a PAID payment into a PDF receipt.
type ReceiptRenderer interface {
	Render(data *models.ReceiptData) ([]byte, error)
}

type pdfReceiptRenderer struct{}

func NewReceiptRenderer() ReceiptRenderer {
	return pdfReceiptRenderer{}
}

func (pdfReceiptRenderer) Render(data *models.ReceiptData) ([]byte, error) {
	if data == nil || data.Payment == nil || data.Academy == nil || data.Payer == nil {
		return nil, fmt.Errorf("incomplete receipt data")
	}
	payment := data.Payment

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, tr(data.Academy.Name))
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "Payment receipt")
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 11)
	rows := [][2]string{
		{"Receipt number", payment.ID.String()},
		{"Payer", tr(data.Payer.FullName())},
		{"Email", data.Payer.Email},
		{"Method", string(payment.Method)},
	}
	if payment.PaidAt != nil {
		rows = append(rows, [2]string{"Paid on", payment.PaidAt.In(data.Academy.Location()).Format("02-Jan-2006 15:04")})
	}
	if data.Plan != nil {
		rows = append(rows, [2]string{"Plan", tr(data.Plan.Name)})
	}
	if payment.ExternalID != nil {
		rows = append(rows, [2]string{"Provider reference", *payment.ExternalID})
	}

	pdf.SetFillColor(240, 240, 240)
	for _, row := range rows {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(50, 8, row[0], "1", 0, "L", true, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(120, 8, row[1], "1", 0, "L", false, 0, "")
		pdf.Ln(8)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(130, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%s %s", payment.Amount.StringFixed(2), payment.Currency), "", 0, "R", false, 0, "")
	pdf.Ln(16)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 5, "This is a computer generated receipt.")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}
