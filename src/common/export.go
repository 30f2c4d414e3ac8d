package common

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ers/src/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []string{
	"ID", "Name", "Email", "Phone", "Organization", "Group Size",
	"Status", "Scans", "Max Scans", "QR Issued", "Registered At",
}

// Export renders registrations in the requested format and returns the
// payload with a download filename and content type.
func Export(format string, regs []models.Registration) ([]byte, string, string, error) {
	stamp := time.Now().Format("20060102_150405")
	name := fmt.Sprintf("registrations_%s.%s", stamp, format)

	switch format {
	case "csv":
		data, err := exportCSV(regs)
		return data, name, "text/csv", err
	case "json":
		data, err := json.MarshalIndent(regs, "", "  ")
		return data, name, "application/json", err
	case "xlsx":
		data, err := exportXLSX(regs)
		return data, name, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	case "pdf":
		data, err := exportPDF(regs)
		return data, name, "application/pdf", err
	default:
		return nil, "", "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportRow(r models.Registration) []string {
	return []string{
		r.ID,
		r.Name,
		r.Email,
		r.Phone,
		r.Organization,
		strconv.Itoa(r.GroupSize),
		string(r.Status),
		strconv.Itoa(r.Scans),
		strconv.Itoa(r.MaxScans),
		strconv.FormatBool(r.HasQR),
		r.CreatedAt.Format(time.RFC3339),
	}
}

func exportCSV(regs []models.Registration) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, r := range regs {
		if err := w.Write(exportRow(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportXLSX(regs []models.Registration) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	for col, h := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for i, r := range regs {
		for col, v := range exportRow(r) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportPDF(regs []models.Registration) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, "Registrations")
	pdf.Ln(12)

	widths := []float64{22, 30, 40, 26, 30, 14, 22, 12, 14, 16, 34}
	pdf.SetFont("Arial", "B", 8)
	for i, h := range exportHeaders {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 8)
	for _, r := range regs {
		for i, v := range exportRow(r) {
			pdf.CellFormat(widths[i], 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
