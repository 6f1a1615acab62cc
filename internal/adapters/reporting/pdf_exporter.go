package reporting

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/lcalzada-xor/wbands/internal/core/domain"
)

// maxNetworkRows bounds the network table so the report stays readable.
const maxNetworkRows = 40

// PDFExporter renders analytics reports to PDF.
type PDFExporter struct {
	// Generator is printed in the footer.
	Generator string
}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{Generator: "wbands"}
}

// ExportAnalytics renders the report and returns the PDF bytes.
func (e *PDFExporter) ExportAnalytics(report *domain.ReportData) ([]byte, error) {
	if report == nil {
		return nil, fmt.Errorf("nil report")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; SSIDs are UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addStatistics(pdf, report)
	e.addUtilization(pdf, report)
	e.addInterference(pdf, report)
	e.addRecommendations(pdf, report)
	e.addNetworks(pdf, report, tr)
	e.addFooter(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	if pdf.GetY() > 250 {
		pdf.AddPage()
	}
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	title := report.Title
	if title == "" {
		title = "WiFi Band Analysis"
	}
	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102) // Dark blue
	pdf.CellFormat(0, 15, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	if !report.State.LastScan.IsZero() {
		pdf.CellFormat(0, 6, fmt.Sprintf("Last scan: %s", report.State.LastScan.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")
	}
	if report.Connection != nil {
		pdf.CellFormat(0, 6, fmt.Sprintf("Connected to: %s (channel %d, %d dBm)",
			report.Connection.DisplayName(), report.Connection.Channel, report.Connection.RSSI), "", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addStatistics(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	e.sectionTitle(pdf, "Overview")

	stats := []struct {
		label string
		value string
		color []int
	}{
		{"Visible Networks", fmt.Sprintf("%d", report.Stats.TotalNetworks), []int{0, 102, 204}},
		{"Hidden", fmt.Sprintf("%d", report.Stats.HiddenNetworks), []int{150, 150, 150}},
		{"Unsecured", fmt.Sprintf("%d", report.Stats.OpenNetworks), []int{220, 53, 69}},
	}
	for _, b := range domain.Bands {
		if n := report.Stats.BandCounts[b]; n > 0 {
			stats = append(stats, struct {
				label string
				value string
				color []int
			}{string(b), fmt.Sprintf("%d", n), []int{0, 102, 204}})
		}
	}

	// Display in 2 columns
	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 || i == len(stats)-1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(6)
}

func (e *PDFExporter) addUtilization(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	e.sectionTitle(pdf, "Band Utilization")
	if len(report.Utilization) == 0 {
		e.emptyNote(pdf, "No networks visible")
		return
	}

	e.tableHeader(pdf, []string{"Band", "Networks", "Avg RSSI", "Congestion"}, []float64{45, 35, 35, 55})
	pdf.SetFont("Arial", "", 9)
	for _, u := range report.Utilization {
		r, g, b := e.getCongestionColor(u.CongestionLevel)
		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(45, 7, string(u.Band), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%d", u.NetworkCount), "1", 0, "C", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%d dBm", u.AverageRSSI), "1", 0, "C", false, 0, "")
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(55, 7, string(u.CongestionLevel), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func (e *PDFExporter) addInterference(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	e.sectionTitle(pdf, "Channel Occupancy")
	if len(report.Interference) == 0 {
		e.emptyNote(pdf, "No channel data")
		return
	}

	for _, band := range domain.Bands {
		m, ok := report.Interference[band]
		if !ok {
			continue
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.SetTextColor(60, 60, 60)
		line := string(band)
		if most, ok := m.MostCongestedChannel(); ok {
			line += fmt.Sprintf("  (busiest: %d", most)
			if least, ok := m.LeastCongestedChannel(); ok {
				line += fmt.Sprintf(", quietest: %d", least)
			}
			line += ")"
		}
		pdf.CellFormat(0, 7, line, "", 1, "L", false, 0, "")

		// One bar per channel, 4mm per network.
		pdf.SetFont("Arial", "", 8)
		for _, c := range m.SortedChannels() {
			if pdf.GetY() > 270 {
				pdf.AddPage()
			}
			r, g, b := e.getCongestionColor(m.CongestionLevel(c.Channel))
			y := pdf.GetY()
			pdf.SetTextColor(60, 60, 60)
			pdf.CellFormat(20, 5, fmt.Sprintf("ch %d", c.Channel), "", 0, "R", false, 0, "")
			pdf.SetFillColor(r, g, b)
			width := float64(c.Count) * 4
			if width > 140 {
				width = 140
			}
			pdf.Rect(45, y+1, width, 3, "F")
			pdf.SetX(45 + width + 2)
			pdf.CellFormat(10, 5, fmt.Sprintf("%d", c.Count), "", 1, "L", false, 0, "")
		}
		pdf.Ln(3)
	}
	pdf.Ln(5)
}

func (e *PDFExporter) addRecommendations(pdf *gofpdf.Fpdf, report *domain.ReportData) {
	e.sectionTitle(pdf, "Priority Recommendations")
	if len(report.Recommendations) == 0 {
		e.emptyNote(pdf, "No recommendations. The environment looks healthy.")
		return
	}

	for _, rec := range report.Recommendations {
		if pdf.GetY() > 260 {
			pdf.AddPage()
		}

		r, g, b := e.getPriorityColor(rec.Priority)
		pdf.SetFillColor(r, g, b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(25, 6, rec.Priority.String(), "", 0, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		pdf.SetTextColor(60, 60, 60)
		pdf.MultiCell(0, 6, "  "+rec.Message, "", "L", false)
		pdf.Ln(2)
	}
	pdf.Ln(5)
}

func (e *PDFExporter) addNetworks(pdf *gofpdf.Fpdf, report *domain.ReportData, tr func(string) string) {
	e.sectionTitle(pdf, "Visible Networks")
	if len(report.Networks) == 0 {
		e.emptyNote(pdf, "No networks visible")
		return
	}

	widths := []float64{55, 35, 20, 20, 20, 40}
	header := []string{"SSID", "BSSID", "Band", "Channel", "RSSI", "Security"}
	e.tableHeader(pdf, header, widths)

	pdf.SetFont("Arial", "", 8)
	for i, n := range report.Networks {
		if i >= maxNetworkRows {
			e.emptyNote(pdf, fmt.Sprintf("... and %d more", len(report.Networks)-maxNetworkRows))
			break
		}
		if pdf.GetY() > 270 {
			pdf.AddPage()
			e.tableHeader(pdf, header, widths)
			pdf.SetFont("Arial", "", 8)
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(widths[0], 6, truncate(tr(n.DisplayName()), 32), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, n.BSSID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 6, string(n.Band), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%d", n.Channel), "1", 0, "C", false, 0, "")
		r, g, b := e.getSignalColor(n.SignalQuality())
		pdf.SetTextColor(r, g, b)
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%d", n.RSSI), "1", 0, "C", false, 0, "")
		if n.IsSecured() {
			pdf.SetTextColor(60, 60, 60)
		} else {
			pdf.SetTextColor(220, 53, 69)
		}
		pdf.CellFormat(widths[5], 6, truncate(n.Security, 24), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}

func (e *PDFExporter) tableHeader(pdf *gofpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 8, c, "1", ln, "C", true, 0, "")
	}
}

func (e *PDFExporter) emptyNote(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Arial", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 7, text, "", 1, "L", false, 0, "")
	pdf.Ln(5)
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf) {
	pdf.SetY(-20)
	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	footer := fmt.Sprintf("Generated by %s | Report ID: %s", e.Generator, uuid.New().String()[:8])
	pdf.CellFormat(0, 5, footer, "", 1, "C", false, 0, "")
}

// getPriorityColor returns RGB color based on priority
func (e *PDFExporter) getPriorityColor(p domain.Priority) (r, g, b int) {
	switch p {
	case domain.PriorityCritical:
		return 220, 53, 69 // Red
	case domain.PriorityWarning:
		return 255, 149, 0 // Orange
	default:
		return 0, 122, 255 // Blue
	}
}

func (e *PDFExporter) getCongestionColor(level domain.CongestionLevel) (r, g, b int) {
	switch level {
	case domain.CongestionHigh:
		return 220, 53, 69
	case domain.CongestionModerate:
		return 255, 149, 0
	default:
		return 52, 199, 89
	}
}

func (e *PDFExporter) getSignalColor(q domain.SignalQuality) (r, g, b int) {
	switch q {
	case domain.SignalExcellent:
		return 52, 199, 89
	case domain.SignalGood:
		return 0, 122, 255
	case domain.SignalFair:
		return 255, 149, 0
	default:
		return 220, 53, 69
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
