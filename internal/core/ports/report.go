package ports

import "github.com/lcalzada-xor/wbands/internal/core/domain"

// ReportExporter renders an analytics report into a document.
type ReportExporter interface {
	ExportAnalytics(report *domain.ReportData) ([]byte, error)
}
