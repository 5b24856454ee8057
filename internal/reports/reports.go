// Package reports renders privacy reports for completed scans as PDF
// or CSV downloads.
package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/privasee/footprint/internal/models"
)

type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// Report is a rendered document ready to be served as a download.
type Report struct {
	Format      ReportFormat
	Title       string
	GeneratedAt time.Time
	Data        []byte
	Filename    string
	MimeType    string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// PrivacyReport renders the full privacy report for one completed scan.
func (g *Generator) PrivacyReport(format ReportFormat, scan *models.FootprintScan, breaches []models.BreachRecord, exposures []models.SocialExposure) (*Report, error) {
	var data []byte
	var filename string
	var mimeType string
	var err error

	switch format {
	case FormatCSV:
		data, err = g.privacyToCSV(scan, breaches, exposures)
		filename = fmt.Sprintf("privacy_report_%s.csv", time.Now().Format("20060102_150405"))
		mimeType = "text/csv"
	case FormatPDF:
		data, err = g.privacyToPDF(scan, breaches, exposures)
		filename = fmt.Sprintf("privacy_report_%s.pdf", time.Now().Format("20060102_150405"))
		mimeType = "application/pdf"
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	if err != nil {
		return nil, err
	}

	return &Report{
		Format:      format,
		Title:       "Digital Footprint Privacy Report",
		GeneratedAt: time.Now(),
		Data:        data,
		Filename:    filename,
		MimeType:    mimeType,
	}, nil
}

func (g *Generator) privacyToCSV(scan *models.FootprintScan, breaches []models.BreachRecord, exposures []models.SocialExposure) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write([]string{"Digital Footprint Privacy Report"})
	_ = w.Write([]string{"Generated", time.Now().Format(time.RFC1123)})
	_ = w.Write([]string{""})

	_ = w.Write([]string{"Metric", "Value"})
	_ = w.Write([]string{"Target", scan.TargetEmail})
	_ = w.Write([]string{"Scan Type", string(scan.ScanType)})
	_ = w.Write([]string{"Risk Score", fmt.Sprintf("%d", scan.RiskScore)})
	_ = w.Write([]string{"Risk Level", string(scan.RiskLevel)})
	_ = w.Write([]string{"Privacy Score", fmt.Sprintf("%d", scan.PrivacyScore)})
	_ = w.Write([]string{"Breaches Found", fmt.Sprintf("%d", len(breaches))})
	_ = w.Write([]string{"Social Exposures", fmt.Sprintf("%d", len(exposures))})
	_ = w.Write([]string{""})

	_ = w.Write([]string{"Breach", "Date", "Severity", "Verified", "Data Classes"})
	for _, b := range breaches {
		date := ""
		if b.BreachDate != nil {
			date = b.BreachDate.Format("2006-01-02")
		}
		_ = w.Write([]string{
			b.Name,
			date,
			string(b.Severity),
			fmt.Sprintf("%t", b.Verified),
			joinClasses(b.DataClasses),
		})
	}
	_ = w.Write([]string{""})

	_ = w.Write([]string{"Platform", "Exposure Type", "Risk Level"})
	for _, e := range exposures {
		_ = w.Write([]string{e.Platform, string(e.ExposureType), string(e.RiskLevel)})
	}
	_ = w.Write([]string{""})

	_ = w.Write([]string{"Recommendations"})
	for _, rec := range scan.Recommendations {
		_ = w.Write([]string{rec})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func (g *Generator) privacyToPDF(scan *models.FootprintScan, breaches []models.BreachRecord, exposures []models.SocialExposure) ([]byte, error) {
	pdf := NewPDFReport("Digital Footprint Privacy Report")

	pdf.AddSection("Overview")
	pdf.AddParagraph(fmt.Sprintf("Privacy assessment for %s, scanned on %s.",
		scan.TargetEmail, scan.CreatedAt.Format("January 2, 2006")))
	pdf.AddRiskIndicator(string(scan.RiskLevel))

	pdf.AddSection("Scores")
	pdf.AddSummaryTable(map[string]int{
		"Risk Score":       scan.RiskScore,
		"Privacy Score":    scan.PrivacyScore,
		"Breaches Found":   len(breaches),
		"Social Exposures": len(exposures),
	})

	severityCounts := map[string]int{"Critical": 0, "High": 0, "Medium": 0, "Low": 0}
	for _, b := range breaches {
		switch b.Severity {
		case models.RiskCritical:
			severityCounts["Critical"]++
		case models.RiskHigh:
			severityCounts["High"]++
		case models.RiskMedium:
			severityCounts["Medium"]++
		default:
			severityCounts["Low"]++
		}
	}
	pdf.AddSection("Breaches by Severity")
	pdf.AddChart("", severityCounts)

	if len(breaches) > 0 {
		pdf.AddSection("Breach Detail")
		headers := []string{"Breach", "Date", "Severity", "Data Classes"}
		rows := make([][]string, len(breaches))
		for i, b := range breaches {
			date := ""
			if b.BreachDate != nil {
				date = b.BreachDate.Format("2006-01-02")
			}
			rows[i] = []string{
				truncate(b.Name, 25),
				date,
				string(b.Severity),
				truncate(joinClasses(b.DataClasses), 25),
			}
		}
		pdf.AddTable(headers, rows)
	}

	if len(exposures) > 0 {
		pdf.AddSection("Social Media Exposures")
		headers := []string{"Platform", "Exposure Type", "Risk Level"}
		rows := make([][]string, len(exposures))
		for i, e := range exposures {
			rows[i] = []string{e.Platform, string(e.ExposureType), string(e.RiskLevel)}
		}
		pdf.AddTable(headers, rows)
	}

	if len(scan.Recommendations) > 0 {
		pdf.AddSection("Recommendations")
		for i, rec := range scan.Recommendations {
			pdf.AddParagraph(fmt.Sprintf("%d. %s", i+1, rec))
		}
	}

	return pdf.Output()
}

func joinClasses(classes models.StringArray) string {
	var buf bytes.Buffer
	for i, c := range classes {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(c)
	}
	return buf.String()
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}
