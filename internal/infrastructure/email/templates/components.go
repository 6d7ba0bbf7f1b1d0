// Package templates provides email template components
package templates

import (
	"bytes"
	"html/template"
	"log"
)

var (
	paragraphTemplate = template.Must(template.New("emailParagraph").Parse(`<p style="font-family: Helvetica, sans-serif; font-size: 16px; font-weight: normal; margin: 0; margin-bottom: 16px;">{{.}}</p>`))

	headingTemplate = template.Must(template.New("emailHeading").Parse(`<h2 style="font-family: Helvetica, sans-serif; font-size: 20px; font-weight: bold; margin: 0; margin-bottom: 16px; color: #c0392b;">{{.}}</h2>`))

	detailRowTemplate = template.Must(template.New("emailDetailRow").Parse(`<tr><td style="font-family: Helvetica, sans-serif; font-size: 14px; padding: 4px 12px 4px 0; color: #9a9ea6; white-space: nowrap;">{{.Label}}</td><td style="font-family: monospace; font-size: 14px; padding: 4px 0;">{{.Value}}</td></tr>`))
)

type detailRow struct {
	Label string
	Value string
}

func renderParagraph(text string) string {
	var buf bytes.Buffer
	if err := paragraphTemplate.Execute(&buf, text); err != nil {
		log.Printf("ERROR: Failed to render email paragraph: %v", err)
		return ""
	}
	return buf.String()
}

func renderHeading(text string) string {
	var buf bytes.Buffer
	if err := headingTemplate.Execute(&buf, text); err != nil {
		log.Printf("ERROR: Failed to render email heading: %v", err)
		return ""
	}
	return buf.String()
}

func renderDetailTable(rows []detailRow) string {
	var buf bytes.Buffer
	buf.WriteString(`<table role="presentation" border="0" cellpadding="0" cellspacing="0" style="margin-bottom: 16px;">`)
	for _, row := range rows {
		if err := detailRowTemplate.Execute(&buf, row); err != nil {
			log.Printf("ERROR: Failed to render email detail row: %v", err)
		}
	}
	buf.WriteString(`</table>`)
	return buf.String()
}

// IsolationAlertProps carries the details of a tenant isolation violation
type IsolationAlertProps struct {
	TenantID  string
	Operation string
	Detail    string
	Timestamp string
}

// GetIsolationAlertContent renders the body of an isolation violation alert
func GetIsolationAlertContent(props IsolationAlertProps) string {
	content := renderHeading("Tenant Isolation Violation")
	content += renderParagraph("A data access operation was attempted without a tenant scope. The operation was rejected and no data crossed tenant boundaries, but the calling code path should be reviewed.")
	content += renderDetailTable([]detailRow{
		{Label: "Tenant", Value: props.TenantID},
		{Label: "Operation", Value: props.Operation},
		{Label: "Detail", Value: props.Detail},
		{Label: "Time", Value: props.Timestamp},
	})
	return content
}

// ConflictAlertProps carries the details of an aggregation conflict
type ConflictAlertProps struct {
	TenantID      string
	Platform      string
	MetricName    string
	PeriodDate    string
	StoredValue   string
	ComputedValue string
}

// GetConflictAlertContent renders the body of an aggregation conflict alert
func GetConflictAlertContent(props ConflictAlertProps) string {
	content := renderHeading("Aggregation Conflict Detected")
	content += renderParagraph("A rollup recomputation produced a value that differs from the stored aggregate for the same period. The stored value was replaced with the recomputed one; the discrepancy is recorded here for review.")
	content += renderDetailTable([]detailRow{
		{Label: "Tenant", Value: props.TenantID},
		{Label: "Platform", Value: props.Platform},
		{Label: "Metric", Value: props.MetricName},
		{Label: "Period", Value: props.PeriodDate},
		{Label: "Stored", Value: props.StoredValue},
		{Label: "Recomputed", Value: props.ComputedValue},
	})
	return content
}
