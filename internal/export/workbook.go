// Package export renders dashboard snapshots as Excel workbooks.
package export

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/cm-sla/sla-dashboard/internal/model"
	"github.com/cm-sla/sla-dashboard/internal/report"
)

// ContentType is the media type of the generated workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	summarySheet = "Summary"
	ticketsSheet = "Tickets"
	maxColWidth  = 30
)

// Columns are the headers of the Tickets sheet.
var Columns = []string{
	"ID", "Scenario", "Team", "Assignee", "State", "Requester", "Submitted",
	"SLA target", "SLA days", "Elapsed (bdays)", "Remaining (bdays)", "Status",
}

// Filename returns the download name of a snapshot generated at t.
func Filename(t time.Time) string {
	return "SLA_Snapshot_" + t.Format("20060102_1504") + ".xlsx"
}

// SummaryText is the headline block written to the Summary sheet.
func SummaryText(s model.Summary, generatedAt time.Time) string {
	return fmt.Sprintf("Change Management SLA Snapshot — %s\n"+
		"Total: %d | Open: %d | Completed: %d\n"+
		"At risk: %d | Breached: %d | SLA compliance: %.0f%%\n",
		generatedAt.Format("2006-01-02 15:04"),
		s.Total, s.Open, s.Completed, s.AtRisk, s.Breached, s.Compliance)
}

// Workbook renders projections and their summary as an .xlsx document.
// Tickets are listed newest submission first.
func Workbook(projections []model.Projection, summary model.Summary, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"SLA Snapshot"}); err != nil {
		return nil, fmt.Errorf("write summary header: %w", err)
	}
	if err := f.SetCellStr(summarySheet, "A2", SummaryText(summary, generatedAt)); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}

	if _, err := f.NewSheet(ticketsSheet); err != nil {
		return nil, fmt.Errorf("add tickets sheet: %w", err)
	}

	rows := make([]model.Projection, len(projections))
	copy(rows, projections)
	report.SortBySubmitted(rows)

	widths := make([]int, len(Columns))
	for i, c := range Columns {
		widths[i] = utf8.RuneCountInString(c)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ticketsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, p := range rows {
		values := ticketRow(p)
		for j, v := range values {
			widths[j] = max(widths[j], utf8.RuneCountInString(fmt.Sprint(v)))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(ticketsSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", p.ID, err)
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetColWidth(ticketsSheet, col, col, float64(min(w+2, maxColWidth))); err != nil {
			return nil, fmt.Errorf("set width %s: %w", col, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func ticketRow(p model.Projection) []any {
	return []any{
		p.ID,
		p.RawSubType,
		p.Team,
		p.AssignedTo,
		p.State,
		p.RequesterName,
		p.CreatedDay,
		p.SLADisplay,
		p.SLADays,
		p.Elapsed,
		p.Remaining,
		string(p.Status),
	}
}
