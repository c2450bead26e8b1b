package reporter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/internal/database"
	"github.com/openbob/openbob/internal/models"
	"github.com/openbob/openbob/pkg/utils"
)

// ErrInvalidPeriod is returned for a period other than day, week or month
var ErrInvalidPeriod = errors.New("invalid period type")

// Reporter handles report generation over the session journal
type Reporter struct {
	config *config.Config
	repo   *database.Repository
	now    func() time.Time
}

// New creates a new reporter
func New(cfg *config.Config, repo *database.Repository) *Reporter {
	return &Reporter{
		config: cfg,
		repo:   repo,
		now:    time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.Period(periodType)
	if err != nil {
		return nil, err
	}

	// SQL does the SUM per application
	summaries, err := r.repo.GetAppSummarySince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to get app summary: %w", err)
	}

	var totalFocus, totalOpen float64
	for i := range summaries {
		summaries[i].FocusMinutes = summaries[i].FocusSeconds / 60.0
		summaries[i].FocusHours = summaries[i].FocusSeconds / 3600.0
		totalFocus += summaries[i].FocusSeconds
		totalOpen += summaries[i].OpenSeconds
	}

	if totalFocus > 0 {
		for i := range summaries {
			summaries[i].Percentage = (summaries[i].FocusSeconds / totalFocus) * 100.0
		}
	}

	errCount, err := r.repo.CountErrorsSince(period.Start)
	if err != nil {
		return nil, fmt.Errorf("failed to count errors: %w", err)
	}

	report := &models.Report{
		Period:            *period,
		Apps:              summaries,
		TotalFocusSeconds: totalFocus,
		TotalOpenSeconds:  totalOpen,
		TotalFocusMinutes: totalFocus / 60.0,
		TotalFocusHours:   totalFocus / 3600.0,
		ErrorCount:        errCount,
		GeneratedAt:       r.now(),
	}

	return report, nil
}

// Period returns the calendar period named by periodType: day (or today), week
// starting Monday, or month
func (r *Reporter) Period(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("%w: %s (valid: day, week, month)", ErrInvalidPeriod, periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Window Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Total Focus: %s (open %s)\n",
		utils.FormatDuration(seconds(report.TotalFocusSeconds)),
		utils.FormatDuration(seconds(report.TotalOpenSeconds)))
	if report.ErrorCount > 0 {
		fmt.Fprintf(&b, "Skipped polls: %d\n", report.ErrorCount)
	}
	b.WriteString("\n")

	if len(report.Apps) == 0 {
		b.WriteString("No windows recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-30s %10s %10s %9s %8s\n", "Application", "Focus", "Open", "Windows", "Percent")
	b.WriteString(strings.Repeat("-", 72) + "\n")

	for _, app := range report.Apps {
		fmt.Fprintf(&b, "%-30s %10s %10s %9d %7.1f%%\n",
			utils.Truncate(app.AppName, 30),
			utils.FormatRoundedUnit(int64(app.FocusSeconds)),
			utils.FormatRoundedUnit(int64(app.OpenSeconds)),
			app.SessionCount,
			app.Percentage)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
