package web

import (
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/openbob/openbob/internal/config"
	"github.com/openbob/openbob/internal/database"
	"github.com/openbob/openbob/internal/logger"
	"github.com/openbob/openbob/internal/metrics"
	"github.com/openbob/openbob/internal/models"
	"github.com/openbob/openbob/internal/reporter"
	"github.com/openbob/openbob/internal/tracker"
	"github.com/openbob/openbob/pkg/utils"
)

type Handler struct {
	config    *config.Config
	acc       *tracker.Accumulator
	repo      *database.Repository
	reporter  *reporter.Reporter
	metrics   *metrics.Metrics
	startedAt time.Time
	now       func() time.Time
}

func NewHandler(cfg *config.Config, acc *tracker.Accumulator, repo *database.Repository, m *metrics.Metrics) *Handler {
	h := &Handler{
		config:    cfg,
		acc:       acc,
		repo:      repo,
		metrics:   m,
		startedAt: time.Now(),
		now:       time.Now,
	}
	if repo != nil {
		h.reporter = reporter.New(cfg, repo)
	}
	return h
}

func (h *Handler) SetupRoutes(r *gin.Engine) {
	api := r.Group("/api")
	api.GET("/windows", h.handleWindows)
	api.GET("/stats", h.handleStats)
	api.GET("/report", h.handleReport)
	api.GET("/summary", h.handleSummary)
	api.GET("/events", h.handleEvents)
	api.GET("/sessions", h.handleSessions)

	r.GET("/health", h.handleHealth)
	r.GET("/metrics", h.handleMetrics)

	r.GET("/", h.handleIndex)
}

// windowView is an Entry with durations in seconds
type windowView struct {
	ID           uint64    `json:"id"`
	AppName      string    `json:"app_name"`
	Title        string    `json:"title"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	OpenSeconds  float64   `json:"open_seconds"`
	FocusSeconds float64   `json:"focus_seconds"`
	Open         bool      `json:"open"`
	Focused      bool      `json:"focused"`
}

func toView(e tracker.Entry) windowView {
	return windowView{
		ID:           uint64(e.ID),
		AppName:      e.AppName,
		Title:        e.Title,
		FirstSeenAt:  e.FirstSeenAt,
		LastSeenAt:   e.LastSeenAt,
		OpenSeconds:  e.OpenDuration.Seconds(),
		FocusSeconds: e.FocusDuration.Seconds(),
		Open:         e.Open,
		Focused:      e.Focused,
	}
}

// handleWindows lists tracked windows in first-seen order. ?open=true keeps
// only windows present in the last poll.
func (h *Handler) handleWindows(c *gin.Context) {
	openOnly := c.Query("open") == "true"

	entries := h.acc.Snapshot()
	views := make([]windowView, 0, len(entries))
	for _, e := range entries {
		if openOnly && !e.Open {
			continue
		}
		views = append(views, toView(e))
	}

	if c.GetHeader("HX-Request") == "true" {
		h.respondWindowsHTML(c, views)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   len(views),
		"windows": views,
	})
}

func (h *Handler) respondWindowsHTML(c *gin.Context, views []windowView) {
	if len(views) == 0 {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`<div class="loading">No windows yet</div>`))
		return
	}

	var b strings.Builder
	b.WriteString(`<table class="windows"><tr><th>App</th><th>Title</th><th>Open</th><th>Focus</th></tr>`)
	for _, v := range views {
		class := ""
		switch {
		case v.Focused:
			class = "focused"
		case !v.Open:
			class = "closed"
		}
		fmt.Fprintf(&b, `<tr class="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
			class,
			html.EscapeString(v.AppName),
			html.EscapeString(utils.Truncate(v.Title, 60)),
			utils.FormatDuration(time.Duration(v.OpenSeconds*float64(time.Second))),
			utils.FormatDuration(time.Duration(v.FocusSeconds*float64(time.Second))),
		)
	}
	b.WriteString(`</table>`)

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}

func (h *Handler) handleStats(c *gin.Context) {
	stats := h.acc.Stats()

	resp := gin.H{
		"tracked":        stats.Tracked,
		"open":           stats.Open,
		"polls":          stats.Polls,
		"poll_interval":  h.config.Tracker.PollInterval.String(),
		"uptime_seconds": h.now().Sub(h.startedAt).Seconds(),
		"simulate":       h.config.Tracker.Simulate,
	}
	if stats.HasFocus {
		resp["focused"] = toView(stats.Focused)
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) journalEnabled(c *gin.Context) bool {
	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "session journal is disabled"})
		return false
	}
	return true
}

func (h *Handler) period(c *gin.Context) (*models.ReportPeriod, bool) {
	period, err := h.reporter.Period(c.DefaultQuery("period", "day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return period, true
}

// handleEvents lists journal events for a period, newest last. ?limit keeps
// the last n.
func (h *Handler) handleEvents(c *gin.Context) {
	if !h.journalEnabled(c) {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}

	events, err := h.repo.GetEventsSince(period.Start)
	if err != nil {
		logger.Error("web: events query failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch events: %v", err)})
		return
	}

	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 && len(events) > limit {
		events = events[len(events)-limit:]
	}

	c.JSON(http.StatusOK, gin.H{
		"period": period,
		"events": events,
	})
}

func (h *Handler) handleSessions(c *gin.Context) {
	if !h.journalEnabled(c) {
		return
	}
	period, ok := h.period(c)
	if !ok {
		return
	}

	sessions, err := h.repo.GetSessionsSince(period.Start)
	if err != nil {
		logger.Error("web: sessions query failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to fetch sessions: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":   period,
		"sessions": sessions,
	})
}

func (h *Handler) generate(c *gin.Context) (*models.Report, bool) {
	if !h.journalEnabled(c) {
		return nil, false
	}

	report, err := h.reporter.GenerateReport(c.DefaultQuery("period", "day"))
	if errors.Is(err, reporter.ErrInvalidPeriod) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if err != nil {
		logger.Error("web: report failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to generate report: %v", err)})
		return nil, false
	}
	return report, true
}

func (h *Handler) handleReport(c *gin.Context) {
	report, ok := h.generate(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// handleSummary renders the report's per-app listing for the dashboard
func (h *Handler) handleSummary(c *gin.Context) {
	report, ok := h.generate(c)
	if !ok {
		return
	}

	if len(report.Apps) == 0 {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`<div class="loading">No data available</div>`))
		return
	}

	var b strings.Builder
	b.WriteString(`<div class="listing">`)
	for _, app := range report.Apps {
		percentStr := fmt.Sprintf("%.1f%%", app.Percentage)
		if app.Percentage < 10 {
			percentStr = "&nbsp;&nbsp;" + percentStr
		} else if app.Percentage < 100 {
			percentStr = "&nbsp;" + percentStr
		}

		fmt.Fprintf(&b, `
		<div class="app-item" style="--bar-width: %.1f%%">
			<span class="app-name">%s</span>
			<div>
				<span class="app-time">%s</span>
				<span class="app-percentage">%s</span>
			</div>
		</div>`, app.Percentage, html.EscapeString(app.AppName), utils.FormatRoundedUnit(int64(app.FocusSeconds)), percentStr)
	}
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div class="total">Total: %s</div>`, utils.FormatRoundedUnit(int64(report.TotalFocusSeconds)))

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(b.String()))
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

func (h *Handler) handleMetrics(c *gin.Context) {
	if h.metrics == nil {
		c.String(http.StatusServiceUnavailable, "metrics are disabled")
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) handleIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}
