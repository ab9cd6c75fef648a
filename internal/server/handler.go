package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/model"
	"github.com/Tiliavir/tick/internal/monitor"
	"github.com/Tiliavir/tick/internal/payroll"
	"github.com/Tiliavir/tick/internal/roster"
	"github.com/Tiliavir/tick/internal/server/response"
	"github.com/Tiliavir/tick/internal/storage"
	"github.com/Tiliavir/tick/internal/timecalc"
)

// Handler serves the attendance API on top of a store.
type Handler struct {
	store      storage.Store
	classifier attendance.Classifier
	monitor    *monitor.Monitor
	logger     *slog.Logger
	now        func() time.Time
}

// NewHandler wires the API. mon may be nil, in which case /alerts reports
// that no monitor is running.
func NewHandler(store storage.Store, classifier attendance.Classifier, mon *monitor.Monitor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{store: store, classifier: classifier, monitor: mon, logger: logger, now: time.Now}
}

func (h *Handler) location() *time.Location {
	if h.classifier.Location != nil {
		return h.classifier.Location
	}
	return time.Local
}

func (h *Handler) today() time.Time {
	return timecalc.StartOfDay(h.now().In(h.location()))
}

// dayParam reads ?date=YYYY-MM-DD, defaulting to today.
func (h *Handler) dayParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def, nil
	}
	d, err := timecalc.ParseDay(v, h.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}

// PunchRequest is the body of POST /punches. Date and time default to now.
type PunchRequest struct {
	EmployeeID string  `json:"employee_id"`
	Kind       string  `json:"kind"`
	Date       string  `json:"date,omitempty"`
	Time       string  `json:"time,omitempty"`
	Location   *string `json:"location,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// RecordPunch handles POST /api/v1/punches.
func (h *Handler) RecordPunch(w http.ResponseWriter, r *http.Request) {
	var req PunchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	details := map[string]string{}
	if strings.TrimSpace(req.EmployeeID) == "" {
		details["employee_id"] = "required"
	}
	kind, err := model.ParsePunchKind(req.Kind)
	if err != nil {
		details["kind"] = err.Error()
	}
	if len(details) > 0 {
		response.BadRequest(w, "Validation failed", details)
		return
	}

	now := h.now().In(h.location())
	p := model.NewPunch(req.EmployeeID, kind, now, "api")
	if req.Date != "" {
		p.Date = req.Date
	}
	if req.Time != "" {
		p.Time = req.Time
	}
	p.Location = req.Location
	p.Notes = req.Notes

	stored, err := h.store.AppendPunch(r.Context(), p)
	if err != nil {
		if !errors.Is(err, storage.ErrInvalidPunch) {
			h.logger.Error("failed to record punch", "employee_id", p.EmployeeID, "error", err)
		}
		response.HandleError(w, err)
		return
	}
	h.logger.Info("punch recorded", "punch_id", stored.ID, "employee_id", stored.EmployeeID, "kind", string(stored.Kind))
	response.Created(w, "Punch recorded", stored)
}

// AttendanceView is the payload of GET /attendance.
type AttendanceView struct {
	Date         string                     `json:"date"`
	Intervals    []attendance.WorkInterval  `json:"intervals"`
	Breaks       []attendance.BreakInterval `json:"breaks"`
	OpenClockIns []attendance.OpenPunch     `json:"open_clock_ins"`
	OpenBreaks   []attendance.OpenPunch     `json:"open_breaks"`
	Summaries    []attendance.DaySummary    `json:"summaries"`
	Diagnostics  []attendance.Diagnostic    `json:"diagnostics"`
}

func (h *Handler) evaluateDay(r *http.Request, day time.Time) (attendance.Result, error) {
	punches, err := h.store.LoadDay(r.Context(), day)
	if err != nil {
		return attendance.Result{}, err
	}
	return h.classifier.Evaluate(punches, h.now().In(h.location())), nil
}

// Attendance handles GET /api/v1/attendance.
func (h *Handler) Attendance(w http.ResponseWriter, r *http.Request) {
	day, err := h.dayParam(r, "date", h.today())
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	res, err := h.evaluateDay(r, day)
	if err != nil {
		h.logger.Error("failed to load punches", "date", day.Format(model.DateLayout), "error", err)
		response.HandleError(w, err)
		return
	}
	response.Success(w, AttendanceView{
		Date:         day.Format(model.DateLayout),
		Intervals:    res.Intervals,
		Breaks:       res.Breaks,
		OpenClockIns: res.OpenClockIns,
		OpenBreaks:   res.OpenBreaks,
		Summaries:    attendance.Summarize(res),
		Diagnostics:  res.Diagnostics,
	})
}

func (h *Handler) roster(r *http.Request) (*roster.Roster, error) {
	employees, err := h.store.LoadRoster(r.Context())
	if err != nil {
		return nil, err
	}
	return roster.New(employees), nil
}

// Findings handles GET /api/v1/findings.
func (h *Handler) Findings(w http.ResponseWriter, r *http.Request) {
	day, err := h.dayParam(r, "date", h.today())
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	includeAcked := false
	if v := r.URL.Query().Get("include_acknowledged"); v != "" {
		includeAcked, err = strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "include_acknowledged must be a boolean", nil)
			return
		}
	}

	res, err := h.evaluateDay(r, day)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	acks, err := h.store.Acknowledgements(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	dir, err := h.roster(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	findings := res.Findings
	if !includeAcked {
		findings, _ = attendance.FilterAcknowledged(findings, acks)
	}
	annotated, unknown := attendance.Annotate(attendance.SortBySeverity(findings), dir, acks)
	for _, id := range unknown {
		h.logger.Warn("finding for employee missing from roster", "employee_id", id)
	}
	response.Success(w, annotated)
}

// AckRequest is the optional body of POST /findings/{key}/ack.
type AckRequest struct {
	By   string `json:"by"`
	Note string `json:"note"`
	// Date, when set, makes the handler check that the key belongs to a
	// finding of that day.
	Date string `json:"date"`
}

// Acknowledge handles POST /api/v1/findings/{key}/ack.
func (h *Handler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	var req AckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if req.Date != "" {
		day, err := timecalc.ParseDay(req.Date, h.location())
		if err != nil {
			response.BadRequest(w, err.Error(), nil)
			return
		}
		res, err := h.evaluateDay(r, day)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		found := false
		for _, f := range res.Findings {
			if f.Key == key {
				found = true
				break
			}
		}
		if !found {
			response.NotFound(w, "No finding with key "+key+" on "+req.Date)
			return
		}
	}

	ack := model.Acknowledgement{Key: key, AcknowledgedAt: h.now(), By: req.By, Note: req.Note}
	if err := h.store.Acknowledge(r.Context(), ack); err != nil {
		h.logger.Error("failed to acknowledge finding", "key", key, "error", err)
		response.HandleError(w, err)
		return
	}
	h.logger.Info("finding acknowledged", "key", key, "by", req.By)
	response.SuccessWithMessage(w, "Finding acknowledged", ack)
}

// Alerts handles GET /api/v1/alerts.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	if h.monitor == nil {
		response.NotFound(w, "No monitor is running")
		return
	}
	response.Success(w, h.monitor.Snapshot())
}

// Employees handles GET /api/v1/employees.
func (h *Handler) Employees(w http.ResponseWriter, r *http.Request) {
	dir, err := h.roster(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, dir.All())
}

// Payroll handles GET /api/v1/payroll. JSON goes through the envelope; the
// other formats are served as downloads.
func (h *Handler) Payroll(w http.ResponseWriter, r *http.Request) {
	monthStart, monthEnd := timecalc.MonthRange(h.today())
	from, err := h.dayParam(r, "from", monthStart)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	to, err := h.dayParam(r, "to", timecalc.StartOfDay(monthEnd))
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if to.Before(from) {
		response.BadRequest(w, "to must not be before from", nil)
		return
	}
	format, err := payroll.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}
	if r.URL.Query().Get("format") == "" {
		format = payroll.FormatJSON
	}

	punches, err := h.store.LoadRange(r.Context(), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	dir, err := h.roster(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	sheet := payroll.Build(h.classifier.EvaluateRange(punches, h.now().In(h.location())), dir, from, to)

	if format == payroll.FormatJSON {
		response.Success(w, sheet)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("payroll_%s_%s.%s", sheet.From, sheet.To, format)))
	if err := payroll.Write(w, sheet, format); err != nil {
		h.logger.Error("failed to write payroll", "format", string(format), "error", err)
	}
}
