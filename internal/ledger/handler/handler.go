package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"opscheck/internal/ledger/models"
	"opscheck/internal/platform/middleware"
	domainerrors "opscheck/pkg/domain-errors"
	"opscheck/pkg/platform/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/service_mock.go -package=mocks

// Service defines the ledger operations the HTTP layer exposes.
type Service interface {
	Submit(ctx context.Context, key models.Key, actingUser int64, status models.Status, notes string) (models.Record, models.LogEvent, error)
	UnresolvedFailures(ctx context.Context, date time.Time, env *models.Environment) ([]models.FailureSummary, error)
	DayStats(ctx context.Context, date time.Time, env *models.Environment) (models.DayStats, error)
	Unchecked(ctx context.Context, date time.Time, env *models.Environment) ([]models.UncheckedItem, error)
	Verify(ctx context.Context, key models.Key) (models.ConsistencyReport, error)
}

// Handler handles checklist ledger endpoints.
type Handler struct {
	logger *slog.Logger
	ledger Service
}

// New creates a new ledger Handler.
func New(ledger Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		ledger: ledger,
	}
}

// Register registers the ledger routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	ledgerRouter := chi.NewRouter()
	ledgerRouter.Use(middleware.Recovery(h.logger))
	ledgerRouter.Use(middleware.RequestID)
	ledgerRouter.Use(middleware.Logger(h.logger))
	ledgerRouter.Use(middleware.Timeout(30 * time.Second))
	ledgerRouter.Use(middleware.ContentTypeJSON)
	ledgerRouter.Post("/api/checklist/submit", h.handleSubmit)
	ledgerRouter.Get("/api/checklist/unchecked", h.handleUnchecked)
	ledgerRouter.Get("/api/console/fail-items", h.handleFailItems)
	ledgerRouter.Get("/api/console/stats", h.handleStats)
	ledgerRouter.Get("/api/ledger/verify", h.handleVerify)

	r.Mount("/", ledgerRouter)
}

type submitItem struct {
	CheckItemID int64  `json:"check_item_id"`
	Environment string `json:"environment"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

type submitRequest struct {
	UserID    int64        `json:"user_id"`
	CheckDate string       `json:"check_date"`
	Items     []submitItem `json:"items"`
}

type submitResult struct {
	CheckItemID int64  `json:"check_item_id"`
	Environment string `json:"environment"`
	Status      string `json:"status"`
	Action      string `json:"action"`
}

type submitResponse struct {
	Saved   []submitResult `json:"saved"`
	Skipped int            `json:"skipped"`
}

// handleSubmit records a batch of check results. Items with an empty status
// are skipped so clients can post a whole checklist form at once.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid submit request",
			"request_id", requestID,
			"error", err.Error(),
		)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.UserID <= 0 {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "user_id is required"))
		return
	}
	if len(req.Items) == 0 {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "items must not be empty"))
		return
	}
	day, err := parseDate(req.CheckDate)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := submitResponse{Saved: []submitResult{}}
	for _, item := range req.Items {
		if item.Status == "" {
			resp.Skipped++
			continue
		}
		key := models.Key{
			CheckItemID: item.CheckItemID,
			CheckDate:   day,
			Environment: models.Environment(item.Environment),
		}
		_, ev, err := h.ledger.Submit(ctx, key, req.UserID, models.Status(item.Status), item.Notes)
		if err != nil {
			if code := domainerrors.CodeOf(err); code == domainerrors.CodeBadRequest || code == domainerrors.CodeNotFound {
				h.logger.WarnContext(ctx, "submit rejected",
					"request_id", requestID,
					"check_item_id", item.CheckItemID,
					"environment", item.Environment,
					"error", err.Error(),
				)
				httputil.WriteError(w, err)
				return
			}
			h.logger.ErrorContext(ctx, "failed to record check result",
				"request_id", requestID,
				"check_item_id", item.CheckItemID,
				"error", err.Error(),
			)
			httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "failed to record check result"))
			return
		}
		resp.Saved = append(resp.Saved, submitResult{
			CheckItemID: item.CheckItemID,
			Environment: item.Environment,
			Status:      string(ev.Status),
			Action:      string(ev.Action),
		})
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

type failItemResponse struct {
	CheckItemID int64  `json:"check_item_id"`
	CheckDate   string `json:"check_date"`
	Environment string `json:"environment"`
	SystemID    int64  `json:"system_id"`
	SystemName  string `json:"system_name"`
	ItemName    string `json:"item_name"`
	UserID      int64  `json:"user_id"`
	FirstFailAt string `json:"first_fail_at"`
	Notes       string `json:"notes"`
	IsResolved  bool   `json:"is_resolved"`
}

func (h *Handler) handleFailItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, env, err := parseDayQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	failures, err := h.ledger.UnresolvedFailures(ctx, day, env)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list unresolved failures",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "failed to list unresolved failures"))
		return
	}

	out := make([]failItemResponse, 0, len(failures))
	for _, f := range failures {
		out = append(out, failItemResponse{
			CheckItemID: f.Key.CheckItemID,
			CheckDate:   f.Key.CheckDate.Format("2006-01-02"),
			Environment: string(f.Key.Environment),
			SystemID:    f.SystemID,
			SystemName:  f.SystemName,
			ItemName:    f.ItemName,
			UserID:      f.UserID,
			FirstFailAt: f.FirstFailAt.UTC().Format(time.RFC3339),
			Notes:       f.Notes,
			IsResolved:  f.Resolved,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type statsResponse struct {
	Pass      int `json:"pass"`
	Fail      int `json:"fail"`
	Unchecked int `json:"unchecked"`
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, env, err := parseDayQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	stats, err := h.ledger.DayStats(ctx, day, env)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compute day stats",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "failed to compute day stats"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, statsResponse{
		Pass:      stats.Pass,
		Fail:      stats.Fail,
		Unchecked: stats.Unchecked,
	})
}

type uncheckedResponse struct {
	CheckItemID int64  `json:"check_item_id"`
	SystemID    int64  `json:"system_id"`
	ItemName    string `json:"item_name"`
	Environment string `json:"environment"`
}

func (h *Handler) handleUnchecked(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	day, env, err := parseDayQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	items, err := h.ledger.Unchecked(ctx, day, env)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list unchecked items",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "failed to list unchecked items"))
		return
	}

	out := make([]uncheckedResponse, 0, len(items))
	for _, item := range items {
		out = append(out, uncheckedResponse{
			CheckItemID: item.CheckItemID,
			SystemID:    item.SystemID,
			ItemName:    item.ItemName,
			Environment: string(item.Environment),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	itemID, err := strconv.ParseInt(r.URL.Query().Get("item_id"), 10, 64)
	if err != nil || itemID <= 0 {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "item_id must be a positive integer"))
		return
	}
	day, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	env := models.Environment(r.URL.Query().Get("env"))
	if !env.Valid() {
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "env must be one of dev, stg, prd"))
		return
	}

	report, err := h.ledger.Verify(ctx, models.Key{CheckItemID: itemID, CheckDate: day, Environment: env})
	if err != nil {
		if domainerrors.Is(err, domainerrors.CodeNotFound) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "failed to verify key",
			"request_id", middleware.GetRequestID(ctx),
			"check_item_id", itemID,
			"error", err.Error(),
		)
		httputil.WriteError(w, domainerrors.New(domainerrors.CodeInternal, "failed to verify key"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verifyResponse{
		CheckItemID: report.Key.CheckItemID,
		CheckDate:   report.Key.CheckDate.Format("2006-01-02"),
		Environment: string(report.Key.Environment),
		Consistent:  report.Consistent,
		Issues:      report.Issues,
	})
}

type verifyResponse struct {
	CheckItemID int64    `json:"check_item_id"`
	CheckDate   string   `json:"check_date"`
	Environment string   `json:"environment"`
	Consistent  bool     `json:"consistent"`
	Issues      []string `json:"issues"`
}

// parseDayQuery reads the date and optional env query parameters shared by
// the read endpoints. A missing date means today.
func parseDayQuery(r *http.Request) (time.Time, *models.Environment, error) {
	q := r.URL.Query()

	day := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := q.Get("date"); raw != "" {
		var err error
		day, err = parseDate(raw)
		if err != nil {
			return time.Time{}, nil, err
		}
	}

	if raw := q.Get("env"); raw != "" {
		env := models.Environment(raw)
		if !env.Valid() {
			return time.Time{}, nil, domainerrors.New(domainerrors.CodeBadRequest, "env must be one of dev, stg, prd")
		}
		return day, &env, nil
	}
	return day, nil, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, domainerrors.New(domainerrors.CodeBadRequest, "date is required")
	}
	day, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
	if err != nil {
		return time.Time{}, domainerrors.New(domainerrors.CodeBadRequest, "date must be formatted YYYY-MM-DD")
	}
	return day, nil
}
