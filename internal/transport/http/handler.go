package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quiz-leaderboard-service/internal/app"
	"quiz-leaderboard-service/internal/domain"
)

// Handler exposes the leaderboard use cases over REST.
type Handler struct {
	service *app.LeaderboardService
	logger  *slog.Logger
}

func NewHandler(service *app.LeaderboardService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes wires the leaderboard endpoints. Every route requires a valid
// bearer token; the admin subtree additionally requires the admin role.
func (h *Handler) Routes(auth *Auth) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.Authenticate)

	r.Post("/submit-score", h.submitScore)
	r.Post("/create", h.createEntry)
	r.Get("/national/all-time", h.nationalAllTime)
	r.Get("/national/date/{date}", h.nationalByDate)
	r.Get("/school/all-time", h.schoolAllTime)
	r.Get("/school/date/{date}", h.schoolByDate)
	r.Get("/user/{userID}", h.userEntries)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin)
		r.Post("/admin/bonus-points", h.addBonusPoints)
		r.Delete("/admin/entry", h.deleteEntry)
	})
	return r
}

func (h *Handler) submitScore(w http.ResponseWriter, r *http.Request) {
	var submission domain.ScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	identity, _ := IdentityFrom(r.Context())
	if identity.UserID != submission.UserID {
		writeJSONError(w, http.StatusForbidden, "cannot submit a score for another user")
		return
	}

	result, err := h.service.Submit(r.Context(), submission)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// The orchestration is best-effort: a committed national entry is
	// reported to the caller even when the school phase failed.
	status := http.StatusCreated
	if result.NationalEntry == nil {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var submission domain.ScoreSubmission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	identity, _ := IdentityFrom(r.Context())
	if identity.UserID != submission.UserID {
		writeJSONError(w, http.StatusForbidden, "cannot create an entry for another user")
		return
	}

	entry, err := h.service.CreateEntry(r.Context(), submission)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *Handler) nationalAllTime(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ranked, err := h.service.NationalAllTime(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *Handler) nationalByDate(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ranked, err := h.service.NationalByDate(r.Context(), chi.URLParam(r, "date"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *Handler) schoolAllTime(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ranked, err := h.service.SchoolAllTime(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *Handler) schoolByDate(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ranked, err := h.service.SchoolByDate(r.Context(), chi.URLParam(r, "date"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

func (h *Handler) userEntries(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	entries, err := h.service.UserEntries(r.Context(), chi.URLParam(r, "userID"), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

type bonusPointsRequest struct {
	EntryID     string `json:"entry_id"`
	EntryType   string `json:"entry_type"`
	BonusPoints int64  `json:"bonus_points"`
}

func (h *Handler) addBonusPoints(w http.ResponseWriter, r *http.Request) {
	var req bonusPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	entryType, err := domain.ParseEntryType(req.EntryType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	corrected, err := h.service.AddBonus(r.Context(), req.EntryID, entryType, req.BonusPoints)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, corrected)
}

type deleteEntryRequest struct {
	EntryID   string `json:"entry_id"`
	EntryType string `json:"entry_type"`
}

type deleteEntryResponse struct {
	DeletedID string `json:"deleted_id"`
	EntryType string `json:"entry_type"`
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	var req deleteEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	entryType, err := domain.ParseEntryType(req.EntryType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	deletedID, err := h.service.DeleteEntry(r.Context(), req.EntryID, entryType)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteEntryResponse{DeletedID: deletedID, EntryType: entryType.String()})
}

func parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, domain.ErrInvalidLimit
	}
	return limit, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidEntryType),
		errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrInvalidSubmission):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrSchoolNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorResponse struct {
	Message string `json:"message"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}
