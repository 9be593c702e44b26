package attendance

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jeycentre/care-center-backend/internal/auth"
	"github.com/jeycentre/care-center-backend/internal/attendance/qrtoken"
	"github.com/jeycentre/care-center-backend/internal/transport"
)

type ServiceAPI interface {
	IssueToken(ctx context.Context, principal *auth.User) (*qrtoken.IssuedToken, error)
	RecordScan(ctx context.Context, encoded string) (*ScanResult, error)
	Checkout(ctx context.Context, principal *auth.User) (*ScanResult, error)
	Today(principal *auth.User) (*Record, error)
	List(principal *auth.User, filter ListFilter) (*RecordsResponse, error)
	Delete(id int64) error
	RequestCorrection(principal *auth.User, dto RequestCorrectionDTO) (*Correction, error)
	DecideCorrection(id int64, approver *auth.User, dto DecideCorrectionDTO) (*Correction, error)
	ListCorrections(principal *auth.User, filter CorrectionFilter) (*CorrectionsResponse, error)
	Dashboard(principal *auth.User) (*DashboardResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetQRCode returns a fresh short-lived QR token for the caller.
func (h *Handler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	issued, err := h.Service.IssueToken(r.Context(), principal)
	if err != nil {
		h.Logger.Error("GetQRCode: failed to issue token", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, issued)
}

// Scan records a QR scan. The response outcome tells the kiosk whether the
// employee just checked in or out.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var dto ScanDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteAppError(w, err)
		return
	}

	result, err := h.Service.RecordScan(r.Context(), dto.Token)
	if err != nil {
		h.Logger.Error("Scan: scan rejected", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ScanResponse{
		Outcome: result.Outcome,
		Record:  result.Record.ToResponse(),
	})
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	result, err := h.Service.Checkout(r.Context(), principal)
	if err != nil {
		h.Logger.Error("Checkout: refused", "user_id", principal.ID, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ScanResponse{
		Outcome: result.Outcome,
		Record:  result.Record.ToResponse(),
	})
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	record, err := h.Service.Today(principal)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, record.ToResponse())
}

func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	filter := ListFilter{
		DateFrom: r.URL.Query().Get("date_from"),
		DateTo:   r.URL.Query().Get("date_to"),
		Status:   r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("employee_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.EmployeeID = &id
		}
	}
	if v := r.URL.Query().Get("branch_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.BranchID = &id
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		filter.PerPage, _ = strconv.Atoi(v)
	}

	records, err := h.Service.List(principal, filter)
	if err != nil {
		h.Logger.Error("ListRecords: failed to list", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("DeleteRecord: failed to delete", "attendance_id", id, "error", err)
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RequestCorrection(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	var dto RequestCorrectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	correction, err := h.Service.RequestCorrection(principal, dto)
	if err != nil {
		h.Logger.Error("RequestCorrection: refused", "user_id", principal.ID, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, correction.ToResponse())
}

func (h *Handler) DecideCorrection(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid correction id")
		return
	}

	var dto DecideCorrectionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	correction, err := h.Service.DecideCorrection(id, principal, dto)
	if err != nil {
		h.Logger.Error("DecideCorrection: refused", "correction_id", id, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, correction.ToResponse())
}

func (h *Handler) ListCorrections(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	filter := CorrectionFilter{
		Status: r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("page"); v != "" {
		filter.Page, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		filter.PerPage, _ = strconv.Atoi(v)
	}

	corrections, err := h.Service.ListCorrections(principal, filter)
	if err != nil {
		h.Logger.Error("ListCorrections: failed to list", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, corrections)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing authenticated user")
		return
	}

	stats, err := h.Service.Dashboard(principal)
	if err != nil {
		h.Logger.Error("Dashboard: failed to compute", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, stats)
}
