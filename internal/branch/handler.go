package branch

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/jeycentre/care-center-backend/internal/transport"
)

type ServiceAPI interface {
	GetAllBranches() ([]BranchResponse, error)
	GetByID(id int64) (*Branch, error)
	Create(dto CreateBranchDTO) (*Branch, error)
	Update(id int64, dto UpdateBranchDTO) (*Branch, error)
	Delete(id int64) error
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

func (h *Handler) GetBranches(w http.ResponseWriter, r *http.Request) {
	branches, err := h.Service.GetAllBranches()
	if err != nil {
		h.Logger.Error("GetBranches: failed to get branches", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, BranchesResponse{
		Branches: branches,
	})
}

func (h *Handler) GetBranch(w http.ResponseWriter, r *http.Request) {
	id, err := h.branchIDFromURL(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	branch, err := h.Service.GetByID(id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, branch.ToResponse())
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var dto CreateBranchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	branch, err := h.Service.Create(dto)
	if err != nil {
		h.Logger.Error("CreateBranch: failed to create branch", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, branch.ToResponse())
}

func (h *Handler) UpdateBranch(w http.ResponseWriter, r *http.Request) {
	id, err := h.branchIDFromURL(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	var dto UpdateBranchDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	branch, err := h.Service.Update(id, dto)
	if err != nil {
		h.Logger.Error("UpdateBranch: failed to update branch", "branch_id", id, "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, branch.ToResponse())
}

func (h *Handler) DeleteBranch(w http.ResponseWriter, r *http.Request) {
	id, err := h.branchIDFromURL(r)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid branch id")
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("DeleteBranch: failed to delete branch", "branch_id", id, "error", err)
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) branchIDFromURL(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
