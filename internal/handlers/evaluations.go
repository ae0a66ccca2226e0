package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tenderhub/db"
	"tenderhub/models"
)

type createEvaluationRequest struct {
	BidID int  `json:"bidId"`
	Score *int `json:"score"`
}

// CreateEvaluationHandler обрабатывает POST /api/evaluations (только Evaluator).
// Свое предложение оценивать нельзя; оценка после создания неизменяема.
func (h *Handler) CreateEvaluationHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleEvaluator, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req createEvaluationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if req.BidID <= 0 {
		writeError(w, http.StatusBadRequest, "bidId must be positive")
		return
	}
	if req.Score == nil || *req.Score < 0 || *req.Score > 10 {
		writeError(w, http.StatusBadRequest, "score must be an integer between 0 and 10")
		return
	}

	bid, err := h.Store.GetBid(r.Context(), req.BidID)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Bid not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get bid")
		return
	}
	if bid.BidderID == user.UserID {
		writeError(w, http.StatusForbidden, "Cannot evaluate your own bid")
		return
	}

	eval := models.Evaluation{
		BidID:       req.BidID,
		EvaluatorID: user.UserID,
		Score:       *req.Score,
	}
	if err := h.Store.CreateEvaluation(r.Context(), &eval); err != nil {
		log.Printf("create evaluation: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create evaluation")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"evaluationId": eval.ID})
}

// GetMyEvaluationsHandler возвращает оценки текущего пользователя
func (h *Handler) GetMyEvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	evals, err := h.Store.GetEvaluationsByEvaluator(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get evaluations")
		return
	}
	writeJSON(w, http.StatusOK, evals)
}

// GetBidEvaluationsHandler возвращает оценки одного предложения
func (h *Handler) GetBidEvaluationsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	bidID, err := strconv.Atoi(chi.URLParam(r, "bidId"))
	if err != nil || bidID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid bidId")
		return
	}

	evals, err := h.Store.GetEvaluationsByBid(r.Context(), bidID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get evaluations")
		return
	}
	writeJSON(w, http.StatusOK, evals)
}
