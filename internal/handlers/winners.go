package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tenderhub/db"
	"tenderhub/models"
)

type selectWinnerRequest struct {
	TenderID int `json:"tenderId"`
	BidID    int `json:"bidId"`
}

// SelectWinnerHandler обрабатывает POST /api/winners (только Admin).
// Предусловия проверяются по порядку до каких-либо изменений:
// тендер существует; тендер строго в статусе Published; предложение
// существует и принадлежит тендеру. Затем обе записи (Locked + Archived)
// выполняются одной транзакцией в Storage.
func (h *Handler) SelectWinnerHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleAdmin, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	var req selectWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	defer r.Body.Close()

	if req.TenderID <= 0 || req.BidID <= 0 {
		writeError(w, http.StatusBadRequest, "tenderId and bidId must be positive")
		return
	}

	tender, err := h.Store.GetTender(r.Context(), req.TenderID)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Tender not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	if tender.Status != models.TenderPublished {
		writeError(w, http.StatusBadRequest, "Cannot select winner for tender that is not in Published status")
		return
	}

	winningBid, err := h.Store.GetBidForTender(r.Context(), req.BidID, req.TenderID)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Bid not found or doesn't belong to this tender")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	avgScore, err := h.Store.GetBidAverageScore(r.Context(), req.BidID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if err := h.Store.SelectWinningBid(r.Context(), req.TenderID, req.BidID); err != nil {
		log.Printf("select winning bid %d for tender %d: %v", req.BidID, req.TenderID, err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	winningBid.AvgScore = avgScore
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Winning bid selected successfully",
		"winningBid": winningBid,
	})
}

// GetAllWinnersHandler возвращает всех победителей (только Admin).
// Отсутствие победителей — пустой список, не ошибка.
func (h *Handler) GetAllWinnersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleAdmin, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	winners, err := h.Store.GetAllWinners(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

// GetTenderWinnerHandler возвращает победителя одного тендера
func (h *Handler) GetTenderWinnerHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	tenderID, err := strconv.Atoi(chi.URLParam(r, "tenderId"))
	if err != nil || tenderID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid tenderId")
		return
	}

	winner, err := h.Store.GetTenderWinner(r.Context(), tenderID)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "No winner selected for this tender")
			return
		}
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	writeJSON(w, http.StatusOK, winner)
}
