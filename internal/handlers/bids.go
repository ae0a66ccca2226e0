package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tenderhub/db"
	"tenderhub/models"
)

type createBidRequest struct {
	TenderID int          `json:"tenderId"`
	Amount   models.Cents `json:"amount"`
}

// CreateBidHandler обрабатывает POST /api/bids (только Bidder).
// Окно подачи — тендер опубликован и дедлайн не прошел — проверяется
// здесь, в единственной точке создания предложений.
func (h *Handler) CreateBidHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleBidder, user.Role); err != nil {
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

	var req createBidRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	if req.TenderID <= 0 {
		writeError(w, http.StatusBadRequest, "tenderId must be positive")
		return
	}
	if req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "Bid amount must be positive")
		return
	}
	if req.Amount > models.MaxBidAmount {
		writeError(w, http.StatusBadRequest, "Bid amount cannot exceed 1 billion")
		return
	}

	tender, err := h.Store.GetTender(r.Context(), req.TenderID)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Tender not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get tender")
		return
	}
	if tender.Status != models.TenderPublished {
		writeError(w, http.StatusConflict, "Tender is not open for bidding")
		return
	}
	if !tender.Deadline.After(time.Now()) {
		writeError(w, http.StatusConflict, "Tender deadline has passed")
		return
	}

	bid := models.Bid{
		TenderID: req.TenderID,
		BidderID: user.UserID,
		Amount:   req.Amount,
		Status:   models.BidSubmitted,
	}
	if err := h.Store.CreateBid(r.Context(), &bid); err != nil {
		log.Printf("create bid: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create bid")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"bidId": bid.ID})
}

// GetUserBidsHandler возвращает предложения текущего пользователя
func (h *Handler) GetUserBidsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	bids, err := h.Store.GetBidsByBidder(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bids")
		return
	}
	writeJSON(w, http.StatusOK, bids)
}

// GetTenderBidsHandler возвращает предложения одного тендера
func (h *Handler) GetTenderBidsHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	tenderID, err := strconv.Atoi(chi.URLParam(r, "tenderId"))
	if err != nil || tenderID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid tenderId")
		return
	}

	bids, err := h.Store.GetBidsByTender(r.Context(), tenderID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get bids")
		return
	}
	writeJSON(w, http.StatusOK, bids)
}
