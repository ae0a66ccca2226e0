package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"tenderhub/db"
	"tenderhub/models"
)

const dateLayout = "2006-01-02"

// Минимальный срок между публикацией и дедлайном тендера.
// Ровно 7 дней — допустимо (граница включительно).
const minLeadDays = 7

type createTenderRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IssueDate   string `json:"issue_date"`
	Deadline    string `json:"deadline"`
	// Статус из запроса игнорируется: тендер всегда создается
	// в Pending Approval, что бы ни прислал клиент.
	Status string `json:"status"`
}

// CreateTenderHandler обрабатывает POST /api/tenders (только Buyer)
func (h *Handler) CreateTenderHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleBuyer, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	// Ограничение размера тела, чтобы избежать DoS
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req createTenderRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	issueDate, deadline, err := validateTenderRequest(&req, time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tender := models.Tender{
		UserID:      user.UserID,
		Title:       req.Title,
		Description: req.Description,
		IssueDate:   issueDate,
		Deadline:    deadline,
		Status:      models.TenderPendingApproval,
	}

	if err := h.Store.CreateTender(r.Context(), &tender); err != nil {
		log.Printf("create tender: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create tender")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"tenderId": tender.ID,
		"message":  "Tender created successfully and sent for approval",
	})
}

// validateTenderRequest проверяет поля и даты при создании тендера.
func validateTenderRequest(req *createTenderRequest, now time.Time) (issueDate, deadline time.Time, err error) {
	if req.Title == "" || len(req.Title) > 200 {
		return issueDate, deadline, errors.New("title is required and max length 200")
	}
	if req.Description == "" {
		return issueDate, deadline, errors.New("description is required")
	}

	issueDate, err = time.Parse(dateLayout, req.IssueDate)
	if err != nil {
		return issueDate, deadline, errors.New("invalid issue date format, expected YYYY-MM-DD")
	}
	deadline, err = time.Parse(dateLayout, req.Deadline)
	if err != nil {
		return issueDate, deadline, errors.New("invalid deadline format, expected YYYY-MM-DD")
	}

	if !deadline.After(issueDate) {
		return issueDate, deadline, errors.New("deadline must be after issue date")
	}
	if !deadline.After(now) {
		return issueDate, deadline, errors.New("deadline must be in the future")
	}
	if deadline.Sub(issueDate) < minLeadDays*24*time.Hour {
		return issueDate, deadline, fmt.Errorf("deadline must be at least %d days after issue date", minLeadDays)
	}
	return issueDate, deadline, nil
}

// UpdateTenderStatusHandler обрабатывает PATCH /api/tenders/{tenderId}/status (только Admin).
// Проверяется только целевое значение статуса; переход из текущего статуса
// не ограничивается — администратору оставлена возможность ручного переопределения.
func (h *Handler) UpdateTenderStatusHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleAdmin, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	tenderID, err := strconv.Atoi(chi.URLParam(r, "tenderId"))
	if err != nil || tenderID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid tenderId")
		return
	}

	var req struct {
		Status models.TenderStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	defer r.Body.Close()

	if !models.ValidTenderTarget(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status value")
		return
	}

	updated, err := h.Store.UpdateTenderStatus(r.Context(), tenderID, req.Status)
	if err != nil {
		log.Printf("update tender %d status: %v", tenderID, err)
		writeError(w, http.StatusInternalServerError, "Failed to update tender status")
		return
	}
	if !updated {
		writeError(w, http.StatusNotFound, "Tender not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Tender status updated successfully",
		"status":  req.Status,
	})
}

// GetUserTendersHandler возвращает тендеры текущего пользователя
func (h *Handler) GetUserTendersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	tenders, err := h.Store.GetTendersByUser(r.Context(), user.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tenders")
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}

// GetAvailableTendersHandler возвращает опубликованные тендеры
// вместе с поданными на них предложениями.
func (h *Handler) GetAvailableTendersHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	tenders, err := h.Store.GetAvailableTenders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tenders")
		return
	}
	for i := range tenders {
		bids, err := h.Store.GetBidsByTender(r.Context(), tenders[i].ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to get tenders")
			return
		}
		tenders[i].Bids = bids
	}
	writeJSON(w, http.StatusOK, tenders)
}

// GetTenderHandler возвращает один тендер по id
func (h *Handler) GetTenderHandler(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r); !ok {
		return
	}

	tenderID, err := strconv.Atoi(chi.URLParam(r, "tenderId"))
	if err != nil || tenderID <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid tenderId")
		return
	}

	tender, err := h.Store.GetTender(r.Context(), tenderID)
	if err != nil {
		if db.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Tender not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get tender")
		return
	}
	writeJSON(w, http.StatusOK, tender)
}

// GetAllTendersHandler возвращает все тендеры (только Admin)
func (h *Handler) GetAllTendersHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := authorize(models.RoleAdmin, user.Role); err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}

	tenders, err := h.Store.GetAllTenders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get tenders")
		return
	}
	writeJSON(w, http.StatusOK, tenders)
}
