package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"tenderhub/models"
)

// Handler оборачивает Storage для доступа к данным
type Handler struct {
	Store     StorageInterface
	jwtSecret []byte
}

// NewHandler создает новый Handler
func NewHandler(store StorageInterface, jwtSecret string) *Handler {
	return &Handler{Store: store, jwtSecret: []byte(jwtSecret)}
}

// PingHandler отвечает "ok" для проверки сервера
func (h *Handler) PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError отдает ошибку клиенту в формате {"error": "..."}.
// Внутренние детали ошибок хранения сюда не попадают.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// authorize — единая политика доступа по ролям. Все мутирующие операции
// проходят через нее, вместо разрозненных проверок в каждом обработчике.
func authorize(required, actual models.Role) error {
	if actual != required {
		return fmt.Errorf("operation requires %s role", required)
	}
	return nil
}
