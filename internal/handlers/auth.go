package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"tenderhub/db"
	"tenderhub/models"
)

// AuthUser — аутентифицированный пользователь текущего запроса.
type AuthUser struct {
	UserID int
	Role   models.Role
}

type ctxKey int

const userCtxKey ctxKey = 0

// Claims токена сессии
type Claims struct {
	UserID int         `json:"userId"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

const tokenTTL = 8 * time.Hour

func (h *Handler) signToken(userID int, role models.Role) (string, error) {
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
}

// AuthMiddleware разбирает Bearer-токен и кладет пользователя в контекст.
// Запрос без валидного токена проходит дальше анонимным,
// требования аутентификации проверяются в обработчиках.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
			claims := &Claims{}
			_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return h.jwtSecret, nil
			})
			if err == nil {
				ctx := context.WithValue(r.Context(), userCtxKey, AuthUser{
					UserID: claims.UserID,
					Role:   claims.Role,
				})
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

// WithUser возвращает копию запроса с аутентифицированным пользователем
// в контексте. Используется в тестах вместо прохода через AuthMiddleware.
func WithUser(r *http.Request, u AuthUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), userCtxKey, u))
}

// requireUser возвращает пользователя запроса либо пишет 401.
func requireUser(w http.ResponseWriter, r *http.Request) (AuthUser, bool) {
	user, ok := r.Context().Value(userCtxKey).(AuthUser)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
	}
	return user, ok
}

type signupRequest struct {
	Name                string      `json:"name"`
	Email               string      `json:"email"`
	Password            string      `json:"password"`
	Role                models.Role `json:"role"`
	ContactNumber       string      `json:"contactNumber"`
	OrganizationAddress string      `json:"organizationAddress"`
}

// SignupHandler обрабатывает POST /api/auth/signup
func (h *Handler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	defer r.Body.Close()

	var req signupRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	if err := validateSignupRequest(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Проверка занятости email
	if _, err := h.Store.GetUserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, http.StatusConflict, "Email already registered")
		return
	} else if !db.IsNotFound(err) {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	user := models.User{
		Name:          req.Name,
		Email:         req.Email,
		PasswordHash:  string(hash),
		Role:          req.Role,
		ContactNumber: req.ContactNumber,
	}
	if err := h.Store.CreateUser(r.Context(), &user); err != nil {
		log.Printf("signup: create user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	// У покупателей сразу создается организация
	if user.Role == models.RoleBuyer {
		org := models.Organization{
			UserID:       user.ID,
			Name:         req.Name,
			ContactPhone: req.ContactNumber,
			Address:      req.OrganizationAddress,
		}
		if err := h.Store.CreateOrganization(r.Context(), &org); err != nil {
			log.Printf("signup: create organization: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
	}

	token, err := h.signToken(user.ID, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  user,
	})
}

func validateSignupRequest(req *signupRequest) error {
	if req.Name == "" {
		return errors.New("name is required")
	}
	if !strings.Contains(req.Email, "@") {
		return errors.New("valid email is required")
	}
	if len(req.Password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	if !models.ValidRole(req.Role) {
		return errors.New("invalid role")
	}
	if len(req.ContactNumber) < 10 {
		return errors.New("contactNumber must be at least 10 digits")
	}
	return nil
}

type loginRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// LoginHandler обрабатывает POST /api/auth/login
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1048576)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}
	defer r.Body.Close()

	if req.Email == "" || req.Password == "" || !models.ValidRole(req.Role) {
		writeError(w, http.StatusBadRequest, "email, password and role are required")
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if user.Role != req.Role {
		writeError(w, http.StatusForbidden, "Role mismatch for this account")
		return
	}

	token, err := h.signToken(user.ID, user.Role)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
