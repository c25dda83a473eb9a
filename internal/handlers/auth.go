package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Pavank5214/charan-sub000/internal/auth"
	"github.com/Pavank5214/charan-sub000/internal/httpx"
	"github.com/Pavank5214/charan-sub000/internal/models"
	"github.com/Pavank5214/charan-sub000/internal/validation"
)

// AuthHandler issues and inspects bearer tokens for the API.
type AuthHandler struct {
	DB       *gorm.DB
	TokenTTL time.Duration
}

func NewAuthHandler(db *gorm.DB, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{DB: db, TokenTTL: tokenTTL}
}

// Register: POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	v := validation.Violations{}
	validation.Required("name", req.Name, v)
	validation.Required("email", req.Email, v)
	if len(req.Password) < 8 {
		v["password"] = "must be at least 8 characters"
	}
	if !v.Empty() {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", v)
		return
	}
	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		httpx.JSONError(w, http.StatusBadRequest, "validation failed", map[string]string{"email": "already registered"})
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to register", nil)
		return
	}
	user := models.User{Name: strings.TrimSpace(req.Name), Email: req.Email, Password: string(hash), Role: models.RoleUser}
	// First account on a fresh install becomes the admin.
	var count int64
	h.DB.Model(&models.User{}).Count(&count)
	if count == 0 {
		user.Role = models.RoleAdmin
	}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to register", nil)
		return
	}
	token, err := h.issueToken(&user)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"token": token, "user": user})
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.JSONError(w, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		httpx.JSONError(w, http.StatusInternalServerError, "failed to login", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	token, err := h.issueToken(&user)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "failed to issue token", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusUnauthorized, "authorization required", nil)
		return
	}
	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "authorization required", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

// issueToken embeds the company scope in the token so later requests do not
// need a lookup. A user on a fresh install carries a zero company id until
// company settings are saved.
func (h *AuthHandler) issueToken(user *models.User) (string, error) {
	var company models.Company
	var companyID uint
	if err := h.DB.Select("id").Order("id").First(&company).Error; err == nil {
		companyID = company.ID
	}
	return auth.GenerateToken(user.ID, companyID, user.Role, h.TokenTTL)
}
