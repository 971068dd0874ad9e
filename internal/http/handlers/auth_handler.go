// README: Admin login handler issuing JWTs.
package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"chauffeur/internal/config"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	if h.cfg.Auth.JWTSecret == "" || h.cfg.Auth.AdminPassword == "" {
		writeError(c, http.StatusServiceUnavailable, "login not configured")
		return
	}

	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.cfg.Auth.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.cfg.Auth.AdminPassword)) == 1
	if !userOK || !passOK {
		writeError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   req.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	signed, err := token.SignedString([]byte(h.cfg.Auth.JWTSecret))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(c, http.StatusOK, map[string]any{
		"token":      signed,
		"expires_at": now.Add(tokenTTL).UTC(),
	})
}
