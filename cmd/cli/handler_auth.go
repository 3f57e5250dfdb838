package main

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/ErfanXH/Polaris/pkg/database"
	"github.com/ErfanXH/Polaris/pkg/models"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}

type UserInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (rm *RouteManager) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := rm.decodeBody(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	// Validate credentials
	user, err := rm.dbManager.ValidateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, database.ErrInvalidCredentials) {
			log.Printf("❌ Failed to validate user %q: %v", req.Username, err)
		}
		writeDetail(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	rm.writeToken(w, user)
}

func (rm *RouteManager) handleMe(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, UserInfo{
		ID:       user.ID.String(),
		Username: user.Username,
	})
}

func (rm *RouteManager) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	rm.writeToken(w, GetUserFromContext(r.Context()))
}

func (rm *RouteManager) writeToken(w http.ResponseWriter, user *models.User) {
	token, expiresAt, err := rm.auth.GenerateJWT(user)
	if err != nil {
		log.Printf("❌ Failed to generate token: %v", err)
		writeDetail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:       user.ID.String(),
			Username: user.Username,
		},
	})
}
