package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/privasee/footprint/internal/auth"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "email and password are required")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "validation_error", "password must be at least 8 characters")
		return
	}

	user, tokens, err := s.authService.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "email_taken", "Email already registered")
			return
		}
		respondError(w, http.StatusInternalServerError, "server_error", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "email and password are required")
		return
	}

	tokens, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "auth_error", "Invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, tokens)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	tokens, err := s.authService.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "auth_error", "Invalid refresh token")
		return
	}

	respondJSON(w, http.StatusOK, tokens)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		_ = s.authService.LogoutAll(r.Context(), claims.UserID)
	} else {
		_ = s.authService.Logout(r.Context(), claims.UserID, req.RefreshToken)
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (s *Server) getCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.GetUserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "auth_error", "Not authenticated")
		return
	}

	user, err := s.authService.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"user_id": claims.UserID,
			"email":   claims.Email,
			"role":    claims.Role,
		})
		return
	}

	respondJSON(w, http.StatusOK, user)
}
