package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequireRole(t *testing.T) {
	handler := RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name   string
		claims *Claims
		want   int
	}{
		{"no claims on context", nil, http.StatusUnauthorized},
		{"user role rejected", &Claims{UserID: "u1", Role: RoleUser}, http.StatusForbidden},
		{"admin role allowed", &Claims{UserID: "u2", Role: RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/jobs", nil)
			if tt.claims != nil {
				req = req.WithContext(context.WithValue(req.Context(), UserContextKey, tt.claims))
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestRequireRoleAcceptsAnyListedRole(t *testing.T) {
	handler := RequireRole(RoleAdmin, RoleUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserContextKey, &Claims{UserID: "u3", Role: RoleUser}))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}
