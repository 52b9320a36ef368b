package api

import (
	"net/http"
	"testing"

	"jotshi_backend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister_Validation(t *testing.T) {
	env := newTestEnv(t)
	tests := []struct {
		name   string
		body   gin.H
		status int
	}{
		{"missing password", gin.H{"email": "a@example.com"}, http.StatusBadRequest},
		{"bad email", gin.H{"email": "not-an-email", "password": "longenough"}, http.StatusBadRequest},
		{"short password", gin.H{"email": "a@example.com", "password": "short"}, http.StatusBadRequest},
		{"ok", gin.H{"email": "A@Example.com", "password": "longenough"}, http.StatusCreated},
		{"duplicate", gin.H{"email": "a@example.com", "password": "longenough"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/auth/register", "", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}

func TestRegister_GrantsUserRole(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(http.MethodPost, "/auth/register", "", gin.H{"email": "seeker@example.com", "password": "longenough"})
	require.Equal(t, http.StatusCreated, w.Code)

	var resp AuthResponse
	decode(t, w, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "seeker@example.com", resp.Profile.Email)
	assert.Equal(t, []string{domain.RoleUser}, resp.Roles)

	var count int64
	env.db.Model(&domain.UserRole{}).Where("user_id = ? AND role = ?", resp.Profile.ID, domain.RoleUser).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	_, id := env.signup(t, "seeker@example.com")
	env.grant(t, id, domain.RoleAdmin)

	w := env.do(http.MethodPost, "/auth/login", "", gin.H{"email": "seeker@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/auth/login", "", gin.H{"email": "nobody@example.com", "password": "correct-horse"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(http.MethodPost, "/auth/login", "", gin.H{"email": " Seeker@Example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp AuthResponse
	decode(t, w, &resp)
	assert.Equal(t, id, resp.Profile.ID)
	assert.Equal(t, []string{domain.RoleAdmin, domain.RoleUser}, resp.Roles)

	w = env.do(http.MethodGet, "/profile", resp.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
