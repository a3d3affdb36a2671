package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesSpace(t *testing.T) {
	router := newTestRouter(t)

	token, user := registerUser(t, router, "Leandro", "leandro@test.com", "")
	assert.NotEmpty(t, user.ID)
	assert.NotEmpty(t, user.SpaceID)
	assert.Equal(t, "Leandro", user.Name)

	// 邀请码就是空间ID
	rec := doRequest(t, router, http.MethodGet, "/api/spaces/invite", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		InviteCode string `json:"inviteCode"`
	}
	decodeData(t, rec, &resp)
	assert.Equal(t, user.SpaceID, resp.InviteCode)
}

func TestRegisterWithInviteCodeJoinsSpace(t *testing.T) {
	router := newTestRouter(t)

	_, first := registerUser(t, router, "Leandro", "leandro@test.com", "")
	_, second := registerUser(t, router, "Gabi", "gabi@test.com", first.SpaceID)

	assert.Equal(t, first.SpaceID, second.SpaceID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "Leandro", "leandro@test.com", "")

	rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":     "Impostor",
		"email":    "leandro@test.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", errorCode(t, rec))
}

func TestRegisterInvalidInviteCodeIsFullyRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"name":       "Gabi",
		"email":      "gabi@test.com",
		"password":   "secret123",
		"inviteCode": "does-not-exist",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// 用户未被创建：同一邮箱稍后仍然可以注册
	registerUser(t, router, "Gabi", "gabi@test.com", "")
}

func TestRegisterMissingFields(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "", map[string]interface{}{
		"email": "nobody@test.com",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestLogin(t *testing.T) {
	router := newTestRouter(t)
	_, user := registerUser(t, router, "Leandro", "leandro@test.com", "")

	rec := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "leandro@test.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID      string `json:"id"`
			SpaceID string `json:"spaceId"`
		} `json:"user"`
	}
	decodeData(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, user.SpaceID, resp.User.SpaceID)
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Leandro", "leandro@test.com", "")

	wrongPassword := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "leandro@test.com",
		"password": "nope",
	})
	unknownEmail := doRequest(t, router, http.MethodPost, "/api/auth/login", "", map[string]interface{}{
		"email":    "ghost@test.com",
		"password": "secret123",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)

	// 两种失败对调用方完全不可区分
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestAuthenticatedRoutesRejectMissingOrInvalidTokens(t *testing.T) {
	router := newTestRouter(t)

	missing := doRequest(t, router, http.MethodGet, "/api/spaces/invite", "", nil)
	require.Equal(t, http.StatusUnauthorized, missing.Code)

	invalid := doRequest(t, router, http.MethodGet, "/api/spaces/invite", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, invalid.Code)
}
