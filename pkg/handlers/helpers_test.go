package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	handler "couple-space-backend/api"
	"couple-space-backend/pkg/config"
	"couple-space-backend/pkg/database"
	"couple-space-backend/pkg/models"
	"couple-space-backend/pkg/utils"
)

// newTestRouter assembles the real router over a fresh in-memory store,
// mimicking the entry point setup.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	cfg := &config.Config{
		Environment:    "development",
		Port:           "5000",
		UseLocalDB:     true,
		JWTSecret:      "test-secret",
		AllowedOrigins: []string{"*"},
	}
	db := database.NewLocalDatabase()
	return handler.NewRouter(cfg, db)
}

// envelope mirrors utils.APIResponse with raw data for per-test decoding
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *utils.APIError `json:"error"`
}

// doRequest performs a JSON request against the router and returns the recorder
func doRequest(t *testing.T, router *chi.Mux, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// decodeEnvelope unwraps the standard response envelope
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// decodeData decodes the envelope's data payload into out
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	env := decodeEnvelope(t, rec)
	require.True(t, env.Success, "expected success response, got: %s", rec.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, out))
}

// errorCode returns the error code of a failed response
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	env := decodeEnvelope(t, rec)
	require.False(t, env.Success)
	require.NotNil(t, env.Error)
	return env.Error.Code
}

// registerUser registers a user and returns the bearer token and user payload
func registerUser(t *testing.T, router *chi.Mux, name, email, inviteCode string) (string, models.PublicUser) {
	t.Helper()

	body := map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": "secret123",
	}
	if inviteCode != "" {
		body["inviteCode"] = inviteCode
	}

	rec := doRequest(t, router, http.MethodPost, "/api/auth/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, "register failed: %s", rec.Body.String())

	var resp models.AuthResponse
	decodeData(t, rec, &resp)
	require.NotEmpty(t, resp.Token)
	require.NotNil(t, resp.User)
	return resp.Token, *resp.User
}
