package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"couple-space-backend/pkg/models"
)

func createItem(t *testing.T, router *chi.Mux, token, content string) (*httptest.ResponseRecorder, *models.ListItem) {
	t.Helper()
	rec := doRequest(t, router, http.MethodPost, "/api/items", token, map[string]interface{}{
		"content": content,
	})
	if rec.Code != http.StatusCreated {
		return rec, nil
	}
	var item models.ListItem
	decodeData(t, rec, &item)
	return rec, &item
}

func listItems(t *testing.T, router *chi.Mux, token string) []models.ListItem {
	t.Helper()
	rec := doRequest(t, router, http.MethodGet, "/api/items", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []models.ListItem
	decodeData(t, rec, &items)
	return items
}

func TestCreateAndListItems(t *testing.T) {
	router := newTestRouter(t)
	token, user := registerUser(t, router, "Leandro", "leandro@test.com", "")

	rec, milk := createItem(t, router, token, "Leche")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Leche", milk.Content)
	assert.False(t, milk.IsCompleted)
	assert.Equal(t, user.SpaceID, milk.SpaceID)

	rec, _ = createItem(t, router, token, "Pan")
	require.Equal(t, http.StatusCreated, rec.Code)

	items := listItems(t, router, token)
	require.Len(t, items, 2)
	// 按创建时间升序
	assert.Equal(t, "Leche", items[0].Content)
	assert.Equal(t, "Pan", items[1].Content)
}

func TestCreateItemRequiresContent(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "Leandro", "leandro@test.com", "")

	rec := doRequest(t, router, http.MethodPost, "/api/items", token, map[string]interface{}{
		"content": "   ",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))
}

func TestToggleItem(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "Leandro", "leandro@test.com", "")

	rec, item := createItem(t, router, token, "Leche")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/api/items/"+item.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var toggled models.ListItem
	decodeData(t, rec, &toggled)
	assert.True(t, toggled.IsCompleted)

	// 再切一次回到未完成
	rec = doRequest(t, router, http.MethodPut, "/api/items/"+item.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &toggled)
	assert.False(t, toggled.IsCompleted)
}

func TestDeleteItem(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "Leandro", "leandro@test.com", "")

	rec, item := createItem(t, router, token, "Leche")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/items/"+item.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/items/"+item.ID, token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Empty(t, listItems(t, router, token))
}

func TestDeleteCompletedItems(t *testing.T) {
	router := newTestRouter(t)
	token, _ := registerUser(t, router, "Leandro", "leandro@test.com", "")

	_, milk := createItem(t, router, token, "Leche")
	createItem(t, router, token, "Pan")
	_, eggs := createItem(t, router, token, "Huevos")

	// 完成两个，批量清除只删这两个
	rec := doRequest(t, router, http.MethodPut, "/api/items/"+milk.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, router, http.MethodPut, "/api/items/"+eggs.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/items/completed", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := listItems(t, router, token)
	require.Len(t, items, 1)
	assert.Equal(t, "Pan", items[0].Content)
}

func TestDeleteCompletedOnlyAffectsOwnSpace(t *testing.T) {
	router := newTestRouter(t)
	tokenX, _ := registerUser(t, router, "Leandro", "leandro@test.com", "")
	tokenY, _ := registerUser(t, router, "Gabi", "gabi@test.com", "")

	_, itemX := createItem(t, router, tokenX, "Leche")
	rec := doRequest(t, router, http.MethodPut, "/api/items/"+itemX.ID, tokenX, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// 另一空间的清除操作不影响这里
	rec = doRequest(t, router, http.MethodDelete, "/api/items/completed", tokenY, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	items := listItems(t, router, tokenX)
	require.Len(t, items, 1)
	assert.True(t, items[0].IsCompleted)
}

func TestItemTenantIsolation(t *testing.T) {
	router := newTestRouter(t)
	tokenX, _ := registerUser(t, router, "Leandro", "leandro@test.com", "")
	tokenY, _ := registerUser(t, router, "Intruso", "intruso@test.com", "")

	rec, item := createItem(t, router, tokenX, "Leche")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/api/items/"+item.ID, tokenY, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodDelete, "/api/items/"+item.ID, tokenY, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	assert.Empty(t, listItems(t, router, tokenY))
}

func TestItemsRequireAuthentication(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/items", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
