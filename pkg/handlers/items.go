package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	chiRoute "github.com/go-chi/chi/v5"

	"couple-space-backend/pkg/config"
	"couple-space-backend/pkg/database"
	"couple-space-backend/pkg/middleware"
	"couple-space-backend/pkg/models"
	"couple-space-backend/pkg/utils"
)

// ItemsHandler 购物清单处理器
type ItemsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

// NewItemsHandler 创建购物清单处理器
func NewItemsHandler(cfg *config.Config, db database.DatabaseInterface) *ItemsHandler {
	return &ItemsHandler{config: cfg, db: db}
}

// ListItems GET /api/items
func (h *ItemsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	items, err := h.db.ListItemsBySpace(ident.SpaceID)
	if err != nil {
		fmt.Printf("❌ ListItems: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, items)
}

// CreateItem POST /api/items
func (h *ItemsHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req models.CreateListItemRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		utils.WriteValidationErrorResponse(w, "content is required")
		return
	}

	item := &models.ListItem{
		Content: req.Content,
		SpaceID: ident.SpaceID,
	}
	if err := h.db.CreateListItem(item); err != nil {
		fmt.Printf("❌ CreateItem: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteCreatedResponse(w, item)
}

// ToggleItem PUT /api/items/{id}
// 切换isCompleted状态；跨空间的ID返回404
func (h *ItemsHandler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	id := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		utils.WriteBadRequestResponse(w, "item id required")
		return
	}

	item, err := h.db.GetListItemByID(ident.SpaceID, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Item not found")
			return
		}
		fmt.Printf("❌ ToggleItem: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	item.IsCompleted = !item.IsCompleted
	if err := h.db.UpdateListItem(item); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Item not found")
			return
		}
		fmt.Printf("❌ ToggleItem: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, item)
}

// DeleteCompletedItems DELETE /api/items/completed
func (h *ItemsHandler) DeleteCompletedItems(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	if err := h.db.DeleteCompletedListItems(ident.SpaceID); err != nil {
		fmt.Printf("❌ DeleteCompletedItems: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"message": "Completed items deleted",
	})
}

// DeleteItem DELETE /api/items/{id}
func (h *ItemsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	id := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		utils.WriteBadRequestResponse(w, "item id required")
		return
	}

	if err := h.db.DeleteListItem(ident.SpaceID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Item not found")
			return
		}
		fmt.Printf("❌ DeleteItem: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"message": "Item deleted",
	})
}
