package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	chiRoute "github.com/go-chi/chi/v5"

	"couple-space-backend/pkg/config"
	"couple-space-backend/pkg/database"
	"couple-space-backend/pkg/middleware"
	"couple-space-backend/pkg/models"
	"couple-space-backend/pkg/scheduling"
	"couple-space-backend/pkg/utils"
)

// EventsHandler 日历事件处理器
// 每个操作先解析租户身份，再对空间内的现有日程做重叠检测，最后才写入。
// 注意：检测与写入不是原子操作（与参考行为一致），并发创建可能同时通过检测。
type EventsHandler struct {
	config *config.Config
	db     database.DatabaseInterface
}

// NewEventsHandler 创建事件处理器
func NewEventsHandler(cfg *config.Config, db database.DatabaseInterface) *EventsHandler {
	return &EventsHandler{config: cfg, db: db}
}

// hasOverlap 检测候选区间 [cs, ce) 是否与空间内其它事件重叠
// 先用 date_start < ce 预过滤，再用统一的有效区间规则精确比较
func (h *EventsHandler) hasOverlap(spaceID string, cs, ce time.Time, excludeID string) (bool, error) {
	events, err := h.db.ListEventsStartingBefore(spaceID, ce)
	if err != nil {
		return false, err
	}
	return scheduling.HasConflict(events, cs, ce, excludeID), nil
}

// ListEvents GET /api/events
// 返回调用者空间内的全部事件，按开始时间升序，附带创建者名称
func (h *EventsHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	events, err := h.db.ListEventsBySpace(ident.SpaceID)
	if err != nil {
		fmt.Printf("❌ ListEvents: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, events)
}

// CreateEvent POST /api/events
func (h *EventsHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	var req models.CreateEventRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.DateStart == nil {
		utils.WriteValidationErrorResponse(w, "title and dateStart are required")
		return
	}
	if req.DateEnd != nil && !req.DateEnd.After(*req.DateStart) {
		utils.WriteValidationErrorResponse(w, "dateEnd must be after dateStart")
		return
	}

	cs, ce := scheduling.EffectiveInterval(*req.DateStart, req.DateEnd)
	overlap, err := h.hasOverlap(ident.SpaceID, cs, ce, "")
	if err != nil {
		fmt.Printf("❌ CreateEvent: overlap check failed: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}
	if overlap {
		utils.WriteConflictResponse(w, "Event overlaps with another scheduled activity")
		return
	}

	event := &models.Event{
		Title:     req.Title,
		DateStart: *req.DateStart,
		DateEnd:   req.DateEnd,
		SpaceID:   ident.SpaceID,
		CreatedBy: ident.UserID,
	}
	if err := h.db.CreateEvent(event); err != nil {
		fmt.Printf("❌ CreateEvent: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	// 重新读取以附带创建者名称
	created, err := h.db.GetEventByID(ident.SpaceID, event.ID)
	if err != nil {
		created = event
	}

	utils.WriteCreatedResponse(w, created)
}

// UpdateEvent PUT /api/events/{id}
// 未提供的字段回退到已存储的值；dateEnd区分"未发送"（保留原值）与
// 显式null（清除结束时间）。重叠检测排除事件自身。
func (h *EventsHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	id := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		utils.WriteBadRequestResponse(w, "event id required")
		return
	}

	var req models.UpdateEventRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	// 按空间加载：其它空间的ID与不存在的ID表现完全一致
	existing, err := h.db.GetEventByID(ident.SpaceID, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Event not found")
			return
		}
		fmt.Printf("❌ UpdateEvent: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	// 计算合并后的有效字段
	title := existing.Title
	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
	}

	dateStart := existing.DateStart
	if req.DateStart != nil {
		dateStart = *req.DateStart
	}

	dateEnd := existing.DateEnd
	if req.DateEnd != nil { // 字段在请求体中出现
		if string(req.DateEnd) == "null" {
			dateEnd = nil
		} else {
			var t time.Time
			if err := json.Unmarshal(req.DateEnd, &t); err != nil {
				utils.WriteValidationErrorResponse(w, "dateEnd must be a valid timestamp or null")
				return
			}
			dateEnd = &t
		}
	}

	if dateEnd != nil && !dateEnd.After(dateStart) {
		utils.WriteValidationErrorResponse(w, "dateEnd must be after dateStart")
		return
	}

	cs, ce := scheduling.EffectiveInterval(dateStart, dateEnd)
	overlap, err := h.hasOverlap(ident.SpaceID, cs, ce, existing.ID)
	if err != nil {
		fmt.Printf("❌ UpdateEvent: overlap check failed: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}
	if overlap {
		utils.WriteConflictResponse(w, "Event overlaps with another scheduled activity")
		return
	}

	existing.Title = title
	existing.DateStart = dateStart
	existing.DateEnd = dateEnd
	if err := h.db.UpdateEvent(existing); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Event not found")
			return
		}
		fmt.Printf("❌ UpdateEvent: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	updated, err := h.db.GetEventByID(ident.SpaceID, existing.ID)
	if err != nil {
		updated = existing
	}

	utils.WriteSuccessResponse(w, updated)
}

// DeleteEvent DELETE /api/events/{id}
// 删除无需重叠检测；跨空间的ID返回404
func (h *EventsHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	id := chiRoute.URLParam(r, "id")
	if strings.TrimSpace(id) == "" {
		utils.WriteBadRequestResponse(w, "event id required")
		return
	}

	if err := h.db.DeleteEvent(ident.SpaceID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteNotFoundResponse(w, "Event not found")
			return
		}
		fmt.Printf("❌ DeleteEvent: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"message": "Event deleted",
	})
}
