package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"couple-space-backend/pkg/models"
)

// SupabaseDatabase Supabase数据库实现（REST API）
type SupabaseDatabase struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewSupabaseDatabase 创建Supabase数据库实例
func NewSupabaseDatabase(rawURL, key string) DatabaseInterface {
	// 确保URL格式正确
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "https://" + rawURL
	}

	return &SupabaseDatabase{
		baseURL: rawURL,
		apiKey:  key,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest 发送HTTP请求到Supabase
func (db *SupabaseDatabase) makeRequest(method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader

	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	reqURL := db.baseURL + "/rest/v1" + endpoint
	req, err := http.NewRequest(method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// 设置请求头
	req.Header.Set("apikey", db.apiKey)
	req.Header.Set("Authorization", "Bearer "+db.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := db.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		// PostgREST 以 23505 表示唯一约束冲突
		if strings.Contains(string(respBody), "23505") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

// ==== 行结构 ====

type supabaseUserRow struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	SpaceID      string    `json:"space_id"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

func (r *supabaseUserRow) toModel() *models.User {
	return &models.User{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Password:  r.PasswordHash,
		SpaceID:   r.SpaceID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type supabaseSpaceRow struct {
	ID        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type supabaseEventRow struct {
	ID        string     `json:"id,omitempty"`
	Title     string     `json:"title"`
	DateStart time.Time  `json:"date_start"`
	DateEnd   *time.Time `json:"date_end"`
	SpaceID   string     `json:"space_id"`
	CreatedBy string     `json:"created_by"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at,omitempty"`
	Creator   *struct {
		Name string `json:"name"`
	} `json:"creator,omitempty"`
}

func (r *supabaseEventRow) toModel() models.Event {
	ev := models.Event{
		ID:        r.ID,
		Title:     r.Title,
		DateStart: r.DateStart,
		DateEnd:   r.DateEnd,
		SpaceID:   r.SpaceID,
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Creator != nil {
		ev.Creator = &models.EventCreator{Name: r.Creator.Name}
	}
	return ev
}

type supabaseItemRow struct {
	ID          string    `json:"id,omitempty"`
	Content     string    `json:"content"`
	IsCompleted bool      `json:"is_completed"`
	SpaceID     string    `json:"space_id"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

func (r *supabaseItemRow) toModel() models.ListItem {
	return models.ListItem{
		ID:          r.ID,
		Content:     r.Content,
		IsCompleted: r.IsCompleted,
		SpaceID:     r.SpaceID,
		CreatedAt:   r.CreatedAt,
	}
}

// eventSelect 附带创建者名称的查询投影
const eventSelect = "select=*,creator:users!events_created_by_fkey(name)"

// ==== 用户管理 ====

// CreateUser 创建用户
func (db *SupabaseDatabase) CreateUser(user *models.User) error {
	payload := map[string]interface{}{
		"name":          user.Name,
		"email":         user.Email,
		"password_hash": user.Password,
		"space_id":      user.SpaceID,
	}
	data, err := db.makeRequest("POST", "/users", payload)
	if err != nil {
		return err
	}
	var rows []supabaseUserRow
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("failed to decode created user: %w", err)
	}
	*user = *rows[0].toModel()
	return nil
}

// GetUserByEmail 根据邮箱获取用户
func (db *SupabaseDatabase) GetUserByEmail(email string) (*models.User, error) {
	endpoint := "/users?email=ilike." + url.QueryEscape(email) + "&limit=1"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseUserRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel(), nil
}

// GetUserByID 根据ID获取用户
func (db *SupabaseDatabase) GetUserByID(id string) (*models.User, error) {
	endpoint := "/users?id=eq." + url.QueryEscape(id) + "&limit=1"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseUserRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].toModel(), nil
}

// ==== 空间管理 ====

// CreateSpace 创建空间
func (db *SupabaseDatabase) CreateSpace(space *models.Space) error {
	data, err := db.makeRequest("POST", "/spaces", map[string]interface{}{"name": space.Name})
	if err != nil {
		return err
	}
	var rows []supabaseSpaceRow
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("failed to decode created space: %w", err)
	}
	space.ID = rows[0].ID
	space.CreatedAt = rows[0].CreatedAt
	return nil
}

// GetSpaceByID 根据ID获取空间
func (db *SupabaseDatabase) GetSpaceByID(id string) (*models.Space, error) {
	endpoint := "/spaces?id=eq." + url.QueryEscape(id) + "&limit=1"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseSpaceRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode spaces: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &models.Space{ID: rows[0].ID, Name: rows[0].Name, CreatedAt: rows[0].CreatedAt}, nil
}

// ==== 日历事件 ====

// CreateEvent 创建事件
func (db *SupabaseDatabase) CreateEvent(event *models.Event) error {
	payload := map[string]interface{}{
		"title":      event.Title,
		"date_start": event.DateStart,
		"date_end":   event.DateEnd,
		"space_id":   event.SpaceID,
		"created_by": event.CreatedBy,
	}
	data, err := db.makeRequest("POST", "/events", payload)
	if err != nil {
		return err
	}
	var rows []supabaseEventRow
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("failed to decode created event: %w", err)
	}
	*event = rows[0].toModel()
	return nil
}

// GetEventByID 获取事件（按空间过滤，跨空间的ID等同于不存在）
func (db *SupabaseDatabase) GetEventByID(spaceID, id string) (*models.Event, error) {
	endpoint := "/events?id=eq." + url.QueryEscape(id) +
		"&space_id=eq." + url.QueryEscape(spaceID) + "&" + eventSelect + "&limit=1"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseEventRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	ev := rows[0].toModel()
	return &ev, nil
}

// UpdateEvent 更新事件
func (db *SupabaseDatabase) UpdateEvent(event *models.Event) error {
	endpoint := "/events?id=eq." + url.QueryEscape(event.ID) +
		"&space_id=eq." + url.QueryEscape(event.SpaceID)
	payload := map[string]interface{}{
		"title":      event.Title,
		"date_start": event.DateStart,
		"date_end":   event.DateEnd,
		"updated_at": time.Now(),
	}
	data, err := db.makeRequest("PATCH", endpoint, payload)
	if err != nil {
		return err
	}
	var rows []supabaseEventRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode updated event: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteEvent 删除事件
func (db *SupabaseDatabase) DeleteEvent(spaceID, id string) error {
	endpoint := "/events?id=eq." + url.QueryEscape(id) +
		"&space_id=eq." + url.QueryEscape(spaceID)
	data, err := db.makeRequest("DELETE", endpoint, nil)
	if err != nil {
		return err
	}
	var rows []supabaseEventRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode deleted events: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEventsBySpace 列出空间内的事件（按开始时间升序，附带创建者名称）
func (db *SupabaseDatabase) ListEventsBySpace(spaceID string) ([]models.Event, error) {
	endpoint := "/events?space_id=eq." + url.QueryEscape(spaceID) +
		"&" + eventSelect + "&order=date_start.asc"
	return db.fetchEvents(endpoint)
}

// ListEventsStartingBefore 列出空间内开始时间早于before的事件
func (db *SupabaseDatabase) ListEventsStartingBefore(spaceID string, before time.Time) ([]models.Event, error) {
	endpoint := "/events?space_id=eq." + url.QueryEscape(spaceID) +
		"&date_start=lt." + url.QueryEscape(before.Format(time.RFC3339Nano)) +
		"&" + eventSelect
	return db.fetchEvents(endpoint)
}

// fetchEvents 获取并解码事件列表
func (db *SupabaseDatabase) fetchEvents(endpoint string) ([]models.Event, error) {
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseEventRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	events := make([]models.Event, 0, len(rows))
	for i := range rows {
		events = append(events, rows[i].toModel())
	}
	return events, nil
}

// ==== 购物清单 ====

// CreateListItem 创建清单项
func (db *SupabaseDatabase) CreateListItem(item *models.ListItem) error {
	payload := map[string]interface{}{
		"content":      item.Content,
		"is_completed": item.IsCompleted,
		"space_id":     item.SpaceID,
	}
	data, err := db.makeRequest("POST", "/list_items", payload)
	if err != nil {
		return err
	}
	var rows []supabaseItemRow
	if err := json.Unmarshal(data, &rows); err != nil || len(rows) == 0 {
		return fmt.Errorf("failed to decode created list item: %w", err)
	}
	*item = rows[0].toModel()
	return nil
}

// GetListItemByID 获取清单项（按空间过滤）
func (db *SupabaseDatabase) GetListItemByID(spaceID, id string) (*models.ListItem, error) {
	endpoint := "/list_items?id=eq." + url.QueryEscape(id) +
		"&space_id=eq." + url.QueryEscape(spaceID) + "&limit=1"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseItemRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode list items: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	item := rows[0].toModel()
	return &item, nil
}

// UpdateListItem 更新清单项
func (db *SupabaseDatabase) UpdateListItem(item *models.ListItem) error {
	endpoint := "/list_items?id=eq." + url.QueryEscape(item.ID) +
		"&space_id=eq." + url.QueryEscape(item.SpaceID)
	payload := map[string]interface{}{
		"content":      item.Content,
		"is_completed": item.IsCompleted,
	}
	data, err := db.makeRequest("PATCH", endpoint, payload)
	if err != nil {
		return err
	}
	var rows []supabaseItemRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode updated list item: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteListItem 删除清单项
func (db *SupabaseDatabase) DeleteListItem(spaceID, id string) error {
	endpoint := "/list_items?id=eq." + url.QueryEscape(id) +
		"&space_id=eq." + url.QueryEscape(spaceID)
	data, err := db.makeRequest("DELETE", endpoint, nil)
	if err != nil {
		return err
	}
	var rows []supabaseItemRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return fmt.Errorf("failed to decode deleted list items: %w", err)
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompletedListItems 批量删除已完成的清单项
func (db *SupabaseDatabase) DeleteCompletedListItems(spaceID string) error {
	endpoint := "/list_items?space_id=eq." + url.QueryEscape(spaceID) + "&is_completed=eq.true"
	_, err := db.makeRequest("DELETE", endpoint, nil)
	return err
}

// ListItemsBySpace 列出空间内的清单项（按创建时间升序）
func (db *SupabaseDatabase) ListItemsBySpace(spaceID string) ([]models.ListItem, error) {
	endpoint := "/list_items?space_id=eq." + url.QueryEscape(spaceID) + "&order=created_at.asc"
	data, err := db.makeRequest("GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	var rows []supabaseItemRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode list items: %w", err)
	}
	items := make([]models.ListItem, 0, len(rows))
	for i := range rows {
		items = append(items, rows[i].toModel())
	}
	return items, nil
}

// HealthCheck 健康检查
func (db *SupabaseDatabase) HealthCheck() error {
	_, err := db.makeRequest("GET", "/spaces?limit=1", nil)
	return err
}

// Close 关闭连接（REST实现无需操作）
func (db *SupabaseDatabase) Close() error {
	return nil
}
