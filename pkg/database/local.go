package database

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"couple-space-backend/pkg/models"
)

// LocalDatabase 内存数据库实现（开发与测试用）
// 单一互斥锁串行化所有写入，因此同一进程内不会出现检查与写入之间的竞态
type LocalDatabase struct {
	mu     sync.RWMutex
	users  map[string]*models.User
	spaces map[string]*models.Space
	events map[string]*models.Event
	items  map[string]*models.ListItem
}

// NewLocalDatabase 创建内存数据库实例
func NewLocalDatabase() DatabaseInterface {
	return &LocalDatabase{
		users:  make(map[string]*models.User),
		spaces: make(map[string]*models.Space),
		events: make(map[string]*models.Event),
		items:  make(map[string]*models.ListItem),
	}
}

// ==== 用户管理 ====

// CreateUser 创建用户
func (db *LocalDatabase) CreateUser(user *models.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicateEmail
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	cp := *user
	db.users[user.ID] = &cp
	return nil
}

// GetUserByEmail 根据邮箱获取用户
func (db *LocalDatabase) GetUserByEmail(email string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// GetUserByID 根据ID获取用户
func (db *LocalDatabase) GetUserByID(id string) (*models.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	u, ok := db.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

// ==== 空间管理 ====

// CreateSpace 创建空间
func (db *LocalDatabase) CreateSpace(space *models.Space) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if space.ID == "" {
		space.ID = uuid.New().String()
	}
	space.CreatedAt = time.Now()

	cp := *space
	db.spaces[space.ID] = &cp
	return nil
}

// GetSpaceByID 根据ID获取空间
func (db *LocalDatabase) GetSpaceByID(id string) (*models.Space, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	s, ok := db.spaces[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// ==== 日历事件 ====

// CreateEvent 创建事件
func (db *LocalDatabase) CreateEvent(event *models.Event) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	cp := *event
	cp.Creator = nil
	db.events[event.ID] = &cp
	return nil
}

// GetEventByID 获取事件（按空间过滤，跨空间的ID等同于不存在）
func (db *LocalDatabase) GetEventByID(spaceID, id string) (*models.Event, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	ev, ok := db.events[id]
	if !ok || ev.SpaceID != spaceID {
		return nil, ErrNotFound
	}
	cp := *ev
	db.attachCreator(&cp)
	return &cp, nil
}

// UpdateEvent 更新事件
func (db *LocalDatabase) UpdateEvent(event *models.Event) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.events[event.ID]
	if !ok || existing.SpaceID != event.SpaceID {
		return ErrNotFound
	}
	event.CreatedAt = existing.CreatedAt
	event.UpdatedAt = time.Now()

	cp := *event
	cp.Creator = nil
	db.events[event.ID] = &cp
	return nil
}

// DeleteEvent 删除事件
func (db *LocalDatabase) DeleteEvent(spaceID, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	ev, ok := db.events[id]
	if !ok || ev.SpaceID != spaceID {
		return ErrNotFound
	}
	delete(db.events, id)
	return nil
}

// ListEventsBySpace 列出空间内的事件（按开始时间升序，附带创建者名称）
func (db *LocalDatabase) ListEventsBySpace(spaceID string) ([]models.Event, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	events := []models.Event{}
	for _, ev := range db.events {
		if ev.SpaceID != spaceID {
			continue
		}
		cp := *ev
		db.attachCreator(&cp)
		events = append(events, cp)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].DateStart.Before(events[j].DateStart)
	})
	return events, nil
}

// ListEventsStartingBefore 列出空间内开始时间早于before的事件
// 内存实现直接全量扫描过滤，与SQL预过滤产生相同的比较集合
func (db *LocalDatabase) ListEventsStartingBefore(spaceID string, before time.Time) ([]models.Event, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	events := []models.Event{}
	for _, ev := range db.events {
		if ev.SpaceID != spaceID || !ev.DateStart.Before(before) {
			continue
		}
		events = append(events, *ev)
	}
	return events, nil
}

// attachCreator 附加创建者显示名称（调用方需持有锁）
func (db *LocalDatabase) attachCreator(ev *models.Event) {
	if u, ok := db.users[ev.CreatedBy]; ok {
		ev.Creator = &models.EventCreator{Name: u.Name}
	}
}

// ==== 购物清单 ====

// CreateListItem 创建清单项
func (db *LocalDatabase) CreateListItem(item *models.ListItem) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now()

	cp := *item
	db.items[item.ID] = &cp
	return nil
}

// GetListItemByID 获取清单项（按空间过滤）
func (db *LocalDatabase) GetListItemByID(spaceID, id string) (*models.ListItem, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	it, ok := db.items[id]
	if !ok || it.SpaceID != spaceID {
		return nil, ErrNotFound
	}
	cp := *it
	return &cp, nil
}

// UpdateListItem 更新清单项
func (db *LocalDatabase) UpdateListItem(item *models.ListItem) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	existing, ok := db.items[item.ID]
	if !ok || existing.SpaceID != item.SpaceID {
		return ErrNotFound
	}
	item.CreatedAt = existing.CreatedAt

	cp := *item
	db.items[item.ID] = &cp
	return nil
}

// DeleteListItem 删除清单项
func (db *LocalDatabase) DeleteListItem(spaceID, id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	it, ok := db.items[id]
	if !ok || it.SpaceID != spaceID {
		return ErrNotFound
	}
	delete(db.items, id)
	return nil
}

// DeleteCompletedListItems 批量删除已完成的清单项
func (db *LocalDatabase) DeleteCompletedListItems(spaceID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, it := range db.items {
		if it.SpaceID == spaceID && it.IsCompleted {
			delete(db.items, id)
		}
	}
	return nil
}

// ListItemsBySpace 列出空间内的清单项（按创建时间升序）
func (db *LocalDatabase) ListItemsBySpace(spaceID string) ([]models.ListItem, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	items := []models.ListItem{}
	for _, it := range db.items {
		if it.SpaceID != spaceID {
			continue
		}
		items = append(items, *it)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].ID < items[j].ID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

// HealthCheck 健康检查
func (db *LocalDatabase) HealthCheck() error {
	return nil
}

// Close 关闭连接（内存实现无需操作）
func (db *LocalDatabase) Close() error {
	return nil
}
