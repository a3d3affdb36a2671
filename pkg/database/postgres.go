package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"couple-space-backend/pkg/models"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresDatabase PostgreSQL数据库实现
type PostgresDatabase struct {
	db *sql.DB
}

// NewPostgresDatabase 创建PostgreSQL数据库实例
func NewPostgresDatabase(dsn string) DatabaseInterface {
	// 尝试多种连接策略来解决无服务器环境的网络问题
	// Sanitize DSN to avoid stray CR/LF from env values
	dsn = strings.TrimSpace(dsn)
	strategies := []string{
		addConnectionParams(dsn, "prefer_simple_protocol=true&connect_timeout=10"),
		addConnectionParams(dsn, "sslmode=require&prefer_simple_protocol=true"),
		dsn, // 最后尝试原始DSN
	}

	var db *sql.DB
	var err error

	for i, strategy := range strategies {
		fmt.Printf("🔄 Trying connection strategy %d...\n", i+1)

		db, err = sql.Open("postgres", strategy)
		if err != nil {
			fmt.Printf("❌ Strategy %d failed to open: %v\n", i+1, err)
			continue
		}

		// 设置连接池参数，适合无服务器环境
		db.SetMaxOpenConns(5)                  // 限制最大连接数
		db.SetMaxIdleConns(2)                  // 限制空闲连接数
		db.SetConnMaxLifetime(5 * time.Minute) // 连接最大生命周期

		// 测试连接
		if err = db.Ping(); err != nil {
			fmt.Printf("❌ Strategy %d failed to ping: %v\n", i+1, err)
			db.Close()
			continue
		}

		fmt.Printf("✅ PostgreSQL connection established successfully with strategy %d\n", i+1)

		// 应用数据库迁移
		if err := RunMigrations(db); err != nil {
			panic(fmt.Sprintf("Failed to run database migrations: %v", err))
		}

		return &PostgresDatabase{db: db}
	}

	// 所有策略都失败了
	panic(fmt.Sprintf("Failed to connect to PostgreSQL with all strategies. Last error: %v", err))
}

// RunMigrations sets up goose with the embedded migrations and runs them
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// addConnectionParams 添加连接参数到DSN
func addConnectionParams(dsn, params string) string {
	if params == "" {
		return dsn
	}

	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}

	return dsn + separator + params
}

// isUniqueViolation 检查是否为唯一约束冲突
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// ==== 用户管理 ====

// CreateUser 创建用户
func (db *PostgresDatabase) CreateUser(user *models.User) error {
	query := `
        INSERT INTO users (name, email, password_hash, space_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := db.db.QueryRow(query, user.Name, user.Email, user.Password, user.SpaceID).
		Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail 根据邮箱获取用户
func (db *PostgresDatabase) GetUserByEmail(email string) (*models.User, error) {
	query := `
        SELECT id, name, email, password_hash, space_id, created_at, updated_at
        FROM users
        WHERE LOWER(email) = LOWER($1)
    `
	user := &models.User{}
	err := db.db.QueryRow(query, email).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.SpaceID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByID 根据ID获取用户
func (db *PostgresDatabase) GetUserByID(id string) (*models.User, error) {
	query := `
        SELECT id, name, email, password_hash, space_id, created_at, updated_at
        FROM users
        WHERE id = $1
    `
	user := &models.User{}
	err := db.db.QueryRow(query, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.SpaceID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// ==== 空间管理 ====

// CreateSpace 创建空间
func (db *PostgresDatabase) CreateSpace(space *models.Space) error {
	query := `
        INSERT INTO spaces (name, created_at)
        VALUES ($1, NOW())
        RETURNING id, created_at
    `
	err := db.db.QueryRow(query, space.Name).Scan(&space.ID, &space.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create space: %w", err)
	}
	return nil
}

// GetSpaceByID 根据ID获取空间
func (db *PostgresDatabase) GetSpaceByID(id string) (*models.Space, error) {
	query := `SELECT id, name, created_at FROM spaces WHERE id = $1`
	space := &models.Space{}
	err := db.db.QueryRow(query, id).Scan(&space.ID, &space.Name, &space.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get space: %w", err)
	}
	return space, nil
}

// ==== 日历事件 ====

// CreateEvent 创建事件
func (db *PostgresDatabase) CreateEvent(event *models.Event) error {
	query := `
        INSERT INTO events (title, date_start, date_end, space_id, created_by, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	err := db.db.QueryRow(query, event.Title, event.DateStart, event.DateEnd, event.SpaceID, event.CreatedBy).
		Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

// GetEventByID 获取事件（按空间过滤，跨空间的ID等同于不存在）
func (db *PostgresDatabase) GetEventByID(spaceID, id string) (*models.Event, error) {
	query := `
        SELECT e.id, e.title, e.date_start, e.date_end, e.space_id, e.created_by,
               u.name, e.created_at, e.updated_at
        FROM events e
        JOIN users u ON u.id = e.created_by
        WHERE e.id = $1 AND e.space_id = $2
    `
	event := &models.Event{}
	var creatorName string
	err := db.db.QueryRow(query, id, spaceID).
		Scan(&event.ID, &event.Title, &event.DateStart, &event.DateEnd, &event.SpaceID,
			&event.CreatedBy, &creatorName, &event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	event.Creator = &models.EventCreator{Name: creatorName}
	return event, nil
}

// UpdateEvent 更新事件
func (db *PostgresDatabase) UpdateEvent(event *models.Event) error {
	query := `
        UPDATE events
        SET title = $1, date_start = $2, date_end = $3, updated_at = NOW()
        WHERE id = $4 AND space_id = $5
        RETURNING updated_at
    `
	err := db.db.QueryRow(query, event.Title, event.DateStart, event.DateEnd, event.ID, event.SpaceID).
		Scan(&event.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to update event: %w", err)
	}
	return nil
}

// DeleteEvent 删除事件
func (db *PostgresDatabase) DeleteEvent(spaceID, id string) error {
	result, err := db.db.Exec(`DELETE FROM events WHERE id = $1 AND space_id = $2`, id, spaceID)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEventsBySpace 列出空间内的事件（按开始时间升序，附带创建者名称）
func (db *PostgresDatabase) ListEventsBySpace(spaceID string) ([]models.Event, error) {
	query := `
        SELECT e.id, e.title, e.date_start, e.date_end, e.space_id, e.created_by,
               u.name, e.created_at, e.updated_at
        FROM events e
        JOIN users u ON u.id = e.created_by
        WHERE e.space_id = $1
        ORDER BY e.date_start ASC
    `
	rows, err := db.db.Query(query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	return scanEventRows(rows)
}

// ListEventsStartingBefore 列出空间内开始时间早于before的事件
// 这是重叠检测的预过滤：开始于候选区间有效结束之后的事件不可能重叠
func (db *PostgresDatabase) ListEventsStartingBefore(spaceID string, before time.Time) ([]models.Event, error) {
	query := `
        SELECT e.id, e.title, e.date_start, e.date_end, e.space_id, e.created_by,
               u.name, e.created_at, e.updated_at
        FROM events e
        JOIN users u ON u.id = e.created_by
        WHERE e.space_id = $1 AND e.date_start < $2
    `
	rows, err := db.db.Query(query, spaceID, before)
	if err != nil {
		return nil, fmt.Errorf("failed to list events before: %w", err)
	}
	defer rows.Close()

	return scanEventRows(rows)
}

// scanEventRows 扫描事件结果集
func scanEventRows(rows *sql.Rows) ([]models.Event, error) {
	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var creatorName string
		if err := rows.Scan(&event.ID, &event.Title, &event.DateStart, &event.DateEnd,
			&event.SpaceID, &event.CreatedBy, &creatorName, &event.CreatedAt, &event.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Creator = &models.EventCreator{Name: creatorName}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}
	return events, nil
}

// ==== 购物清单 ====

// CreateListItem 创建清单项
func (db *PostgresDatabase) CreateListItem(item *models.ListItem) error {
	query := `
        INSERT INTO list_items (content, is_completed, space_id, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id, created_at
    `
	err := db.db.QueryRow(query, item.Content, item.IsCompleted, item.SpaceID).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create list item: %w", err)
	}
	return nil
}

// GetListItemByID 获取清单项（按空间过滤）
func (db *PostgresDatabase) GetListItemByID(spaceID, id string) (*models.ListItem, error) {
	query := `
        SELECT id, content, is_completed, space_id, created_at
        FROM list_items
        WHERE id = $1 AND space_id = $2
    `
	item := &models.ListItem{}
	err := db.db.QueryRow(query, id, spaceID).
		Scan(&item.ID, &item.Content, &item.IsCompleted, &item.SpaceID, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get list item: %w", err)
	}
	return item, nil
}

// UpdateListItem 更新清单项
func (db *PostgresDatabase) UpdateListItem(item *models.ListItem) error {
	query := `
        UPDATE list_items
        SET content = $1, is_completed = $2
        WHERE id = $3 AND space_id = $4
    `
	result, err := db.db.Exec(query, item.Content, item.IsCompleted, item.ID, item.SpaceID)
	if err != nil {
		return fmt.Errorf("failed to update list item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update list item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteListItem 删除清单项
func (db *PostgresDatabase) DeleteListItem(spaceID, id string) error {
	result, err := db.db.Exec(`DELETE FROM list_items WHERE id = $1 AND space_id = $2`, id, spaceID)
	if err != nil {
		return fmt.Errorf("failed to delete list item: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete list item: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompletedListItems 批量删除已完成的清单项
func (db *PostgresDatabase) DeleteCompletedListItems(spaceID string) error {
	_, err := db.db.Exec(`DELETE FROM list_items WHERE space_id = $1 AND is_completed = TRUE`, spaceID)
	if err != nil {
		return fmt.Errorf("failed to delete completed list items: %w", err)
	}
	return nil
}

// ListItemsBySpace 列出空间内的清单项（按创建时间升序）
func (db *PostgresDatabase) ListItemsBySpace(spaceID string) ([]models.ListItem, error) {
	query := `
        SELECT id, content, is_completed, space_id, created_at
        FROM list_items
        WHERE space_id = $1
        ORDER BY created_at ASC, id ASC
    `
	rows, err := db.db.Query(query, spaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []models.ListItem{}
	for rows.Next() {
		var item models.ListItem
		if err := rows.Scan(&item.ID, &item.Content, &item.IsCompleted, &item.SpaceID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan list item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate list items: %w", err)
	}
	return items, nil
}

// HealthCheck 健康检查
func (db *PostgresDatabase) HealthCheck() error {
	return db.db.Ping()
}

// Close 关闭连接
func (db *PostgresDatabase) Close() error {
	return db.db.Close()
}
