package database

import (
	"errors"
	"fmt"
	"os"
	"time"

	"couple-space-backend/pkg/models"
)

// 哨兵错误：处理器据此映射HTTP状态码
var (
	// ErrNotFound covers both "id does not exist" and "id belongs to another
	// space" — callers must not be able to tell the two apart.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail 邮箱已被注册
	ErrDuplicateEmail = errors.New("email already registered")
)

// DatabaseInterface 定义数据库访问接口
// 所有事件和清单操作都以spaceID作为首要过滤条件
type DatabaseInterface interface {
	// 用户管理
	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)

	// 空间管理
	CreateSpace(space *models.Space) error
	GetSpaceByID(id string) (*models.Space, error)

	// 日历事件（创建者名称由实现负责附加）
	CreateEvent(event *models.Event) error
	GetEventByID(spaceID, id string) (*models.Event, error)
	UpdateEvent(event *models.Event) error
	DeleteEvent(spaceID, id string) error
	ListEventsBySpace(spaceID string) ([]models.Event, error)
	// ListEventsStartingBefore returns the space's events with
	// date_start < before. Events starting at or after the candidate's
	// effective end cannot overlap it, so this is a sufficient comparison set.
	ListEventsStartingBefore(spaceID string, before time.Time) ([]models.Event, error)

	// 购物清单
	CreateListItem(item *models.ListItem) error
	GetListItemByID(spaceID, id string) (*models.ListItem, error)
	UpdateListItem(item *models.ListItem) error
	DeleteListItem(spaceID, id string) error
	DeleteCompletedListItems(spaceID string) error
	ListItemsBySpace(spaceID string) ([]models.ListItem, error)

	// 健康检查
	HealthCheck() error

	// 关闭连接
	Close() error
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	UseLocalDB  bool
	PostgresDSN string
	SupabaseURL string
	SupabaseKey string
	Debug       bool
}

// NewDatabase 根据环境与配置选择数据库实现
func NewDatabase(config DatabaseConfig) DatabaseInterface {
	// 是否在 Vercel 生产环境
	if IsVercelEnvironment() {
		fmt.Printf("🧭 Detected Vercel production environment\n")

		// Vercel 优先使用 Supabase（避免 IPv6）
		if config.SupabaseURL != "" && config.SupabaseKey != "" {
			fmt.Printf("🚀  Using Supabase REST API (Vercel optimized)\n")
			return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey)
		}

		// 次选 PostgreSQL
		if config.PostgresDSN != "" {
			fmt.Printf("🌐  Using PostgreSQL in Vercel (may have IPv6 issues)\n")
			return NewPostgresDatabase(config.PostgresDSN)
		}

		// 未配置受支持的数据库，直接失败
		panic("No valid database configured for Vercel environment. Please set SUPABASE_URL+SUPABASE_SERVICE_KEY or POSTGRES_DSN")
	}

	// 非 Vercel 环境：PostgreSQL > Supabase > 内存
	if !config.UseLocalDB && config.PostgresDSN != "" {
		fmt.Printf("🗄️  Using PostgreSQL database\n")
		return NewPostgresDatabase(config.PostgresDSN)
	}

	if !config.UseLocalDB && config.SupabaseURL != "" && config.SupabaseKey != "" {
		fmt.Printf("🧰  Using Supabase REST API\n")
		return NewSupabaseDatabase(config.SupabaseURL, config.SupabaseKey)
	}

	fmt.Printf("🏠  Using in-memory local database\n")
	return NewLocalDatabase()
}

// IsVercelEnvironment 检查是否运行在 Vercel / Lambda 环境
func IsVercelEnvironment() bool {
	vercelEnv := os.Getenv("VERCEL_ENV")
	vercelURL := os.Getenv("VERCEL_URL")
	awsLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	return vercelEnv != "" || vercelURL != "" || awsLambda != ""
}
