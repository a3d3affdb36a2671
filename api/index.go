package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"couple-space-backend/pkg/config"
	"couple-space-backend/pkg/database"
	"couple-space-backend/pkg/handlers"
	customMiddleware "couple-space-backend/pkg/middleware"
	"couple-space-backend/pkg/utils"
)

// Handler 是Vercel函数的入口点
// 实现"单体路由模式"：将所有API端点集中在一个Chi路由器中管理
func Handler(w http.ResponseWriter, r *http.Request) {
	// 加载配置
	cfg := config.GetCached()

	// 验证配置
	if err := cfg.Validate(); err != nil {
		utils.WriteInternalServerErrorResponse(w, "Configuration error: "+err.Error())
		return
	}

	// 获取数据库连接（连接在热调用间复用）
	db := database.GetDatabase(database.DatabaseConfig{
		UseLocalDB:  cfg.UseLocalDB,
		PostgresDSN: cfg.PostgresDSN,
		SupabaseURL: cfg.SupabaseURL,
		SupabaseKey: cfg.SupabaseKey,
		Debug:       cfg.Debug,
	})
	// 注意：连接由连接池管理，无需手动关闭

	// 创建Chi路由器并处理请求
	router := NewRouter(cfg, db)
	router.ServeHTTP(w, r)
}

// NewRouter 组装完整的Chi路由器（入口函数与本地服务器及测试共用）
func NewRouter(cfg *config.Config, db database.DatabaseInterface) *chi.Mux {
	router := chi.NewRouter()
	setupMiddleware(router, cfg)
	setupRoutes(router, cfg, db)
	return router
}

// setupMiddleware 设置全局中间件
func setupMiddleware(router *chi.Mux, cfg *config.Config) {
	// 基础中间件
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	// Normalize path and restore scheme/host before logging and routing
	router.Use(customMiddleware.Normalize())
	router.Use(customMiddleware.Logger(cfg))
	router.Use(customMiddleware.Recovery(cfg))

	// CORS中间件
	router.Use(customMiddleware.CORS(cfg))

	// 超时中间件（无服务器函数有时间限制）
	router.Use(middleware.Timeout(25 * time.Second)) // 留5秒缓冲

	// 请求体验证与大小限制
	router.Use(customMiddleware.ContentTypeJSON)
	router.Use(customMiddleware.MaxBodySize(1 << 20)) // 1MB

	// 压缩中间件
	router.Use(middleware.Compress(5))

	// 开发环境额外中间件
	if cfg.IsDevelopment() {
		router.Use(middleware.Heartbeat("/ping"))
	}
}

// setupRoutes 设置所有API路由
func setupRoutes(router *chi.Mux, cfg *config.Config, db database.DatabaseInterface) {
	// 创建处理器
	authHandler := handlers.NewAuthHandler(cfg, db)
	eventsHandler := handlers.NewEventsHandler(cfg, db)
	itemsHandler := handlers.NewItemsHandler(cfg, db)

	// 健康检查端点
	router.Get("/", authHandler.HealthCheck)

	// 数据库连接池状态端点（调试用）
	if cfg.IsDevelopment() {
		router.Get("/debug/db-pool", func(w http.ResponseWriter, r *http.Request) {
			utils.WriteSuccessResponse(w, database.GetConnectionStats())
		})
	}

	// API路由组
	router.Route("/api", func(r chi.Router) {
		// 公开路由（不需要认证）
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// 需要认证的路由
		r.Group(func(r chi.Router) {
			// 应用认证中间件
			r.Use(customMiddleware.AuthMiddleware(cfg))

			// 空间邀请码
			r.Route("/spaces", func(r chi.Router) {
				r.Get("/invite", authHandler.GetInviteCode)
			})

			// 日历事件路由
			r.Route("/events", func(r chi.Router) {
				r.Get("/", eventsHandler.ListEvents)           // 列出事件
				r.Post("/", eventsHandler.CreateEvent)         // 创建事件
				r.Put("/{id}", eventsHandler.UpdateEvent)      // 更新事件
				r.Delete("/{id}", eventsHandler.DeleteEvent)   // 删除事件
			})

			// 购物清单路由
			r.Route("/items", func(r chi.Router) {
				r.Get("/", itemsHandler.ListItems)                       // 列出清单项
				r.Post("/", itemsHandler.CreateItem)                     // 创建清单项
				r.Put("/{id}", itemsHandler.ToggleItem)                  // 切换完成状态
				r.Delete("/completed", itemsHandler.DeleteCompletedItems) // 清除已完成
				r.Delete("/{id}", itemsHandler.DeleteItem)               // 删除清单项
			})
		})
	})

	// 404处理
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteNotFoundResponse(w, fmt.Sprintf("Route not found: %s %s", r.Method, r.URL.Path))
	})

	// 405处理
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteErrorResponseWithCode(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED",
			fmt.Sprintf("Method %s not allowed for %s", r.Method, r.URL.Path), "")
	})
}
