package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"couple-space-backend/pkg/config"
	"couple-space-backend/pkg/models"
	"couple-space-backend/pkg/utils"
)

// ContextKey 用于在context中存储租户身份的键
type ContextKey string

const (
	IdentityContextKey ContextKey = "identity"
)

// AuthMiddleware JWT认证中间件
// 从Bearer令牌解析出 {userId, spaceId} 并存入context；后续处理器只信任
// 这里解析出的spaceId，绝不信任请求体或路径中的空间字段
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 从Authorization头获取token
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteUnauthorizedResponse(w, "Missing authorization header")
				return
			}

			// 检查Bearer前缀
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				utils.WriteUnauthorizedResponse(w, "Invalid authorization header format")
				return
			}

			// 解析和验证JWT token
			ident, err := jwtService.ExtractIdentity(tokenString)
			if err != nil {
				if cfg.Debug {
					fmt.Printf("❌ Auth middleware: token rejected: %v\n", err)
				}
				utils.WriteUnauthorizedResponse(w, "Invalid or expired token")
				return
			}

			// 将租户身份添加到请求context中
			ctx := context.WithValue(r.Context(), IdentityContextKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentityFromContext 从context中获取租户身份
func GetIdentityFromContext(ctx context.Context) (*models.Identity, bool) {
	ident, ok := ctx.Value(IdentityContextKey).(*models.Identity)
	return ident, ok
}

// RequireIdentity 要求请求必须已认证的辅助函数
func RequireIdentity(ctx context.Context) (*models.Identity, error) {
	ident, ok := GetIdentityFromContext(ctx)
	if !ok || ident == nil {
		return nil, fmt.Errorf("request not authenticated")
	}
	return ident, nil
}
