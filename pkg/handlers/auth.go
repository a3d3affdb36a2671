package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"couple-space-backend/pkg/config"
	"couple-space-backend/pkg/database"
	"couple-space-backend/pkg/middleware"
	"couple-space-backend/pkg/models"
	"couple-space-backend/pkg/utils"
)

// bcryptCost 密码哈希成本
const bcryptCost = 10

// AuthHandler 认证处理器
type AuthHandler struct {
	config *config.Config
	db     database.DatabaseInterface
	jwt    *utils.JWTService
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(cfg *config.Config, db database.DatabaseInterface) *AuthHandler {
	return &AuthHandler{
		config: cfg,
		db:     db,
		jwt:    utils.NewJWTService(cfg.JWTSecret),
	}
}

// HealthCheck 健康检查端点
func (h *AuthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccessResponse(w, map[string]interface{}{
		"message": "Couple Space API running",
	})
}

// Register 用户注册
// 无邀请码时创建新空间；有邀请码时加入对应空间（邀请码即空间ID）。
// 邀请码无效时整个操作被拒绝：不创建空间也不创建用户。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.InviteCode = strings.TrimSpace(req.InviteCode)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		utils.WriteValidationErrorResponse(w, "name, email and password are required")
		return
	}

	// 检查邮箱是否已被注册
	if _, err := h.db.GetUserByEmail(req.Email); err == nil {
		utils.WriteDuplicateEmailResponse(w, "Email already in use")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		fmt.Printf("❌ Register: failed to look up email: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	// 先解析空间：邀请码无效时必须在任何写入之前失败
	var spaceID string
	if req.InviteCode != "" {
		space, err := h.db.GetSpaceByID(req.InviteCode)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				utils.WriteNotFoundResponse(w, "Invalid invite code")
				return
			}
			fmt.Printf("❌ Register: failed to resolve invite code: %v\n", err)
			utils.WriteInternalServerErrorResponse(w, "Internal server error")
			return
		}
		spaceID = space.ID
	} else {
		space := &models.Space{Name: fmt.Sprintf("Cosas de %s", req.Name)}
		if err := h.db.CreateSpace(space); err != nil {
			fmt.Printf("❌ Register: failed to create space: %v\n", err)
			utils.WriteInternalServerErrorResponse(w, "Internal server error")
			return
		}
		spaceID = space.ID
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		fmt.Printf("❌ Register: failed to hash password: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		SpaceID:  spaceID,
	}
	if err := h.db.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			utils.WriteDuplicateEmailResponse(w, "Email already in use")
			return
		}
		fmt.Printf("❌ Register: failed to create user: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.SpaceID)
	if err != nil {
		fmt.Printf("❌ Register: failed to generate token: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteCreatedResponse(w, &models.AuthResponse{
		Token: token,
		User:  user.Public(),
	})
}

// Login 用户登录
// 未知邮箱和密码错误返回完全相同的401，避免账号枚举
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := utils.ParseJSONBody(r, &req); err != nil {
		utils.WriteBadRequestResponse(w, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		utils.WriteValidationErrorResponse(w, "email and password are required")
		return
	}

	user, err := h.db.GetUserByEmail(req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			utils.WriteUnauthorizedResponse(w, "Invalid credentials")
			return
		}
		fmt.Printf("❌ Login: failed to look up user: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.WriteUnauthorizedResponse(w, "Invalid credentials")
		return
	}

	token, err := h.jwt.GenerateToken(user.ID, user.SpaceID)
	if err != nil {
		fmt.Printf("❌ Login: failed to generate token: %v\n", err)
		utils.WriteInternalServerErrorResponse(w, "Internal server error")
		return
	}

	utils.WriteSuccessResponse(w, &models.AuthResponse{
		Token: token,
		User:  user.Public(),
	})
}

// GetInviteCode 返回调用者所在空间的邀请码（即空间ID）
func (h *AuthHandler) GetInviteCode(w http.ResponseWriter, r *http.Request) {
	ident, err := middleware.RequireIdentity(r.Context())
	if err != nil {
		utils.WriteUnauthorizedResponse(w, "Authentication required")
		return
	}

	utils.WriteSuccessResponse(w, map[string]interface{}{
		"inviteCode": ident.SpaceID,
	})
}
