package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"couple-space-backend/pkg/models"
)

// TokenValidity 令牌有效期（7天）
const TokenValidity = 7 * 24 * time.Hour

// JWTService JWT服务
type JWTService struct {
	secretKey []byte
}

// NewJWTService 创建JWT服务
func NewJWTService(secretKey string) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
	}
}

// GenerateToken 生成携带租户身份的令牌 {userId, spaceId}
func (j *JWTService) GenerateToken(userID, spaceID string) (string, error) {
	now := time.Now()
	claims := &models.TokenClaims{
		UserID:  userID,
		SpaceID: spaceID,
		Exp:     now.Add(TokenValidity).Unix(),
		Iat:     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken 验证令牌并返回声明
func (j *JWTService) ValidateToken(tokenString string) (*models.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 验证签名方法
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(*models.TokenClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	// 检查是否过期
	if time.Now().Unix() > claims.Exp {
		return nil, fmt.Errorf("token expired")
	}

	return claims, nil
}

// ExtractIdentity 从令牌中提取租户身份
func (j *JWTService) ExtractIdentity(tokenString string) (*models.Identity, error) {
	claims, err := j.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	return &models.Identity{
		UserID:  claims.UserID,
		SpaceID: claims.SpaceID,
	}, nil
}
