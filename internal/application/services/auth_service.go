package services

import (
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/logging"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/observability/performance"
	"github.com/pulsedeskhq/pulsedesk-go/internal/infrastructure/security"
	"github.com/pulsedeskhq/pulsedesk-go/pkg/config"
)

// AuthService handles admin authentication and JWT operations
type AuthService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthService {
	return &AuthService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthenticateAdmin validates the admin credential and generates a JWT
func (a *AuthService) AuthenticateAdmin(password string) *AuthResult {
	marker := a.perfTracker.StartOperation("auth:admin_login", "system")
	defer a.perfTracker.CompleteOperation(marker)

	var role string

	if config.AdminPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(config.AdminPassword), []byte(password)); err == nil {
			role = "admin"
		}
	}

	// Fallback for plaintext passwords during transition/testing
	if role == "" && config.AdminPassword != "" && password == config.AdminPassword {
		role = "admin"
	}

	if role == "" {
		marker.SetSuccess(false)
		a.logger.Auth().Warn("Admin authentication failed")
		return &AuthResult{
			Success: false,
			Error:   "Invalid credentials",
		}
	}

	token, err := security.GenerateAdminToken(config.JWTSecret, config.TokenLifetime)
	if err != nil {
		marker.SetError(err)
		a.logger.Auth().Error("Token generation failed", "error", err.Error())
		return &AuthResult{Success: false, Error: "Token generation failed"}
	}

	a.logger.Auth().Info("Admin authenticated", "role", role)
	return &AuthResult{Token: token, Role: role, Success: true}
}

// ValidateAdminToken checks if a token belongs to an admin session
func (a *AuthService) ValidateAdminToken(tokenString string) bool {
	if tokenString == "" {
		return false
	}

	claims, err := security.ValidateJWT(tokenString, config.JWTSecret)
	if err != nil {
		return false
	}

	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != "admin_auth" {
		return false
	}

	tokenRole, ok := claims["role"].(string)
	return ok && tokenRole == "admin"
}

// TokenInfo holds information about a decoded token
type TokenInfo struct {
	Valid  bool          `json:"valid"`
	Claims jwt.MapClaims `json:"claims,omitempty"`
	Role   string        `json:"role,omitempty"`
}

// GetTokenInfo extracts information from a JWT token without validating permissions
func (a *AuthService) GetTokenInfo(tokenString string) *TokenInfo {
	if tokenString == "" {
		return &TokenInfo{Valid: false}
	}

	claims, err := security.ValidateJWT(tokenString, config.JWTSecret)
	if err != nil {
		return &TokenInfo{Valid: false}
	}

	info := &TokenInfo{Valid: true, Claims: claims}
	if role, ok := claims["role"].(string); ok {
		info.Role = role
	}
	return info
}
