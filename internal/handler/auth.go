package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"referral-server/internal/config"
	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/crypto"
	"referral-server/internal/pkg/response"
	"referral-server/internal/service"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest is the password change payload
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// Login authenticates a user and issues a JWT
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	clientIP := c.ClientIP()
	loginLimiter := service.GetLoginLimiter()
	ipLimiter := service.GetIPLoginLimiter()

	if locked, remaining := ipLimiter.IsLocked(clientIP); locked {
		response.Error(c, 429, fmt.Sprintf("too many attempts from this address, try again in %d minutes", int(remaining.Minutes())+1))
		return
	}

	if locked, remaining := loginLimiter.IsLocked(req.Email); locked {
		response.Error(c, 429, fmt.Sprintf("account temporarily locked, try again in %d minutes", int(remaining.Minutes())+1))
		return
	}

	var user model.User
	if err := model.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		loginLimiter.RecordFailure(req.Email)
		ipLimiter.RecordFailure(clientIP)
		response.Unauthorized(c, "invalid email or password")
		return
	}

	if user.Status != model.UserStatusActive {
		response.Forbidden(c, "account is disabled")
		return
	}

	if !user.CheckPassword(req.Password) {
		loginLimiter.RecordFailure(req.Email)
		ipLimiter.RecordFailure(clientIP)
		remaining := loginLimiter.GetRemainingAttempts(req.Email)
		response.Unauthorized(c, fmt.Sprintf("invalid email or password, %d attempts remaining", remaining))
		return
	}

	loginLimiter.RecordSuccess(req.Email)
	ipLimiter.RecordSuccess(clientIP)

	now := time.Now()
	model.DB.Model(&user).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": clientIP,
	})

	cfg := config.Get()
	token, err := crypto.GenerateToken(user.ID, user.Email, user.Name, user.Role, user.Organization, cfg.JWT.Secret, cfg.JWT.ExpireHours)
	if err != nil {
		response.ServerError(c, "failed to generate token")
		return
	}

	response.Success(c, gin.H{
		"token": token,
		"user": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"name":         user.Name,
			"role":         user.Role,
			"organization": user.Organization,
		},
	})
}

// GetProfile returns the authenticated user
func (h *AuthHandler) GetProfile(c *gin.Context) {
	var user model.User
	if err := model.DB.First(&user, "id = ?", middleware.GetUserID(c)).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

// ChangePassword updates the authenticated user's password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	cfg := config.Get()
	if len(req.NewPassword) < cfg.Security.PasswordMinLength {
		response.BadRequest(c, fmt.Sprintf("password must be at least %d characters", cfg.Security.PasswordMinLength))
		return
	}

	var user model.User
	if err := model.DB.First(&user, "id = ?", middleware.GetUserID(c)).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}

	if !user.CheckPassword(req.OldPassword) {
		response.BadRequest(c, "current password is incorrect")
		return
	}

	if err := user.SetPassword(req.NewPassword); err != nil {
		response.ServerError(c, "failed to update password")
		return
	}

	if err := model.DB.Model(&user).Update("password", user.Password).Error; err != nil {
		response.ServerError(c, "failed to update password")
		return
	}

	response.SuccessWithMessage(c, "password updated", nil)
}
