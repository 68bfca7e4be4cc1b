package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-server/internal/config"
	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// CreateUserRequest is the payload for creating a user account
type CreateUserRequest struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	Role         string `json:"role" binding:"required"`
	Organization string `json:"organization" binding:"required"`
}

// UpdateUserRequest is the payload for updating a user account
type UpdateUserRequest struct {
	Name         string `json:"name"`
	Role         string `json:"role"`
	Organization string `json:"organization"`
	Status       string `json:"status"`
	Password     string `json:"password"`
}

// List returns users with optional filters, paged
func (h *UserHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := model.DB.Model(&model.User{})

	if org := c.Query("organization"); org != "" {
		query = query.Where("organization = ?", org)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := c.Query("keyword"); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("name LIKE ? OR email LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var users []model.User
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&users).Error; err != nil {
		response.ServerError(c, "failed to list users")
		return
	}

	response.SuccessPage(c, users, total, page, pageSize)
}

// ListSupervisors returns active case supervisors of an organization
func (h *UserHandler) ListSupervisors(c *gin.Context) {
	org := c.Query("organization")
	if org == "" {
		org = middleware.GetUserOrg(c)
	}

	var supervisors []model.User
	if err := model.DB.
		Where("organization = ? AND role = ? AND status = ?", org, model.RoleCaseSupervisor, model.UserStatusActive).
		Order("name ASC").
		Find(&supervisors).Error; err != nil {
		response.ServerError(c, "failed to list supervisors")
		return
	}

	response.Success(c, supervisors)
}

// Get returns a single user
func (h *UserHandler) Get(c *gin.Context) {
	var user model.User
	if err := model.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}
	response.Success(c, user)
}

// Create adds a user account
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	cfg := config.Get()
	if len(req.Password) < cfg.Security.PasswordMinLength {
		response.BadRequest(c, fmt.Sprintf("password must be at least %d characters", cfg.Security.PasswordMinLength))
		return
	}

	var existing model.User
	if err := model.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		response.BadRequest(c, "email is already registered")
		return
	}

	var role model.Role
	if err := model.DB.Where("name = ?", req.Role).First(&role).Error; err != nil {
		response.BadRequest(c, "unknown role: "+req.Role)
		return
	}

	var org model.Organization
	if err := model.DB.Where("name = ?", req.Organization).First(&org).Error; err != nil {
		response.BadRequest(c, "unknown organization: "+req.Organization)
		return
	}

	user := model.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		Organization: req.Organization,
		Status:       model.UserStatusActive,
		CreatedBy:    middleware.GetUserName(c),
	}
	if err := user.SetPassword(req.Password); err != nil {
		response.ServerError(c, "failed to hash password")
		return
	}

	if err := model.DB.Create(&user).Error; err != nil {
		response.ServerError(c, "failed to create user")
		return
	}

	response.Success(c, user)
}

// Update modifies a user account
func (h *UserHandler) Update(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var user model.User
	if err := model.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}

	updates := map[string]interface{}{}
	if req.Name != "" {
		updates["name"] = req.Name
	}
	if req.Role != "" {
		var role model.Role
		if err := model.DB.Where("name = ?", req.Role).First(&role).Error; err != nil {
			response.BadRequest(c, "unknown role: "+req.Role)
			return
		}
		updates["role"] = req.Role
	}
	if req.Organization != "" {
		var org model.Organization
		if err := model.DB.Where("name = ?", req.Organization).First(&org).Error; err != nil {
			response.BadRequest(c, "unknown organization: "+req.Organization)
			return
		}
		updates["organization"] = req.Organization
	}
	if req.Status != "" {
		if req.Status != string(model.UserStatusActive) && req.Status != string(model.UserStatusDisabled) {
			response.BadRequest(c, "invalid status")
			return
		}
		updates["status"] = req.Status
	}
	if req.Password != "" {
		cfg := config.Get()
		if len(req.Password) < cfg.Security.PasswordMinLength {
			response.BadRequest(c, fmt.Sprintf("password must be at least %d characters", cfg.Security.PasswordMinLength))
			return
		}
		if err := user.SetPassword(req.Password); err != nil {
			response.ServerError(c, "failed to hash password")
			return
		}
		updates["password"] = user.Password
	}

	if len(updates) == 0 {
		response.BadRequest(c, "nothing to update")
		return
	}

	if err := model.DB.Model(&user).Updates(updates).Error; err != nil {
		response.ServerError(c, "failed to update user")
		return
	}

	response.Success(c, user)
}

// Delete removes a user account, a user cannot delete themselves
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == middleware.GetUserID(c) {
		response.BadRequest(c, "cannot delete your own account")
		return
	}

	var user model.User
	if err := model.DB.First(&user, "id = ?", id).Error; err != nil {
		response.NotFound(c, "user not found")
		return
	}

	if err := model.DB.Delete(&user).Error; err != nil {
		response.ServerError(c, "failed to delete user")
		return
	}

	response.SuccessWithMessage(c, "user deleted", nil)
}
