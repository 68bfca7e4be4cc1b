package handler

import (
	"github.com/gin-gonic/gin"

	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
)

type RoleHandler struct{}

func NewRoleHandler() *RoleHandler {
	return &RoleHandler{}
}

// RoleRequest is the create/update payload
type RoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// List returns all roles
func (h *RoleHandler) List(c *gin.Context) {
	var roles []model.Role
	if err := model.DB.Order("name ASC").Find(&roles).Error; err != nil {
		response.ServerError(c, "failed to list roles")
		return
	}
	response.Success(c, roles)
}

// Create adds a custom role
func (h *RoleHandler) Create(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var existing model.Role
	if err := model.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		response.BadRequest(c, "role name already exists")
		return
	}

	role := model.Role{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   middleware.GetUserName(c),
	}
	if err := model.DB.Create(&role).Error; err != nil {
		response.ServerError(c, "failed to create role")
		return
	}

	response.Success(c, role)
}

// Update modifies a custom role, the built-in roles are locked
func (h *RoleHandler) Update(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var role model.Role
	if err := model.DB.First(&role, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "role not found")
		return
	}

	if model.IsDefaultRole(role.Name) {
		response.Forbidden(c, "built-in roles cannot be modified")
		return
	}

	if err := model.DB.Model(&role).Updates(map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}).Error; err != nil {
		response.ServerError(c, "failed to update role")
		return
	}

	response.Success(c, role)
}

// Delete removes a custom role, the built-in roles are locked
func (h *RoleHandler) Delete(c *gin.Context) {
	var role model.Role
	if err := model.DB.First(&role, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "role not found")
		return
	}

	if model.IsDefaultRole(role.Name) {
		response.Forbidden(c, "built-in roles cannot be deleted")
		return
	}

	var userCount int64
	model.DB.Model(&model.User{}).Where("role = ?", role.Name).Count(&userCount)
	if userCount > 0 {
		response.BadRequest(c, "role is still assigned to users")
		return
	}

	if err := model.DB.Delete(&role).Error; err != nil {
		response.ServerError(c, "failed to delete role")
		return
	}

	response.SuccessWithMessage(c, "role deleted", nil)
}
