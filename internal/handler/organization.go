package handler

import (
	"github.com/gin-gonic/gin"

	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
)

type OrganizationHandler struct{}

func NewOrganizationHandler() *OrganizationHandler {
	return &OrganizationHandler{}
}

// OrganizationRequest is the create/update payload
type OrganizationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// List returns all organizations
func (h *OrganizationHandler) List(c *gin.Context) {
	var orgs []model.Organization
	if err := model.DB.Order("name ASC").Find(&orgs).Error; err != nil {
		response.ServerError(c, "failed to list organizations")
		return
	}
	response.Success(c, orgs)
}

// Get returns a single organization
func (h *OrganizationHandler) Get(c *gin.Context) {
	var org model.Organization
	if err := model.DB.First(&org, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	response.Success(c, org)
}

// Create adds an organization, names are unique
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var existing model.Organization
	if err := model.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		response.BadRequest(c, "organization name already exists")
		return
	}

	org := model.Organization{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   middleware.GetUserName(c),
		CreatedByID: middleware.GetUserID(c),
	}
	if err := model.DB.Create(&org).Error; err != nil {
		response.ServerError(c, "failed to create organization")
		return
	}

	response.Success(c, org)
}

// Update modifies an organization
func (h *OrganizationHandler) Update(c *gin.Context) {
	var req OrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var org model.Organization
	if err := model.DB.First(&org, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "organization not found")
		return
	}

	if req.Name != org.Name {
		var existing model.Organization
		if err := model.DB.Where("name = ? AND id <> ?", req.Name, org.ID).First(&existing).Error; err == nil {
			response.BadRequest(c, "organization name already exists")
			return
		}
	}

	if err := model.DB.Model(&org).Updates(map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
	}).Error; err != nil {
		response.ServerError(c, "failed to update organization")
		return
	}

	response.Success(c, org)
}

// Delete removes an organization that has no members or pending referrals
func (h *OrganizationHandler) Delete(c *gin.Context) {
	var org model.Organization
	if err := model.DB.First(&org, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "organization not found")
		return
	}

	var memberCount int64
	model.DB.Model(&model.User{}).Where("organization = ?", org.Name).Count(&memberCount)
	if memberCount > 0 {
		response.BadRequest(c, "organization still has members")
		return
	}

	var referralCount int64
	model.DB.Model(&model.Referral{}).
		Where("(referral_to = ? OR created_by_org = ?) AND status = ?", org.Name, org.Name, model.StatusWaiting).
		Count(&referralCount)
	if referralCount > 0 {
		response.BadRequest(c, "organization has pending referrals")
		return
	}

	if err := model.DB.Delete(&org).Error; err != nil {
		response.ServerError(c, "failed to delete organization")
		return
	}

	response.SuccessWithMessage(c, "organization deleted", nil)
}
