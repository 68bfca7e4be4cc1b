package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
	"referral-server/internal/pkg/utils"
)

type WebhookHandler struct{}

func NewWebhookHandler() *WebhookHandler {
	return &WebhookHandler{}
}

// WebhookRequest is the subscription create/update payload
type WebhookRequest struct {
	Organization string   `json:"organization" binding:"required"`
	URL          string   `json:"url" binding:"required,url"`
	Events       []string `json:"events" binding:"required"`
}

// List returns all webhook subscriptions
func (h *WebhookHandler) List(c *gin.Context) {
	var webhooks []model.Webhook
	if err := model.DB.Order("created_at DESC").Find(&webhooks).Error; err != nil {
		response.ServerError(c, "failed to list webhooks")
		return
	}
	response.Success(c, webhooks)
}

// Create registers a webhook and returns its signing secret once
func (h *WebhookHandler) Create(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var org model.Organization
	if err := model.DB.Where("name = ?", req.Organization).First(&org).Error; err != nil {
		response.BadRequest(c, "unknown organization: "+req.Organization)
		return
	}

	webhook := model.Webhook{
		Organization: req.Organization,
		URL:          req.URL,
		Secret:       utils.GenerateWebhookSecret(),
		Events:       strings.Join(req.Events, ","),
		Status:       "active",
	}
	if err := model.DB.Create(&webhook).Error; err != nil {
		response.ServerError(c, "failed to create webhook")
		return
	}

	// the secret is only shown at creation time
	response.Success(c, gin.H{
		"webhook": webhook,
		"secret":  webhook.Secret,
	})
}

// Update modifies a webhook subscription
func (h *WebhookHandler) Update(c *gin.Context) {
	var req WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var webhook model.Webhook
	if err := model.DB.First(&webhook, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "webhook not found")
		return
	}

	if err := model.DB.Model(&webhook).Updates(map[string]interface{}{
		"organization": req.Organization,
		"url":          req.URL,
		"events":       strings.Join(req.Events, ","),
	}).Error; err != nil {
		response.ServerError(c, "failed to update webhook")
		return
	}

	response.Success(c, webhook)
}

// Toggle flips a webhook between active and disabled
func (h *WebhookHandler) Toggle(c *gin.Context) {
	var webhook model.Webhook
	if err := model.DB.First(&webhook, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "webhook not found")
		return
	}

	status := "active"
	if webhook.Status == "active" {
		status = "disabled"
	}
	if err := model.DB.Model(&webhook).Update("status", status).Error; err != nil {
		response.ServerError(c, "failed to update webhook")
		return
	}

	webhook.Status = status
	response.Success(c, webhook)
}

// Delete removes a webhook subscription
func (h *WebhookHandler) Delete(c *gin.Context) {
	var webhook model.Webhook
	if err := model.DB.First(&webhook, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "webhook not found")
		return
	}

	if err := model.DB.Delete(&webhook).Error; err != nil {
		response.ServerError(c, "failed to delete webhook")
		return
	}

	response.SuccessWithMessage(c, "webhook deleted", nil)
}

// Logs returns recent delivery attempts for one webhook
func (h *WebhookHandler) Logs(c *gin.Context) {
	var logs []model.WebhookLog
	if err := model.DB.Where("webhook_id = ?", c.Param("id")).
		Order("created_at DESC").Limit(100).
		Find(&logs).Error; err != nil {
		response.ServerError(c, "failed to list webhook logs")
		return
	}
	response.Success(c, logs)
}
