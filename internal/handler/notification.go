package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
)

type NotificationHandler struct{}

func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := model.DB.Model(&model.Notification{}).
		Where("user_id = ?", middleware.GetUserID(c))

	if c.Query("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var notifications []model.Notification
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&notifications).Error; err != nil {
		response.ServerError(c, "failed to list notifications")
		return
	}

	response.SuccessPage(c, notifications, total, page, pageSize)
}

// UnreadCount returns the caller's unread notification count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	var count int64
	model.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", middleware.GetUserID(c), false).
		Count(&count)
	response.Success(c, gin.H{"count": count})
}

// MarkRead marks one of the caller's notifications as read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	res := model.DB.Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), middleware.GetUserID(c)).
		Update("is_read", true)
	if res.Error != nil {
		response.ServerError(c, "failed to mark notification")
		return
	}
	if res.RowsAffected == 0 {
		response.NotFound(c, "notification not found")
		return
	}
	response.SuccessWithMessage(c, "notification marked as read", nil)
}

// MarkAllRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := model.DB.Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", middleware.GetUserID(c), false).
		Update("is_read", true).Error; err != nil {
		response.ServerError(c, "failed to mark notifications")
		return
	}
	response.SuccessWithMessage(c, "all notifications marked as read", nil)
}
