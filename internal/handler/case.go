package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
	"referral-server/internal/service"
)

// CaseHandler serves the supervisor-facing case tracking endpoints
type CaseHandler struct {
	lifecycle *service.LifecycleService
}

func NewCaseHandler(lifecycle *service.LifecycleService) *CaseHandler {
	return &CaseHandler{lifecycle: lifecycle}
}

// UpdateCaseStatusRequest changes the working status of an assigned case
type UpdateCaseStatusRequest struct {
	Status          string `json:"status" binding:"required"`
	ConfirmCaseCode string `json:"confirm_case_code" binding:"required"`
	Note            string `json:"note" binding:"required"`
}

// ListMine returns the cases assigned to the calling supervisor
func (h *CaseHandler) ListMine(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := model.DB.Model(&model.Referral{}).
		Where("assigned_supervisor_id = ? AND status = ?", middleware.GetUserID(c), model.StatusAssigned)

	if caseStatus := c.Query("case_status"); caseStatus != "" {
		query = query.Where("case_status = ?", caseStatus)
	}

	var total int64
	query.Count(&total)

	var cases []model.Referral
	if err := query.Order("assigned_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&cases).Error; err != nil {
		response.ServerError(c, "failed to list cases")
		return
	}

	response.SuccessPage(c, cases, total, page, pageSize)
}

// UpdateStatus applies a supervisor progress update to an assigned case
func (h *CaseHandler) UpdateStatus(c *gin.Context) {
	var req UpdateCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	var referral model.Referral
	if err := model.DB.First(&referral, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "case not found")
		return
	}

	actor := actorFrom(c)
	if !service.CanViewReferral(actor, &referral) {
		response.NotFound(c, "case not found")
		return
	}

	err := h.lifecycle.UpdateCaseStatus(actor, &referral, model.CaseStatus(req.Status), req.ConfirmCaseCode, req.Note)
	if err != nil {
		writeLifecycleError(c, err)
		return
	}

	response.Success(c, referral)
}

// History returns the append-only stage history of a case
func (h *CaseHandler) History(c *gin.Context) {
	var referral model.Referral
	if err := model.DB.First(&referral, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "case not found")
		return
	}

	if !service.CanViewReferral(actorFrom(c), &referral) {
		response.NotFound(c, "case not found")
		return
	}

	entries, err := referral.StageEntries()
	if err != nil {
		response.ServerError(c, "failed to read stage history")
		return
	}

	response.Success(c, gin.H{
		"case_code":      referral.CaseCode,
		"case_status":    referral.CaseStatus,
		"progress_stage": referral.ProgressStage,
		"progress":       referral.Progress,
		"history":        entries,
	})
}
