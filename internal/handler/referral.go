package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
	"referral-server/internal/service"
)

type ReferralHandler struct {
	lifecycle *service.LifecycleService
}

func NewReferralHandler(lifecycle *service.LifecycleService) *ReferralHandler {
	return &ReferralHandler{lifecycle: lifecycle}
}

// actorFrom builds the request-scoped actor from the JWT claims the
// auth middleware stored on the context.
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		ID:           middleware.GetUserID(c),
		Name:         middleware.GetUserName(c),
		Email:        middleware.GetUserEmail(c),
		Role:         middleware.GetUserRole(c),
		Organization: middleware.GetUserOrg(c),
	}
}

// writeLifecycleError maps lifecycle errors onto HTTP responses
func writeLifecycleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotEligible):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrStaleState):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrCodeMismatch),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrReasonRequired),
		errors.Is(err, service.ErrNoteRequired),
		errors.Is(err, service.ErrBadSupervisor),
		errors.Is(err, service.ErrSameOrganization):
		response.BadRequest(c, err.Error())
	default:
		response.ServerError(c, "operation failed")
	}
}

// CreateReferralRequest is the referral creation form. The case code
// must be typed twice; a mismatch rejects the request outright.
type CreateReferralRequest struct {
	ReferralTo        string `json:"referral_to" binding:"required"`
	CaseCode          string `json:"case_code" binding:"required"`
	ConfirmCaseCode   string `json:"confirm_case_code" binding:"required"`
	ClientColorCode   string `json:"client_color_code" binding:"required"`
	ClientContactInfo string `json:"client_contact_info" binding:"required"`
	Notes             string `json:"notes"`
	ConsentFormURL    string `json:"consent_form_url"`
}

// DecisionRequest confirms an approve or reject action
type DecisionRequest struct {
	ConfirmReferralCode string `json:"confirm_referral_code" binding:"required"`
	Reason              string `json:"reason"`
}

// AssignRequest names the supervisor for an approved referral
type AssignRequest struct {
	ConfirmReferralCode string `json:"confirm_referral_code" binding:"required"`
	SupervisorID        string `json:"supervisor_id" binding:"required"`
	Notes               string `json:"notes"`
}

// UpdateReferralRequest edits referral details, creator or admin only
type UpdateReferralRequest struct {
	ClientContactInfo string `json:"client_contact_info"`
	Notes             string `json:"notes"`
	ConsentFormURL    string `json:"consent_form_url"`
	ClientColorCode   string `json:"client_color_code"`
}

// DeleteReferralRequest re-confirms the referral code before deletion
type DeleteReferralRequest struct {
	ConfirmReferralCode string `json:"confirm_referral_code" binding:"required"`
}

// Create opens a new referral
func (h *ReferralHandler) Create(c *gin.Context) {
	var req CreateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	referral, err := h.lifecycle.Create(actorFrom(c), service.CreateReferralInput{
		ReferralTo:        req.ReferralTo,
		CaseCode:          req.CaseCode,
		ConfirmCaseCode:   req.ConfirmCaseCode,
		ClientColorCode:   model.ClientColorCode(req.ClientColorCode),
		ClientContactInfo: req.ClientContactInfo,
		Notes:             req.Notes,
		ConsentFormURL:    req.ConsentFormURL,
	})
	if err != nil {
		writeLifecycleError(c, err)
		return
	}

	response.Success(c, referral)
}

// List returns the referrals visible to the caller, filtered and paged
func (h *ReferralHandler) List(c *gin.Context) {
	actor := actorFrom(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	query := model.DB.Model(&model.Referral{})

	switch actor.Role {
	case model.RoleAdministrator:
		// sees everything
	case model.RoleFocalPerson:
		query = query.Where("created_by_org = ? OR referral_to = ?", actor.Organization, actor.Organization)
	case model.RoleCaseSupervisor:
		query = query.Where("assigned_supervisor_id = ?", actor.ID)
	default:
		response.Forbidden(c, "role cannot list referrals")
		return
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if caseStatus := c.Query("case_status"); caseStatus != "" {
		query = query.Where("case_status = ?", caseStatus)
	}
	if org := c.Query("referral_to"); org != "" {
		query = query.Where("referral_to = ?", org)
	}
	if color := c.Query("client_color_code"); color != "" {
		query = query.Where("client_color_code = ?", color)
	}
	if keyword := c.Query("keyword"); keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("case_code LIKE ? OR referral_code LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var referrals []model.Referral
	if err := query.Order("date_of_referral DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&referrals).Error; err != nil {
		response.ServerError(c, "failed to list referrals")
		return
	}

	response.SuccessPage(c, referrals, total, page, pageSize)
}

// Get returns one referral if the caller may see it
func (h *ReferralHandler) Get(c *gin.Context) {
	referral, ok := h.loadVisible(c)
	if !ok {
		return
	}
	response.Success(c, referral)
}

// Update edits referral details, creator or administrator only
func (h *ReferralHandler) Update(c *gin.Context) {
	var req UpdateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	referral, ok := h.loadVisible(c)
	if !ok {
		return
	}

	actor := actorFrom(c)
	if !service.CanModifyReferral(actor, referral) {
		response.Forbidden(c, "only the creator or an administrator may edit a referral")
		return
	}

	updates := map[string]interface{}{}
	if req.ClientContactInfo != "" {
		updates["client_contact_info"] = req.ClientContactInfo
	}
	if req.Notes != "" {
		updates["notes"] = req.Notes
	}
	if req.ConsentFormURL != "" {
		updates["consent_form_url"] = req.ConsentFormURL
	}
	if req.ClientColorCode != "" {
		if !model.ValidColorCode(model.ClientColorCode(req.ClientColorCode)) {
			response.BadRequest(c, "invalid client color code")
			return
		}
		updates["client_color_code"] = req.ClientColorCode
	}

	if len(updates) == 0 {
		response.BadRequest(c, "nothing to update")
		return
	}

	if err := model.DB.Model(referral).Updates(updates).Error; err != nil {
		response.ServerError(c, "failed to update referral")
		return
	}

	response.Success(c, referral)
}

// Delete removes a referral after code confirmation
func (h *ReferralHandler) Delete(c *gin.Context) {
	var req DeleteReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	referral, ok := h.loadVisible(c)
	if !ok {
		return
	}

	if err := h.lifecycle.Delete(actorFrom(c), referral, req.ConfirmReferralCode); err != nil {
		writeLifecycleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "referral deleted", nil)
}

// Approve accepts a waiting referral on behalf of the receiving organization
func (h *ReferralHandler) Approve(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	referral, ok := h.loadVisible(c)
	if !ok {
		return
	}

	if err := h.lifecycle.Approve(actorFrom(c), referral, req.ConfirmReferralCode); err != nil {
		writeLifecycleError(c, err)
		return
	}

	response.Success(c, referral)
}

// Reject declines a waiting referral, a reason is mandatory
func (h *ReferralHandler) Reject(c *gin.Context) {
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	referral, ok := h.loadVisible(c)
	if !ok {
		return
	}

	if err := h.lifecycle.Reject(actorFrom(c), referral, req.ConfirmReferralCode, req.Reason); err != nil {
		writeLifecycleError(c, err)
		return
	}

	response.Success(c, referral)
}

// Assign hands an approved referral to a case supervisor
func (h *ReferralHandler) Assign(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	referral, ok := h.loadVisible(c)
	if !ok {
		return
	}

	var supervisor model.User
	if err := model.DB.First(&supervisor, "id = ?", req.SupervisorID).Error; err != nil {
		response.BadRequest(c, "supervisor not found")
		return
	}

	if err := h.lifecycle.Assign(actorFrom(c), referral, &supervisor, req.ConfirmReferralCode, req.Notes); err != nil {
		writeLifecycleError(c, err)
		return
	}

	response.Success(c, referral)
}

// loadVisible fetches the referral in the path and enforces visibility.
// On failure it writes the response and returns ok=false.
func (h *ReferralHandler) loadVisible(c *gin.Context) (*model.Referral, bool) {
	var referral model.Referral
	if err := model.DB.First(&referral, "id = ?", c.Param("id")).Error; err != nil {
		response.NotFound(c, "referral not found")
		return nil, false
	}

	if !service.CanViewReferral(actorFrom(c), &referral) {
		response.NotFound(c, "referral not found")
		return nil, false
	}

	return &referral, true
}
