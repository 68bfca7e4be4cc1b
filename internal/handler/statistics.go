package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
)

type StatisticsHandler struct{}

func NewStatisticsHandler() *StatisticsHandler {
	return &StatisticsHandler{}
}

// Dashboard returns the headline counts for the admin dashboard
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	var totalReferrals int64
	model.DB.Model(&model.Referral{}).Count(&totalReferrals)

	var waiting, approved, rejected, assigned int64
	model.DB.Model(&model.Referral{}).Where("status = ?", model.StatusWaiting).Count(&waiting)
	model.DB.Model(&model.Referral{}).Where("status = ?", model.StatusApproved).Count(&approved)
	model.DB.Model(&model.Referral{}).Where("status = ?", model.StatusRejected).Count(&rejected)
	model.DB.Model(&model.Referral{}).Where("status = ?", model.StatusAssigned).Count(&assigned)

	var inProgress, onHold, dismissed, closed int64
	model.DB.Model(&model.Referral{}).
		Where("status = ? AND progress_stage > 0 AND case_status NOT IN ?",
			model.StatusAssigned,
			[]string{string(model.CaseStatusOnHold), string(model.CaseDismissed), string(model.CaseClosed)}).
		Count(&inProgress)
	model.DB.Model(&model.Referral{}).Where("case_status = ?", model.CaseStatusOnHold).Count(&onHold)
	model.DB.Model(&model.Referral{}).Where("case_status = ?", model.CaseDismissed).Count(&dismissed)
	model.DB.Model(&model.Referral{}).Where("case_status = ?", model.CaseClosed).Count(&closed)

	var urgent int64
	model.DB.Model(&model.Referral{}).
		Where("client_color_code = ? AND status IN ?", model.ColorRed,
			[]string{string(model.StatusWaiting), string(model.StatusApproved), string(model.StatusAssigned)}).
		Count(&urgent)

	var totalUsers, totalOrgs int64
	model.DB.Model(&model.User{}).Count(&totalUsers)
	model.DB.Model(&model.Organization{}).Count(&totalOrgs)

	today := time.Now().Truncate(24 * time.Hour)
	var todayReferrals int64
	model.DB.Model(&model.Referral{}).Where("created_at >= ?", today).Count(&todayReferrals)

	response.Success(c, gin.H{
		"referrals": gin.H{
			"total":     totalReferrals,
			"waiting":   waiting,
			"approved":  approved,
			"rejected":  rejected,
			"assigned":  assigned,
			"urgent":    urgent,
			"today_new": todayReferrals,
		},
		"cases": gin.H{
			"in_progress": inProgress,
			"on_hold":     onHold,
			"dismissed":   dismissed,
			"closed":      closed,
		},
		"users":         totalUsers,
		"organizations": totalOrgs,
	})
}

// ByOrganization returns referral counts grouped by receiving organization
func (h *StatisticsHandler) ByOrganization(c *gin.Context) {
	type OrgCount struct {
		Organization string `json:"organization"`
		Count        int64  `json:"count"`
	}

	var results []OrgCount
	model.DB.Model(&model.Referral{}).
		Select("referral_to as organization, COUNT(*) as count").
		Group("referral_to").
		Order("count DESC").
		Scan(&results)

	response.Success(c, results)
}

// ReferralTrend returns daily referral counts for the last N days (default 30)
func (h *StatisticsHandler) ReferralTrend(c *gin.Context) {
	days := 30
	if d := c.Query("days"); d != "" {
		if _, err := fmt.Sscanf(d, "%d", &days); err != nil || days < 1 || days > 365 {
			days = 30
		}
	}

	type DayCount struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	var results []DayCount
	model.DB.Model(&model.Referral{}).
		Select("DATE(date_of_referral) as date, COUNT(*) as count").
		Where("date_of_referral >= ?", time.Now().AddDate(0, 0, -days)).
		Group("DATE(date_of_referral)").
		Order("date ASC").
		Scan(&results)

	response.Success(c, results)
}
