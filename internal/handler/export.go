package handler

import (
	"encoding/csv"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"referral-server/internal/middleware"
	"referral-server/internal/model"
	"referral-server/internal/pkg/response"
)

type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

// visibleReferrals loads the referrals the caller may export, with filters
func visibleReferrals(c *gin.Context) []model.Referral {
	actor := actorFrom(c)
	query := model.DB.Model(&model.Referral{})

	switch actor.Role {
	case model.RoleAdministrator:
	case model.RoleFocalPerson:
		query = query.Where("created_by_org = ? OR referral_to = ?", actor.Organization, actor.Organization)
	case model.RoleCaseSupervisor:
		query = query.Where("assigned_supervisor_id = ?", actor.ID)
	default:
		return nil
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if caseStatus := c.Query("case_status"); caseStatus != "" {
		query = query.Where("case_status = ?", caseStatus)
	}

	var referrals []model.Referral
	query.Order("date_of_referral DESC").Find(&referrals)
	return referrals
}

var referralExportHeader = []string{
	"Referral Code", "Case Code", "Referred To", "Color Code", "Status",
	"Case Status", "Progress", "Created By", "Created By Org",
	"Assigned Supervisor", "Date of Referral",
}

func referralExportRow(r model.Referral) []string {
	return []string{
		r.ReferralCode,
		r.CaseCode,
		r.ReferralTo,
		string(r.ClientColorCode),
		string(r.Status),
		string(r.CaseStatus),
		fmt.Sprintf("%.0f%%", r.Progress),
		r.CreatedBy,
		r.CreatedByOrg,
		r.AssignedSupervisorName,
		r.DateOfReferral.Format("2006-01-02"),
	}
}

// ExportReferralsCSV streams the caller's visible referrals as CSV
func (h *ExportHandler) ExportReferralsCSV(c *gin.Context) {
	referrals := visibleReferrals(c)

	filename := fmt.Sprintf("referrals_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	// BOM keeps Excel happy with UTF-8
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(referralExportHeader)
	for _, r := range referrals {
		writer.Write(referralExportRow(r))
	}
}

// ExportReferralsXLSX streams the caller's visible referrals as a workbook
func (h *ExportHandler) ExportReferralsXLSX(c *gin.Context) {
	referrals := visibleReferrals(c)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Referrals"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range referralExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, title)
	}

	for row, r := range referrals {
		values := referralExportRow(r)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("referrals_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		response.ServerError(c, "failed to write workbook")
	}
}

// ExportCasesCSV streams assigned cases with their stage history as CSV
func (h *ExportHandler) ExportCasesCSV(c *gin.Context) {
	actor := actorFrom(c)
	query := model.DB.Model(&model.Referral{}).Where("status = ?", model.StatusAssigned)

	switch actor.Role {
	case model.RoleAdministrator:
	case model.RoleFocalPerson:
		query = query.Where("created_by_org = ? OR referral_to = ?", actor.Organization, actor.Organization)
	case model.RoleCaseSupervisor:
		query = query.Where("assigned_supervisor_id = ?", actor.ID)
	default:
		response.Forbidden(c, "role cannot export cases")
		return
	}

	var cases []model.Referral
	query.Order("assigned_at DESC").Find(&cases)

	filename := fmt.Sprintf("cases_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{
		"Case Code", "Referred To", "Supervisor", "Case Status",
		"Progress Stage", "Progress", "Last Note", "Updated At",
	})
	for _, r := range cases {
		writer.Write([]string{
			r.CaseCode,
			r.ReferralTo,
			r.AssignedSupervisorName,
			string(r.CaseStatus),
			fmt.Sprintf("%d", r.ProgressStage),
			fmt.Sprintf("%.0f%%", r.Progress),
			r.CaseStatusNote,
			r.UpdatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportAuditLogsCSV streams the audit trail, administrators only
func (h *ExportHandler) ExportAuditLogsCSV(c *gin.Context) {
	if middleware.GetUserRole(c) != model.RoleAdministrator {
		response.Forbidden(c, "administrator access required")
		return
	}

	query := model.DB.Model(&model.AuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var logs []model.AuditLog
	query.Order("created_at DESC").Limit(10000).Find(&logs)

	filename := fmt.Sprintf("audit_logs_%s.csv", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{
		"Time", "User", "Action", "Resource", "Resource ID", "IP", "Response Code",
	})
	for _, entry := range logs {
		writer.Write([]string{
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.UserEmail,
			entry.Action,
			entry.Resource,
			entry.ResourceID,
			entry.IPAddress,
			fmt.Sprintf("%d", entry.ResponseCode),
		})
	}
}
