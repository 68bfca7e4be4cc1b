package service

import (
	"fmt"
	"log"

	"referral-server/internal/model"
)

// Notifier fans out lifecycle events to in-app notifications, email and
// webhooks. Delivery is best-effort: failures are logged and never block
// or roll back the transition that triggered them.
type Notifier struct {
	email   *EmailService
	webhook *WebhookService
}

// NewNotifier creates the dispatcher
func NewNotifier() *Notifier {
	return &Notifier{
		email:   NewEmailService(),
		webhook: NewWebhookService(),
	}
}

// ReferralCreated notifies the receiving organization of a new referral
func (n *Notifier) ReferralCreated(r *model.Referral) {
	recipients := fallbackToEveryone(n.focalPersonsOf(r.ReferralTo), n.allActiveUsers)

	title := "New Case Referral"
	content := fmt.Sprintf("A new referral (case %s) was sent to %s by %s (%s).",
		r.CaseCode, r.ReferralTo, r.CreatedBy, r.CreatedByOrg)
	n.createInAppNotifications(recipients, r.ID, "referral_created", title, content)

	go func() {
		if emails := userEmails(recipients); len(emails) > 0 {
			err := n.email.SendReferralReceived(emails, ReferralReceivedData{
				CaseCode:          r.CaseCode,
				ClientColorCode:   string(r.ClientColorCode),
				ClientContactInfo: r.ClientContactInfo,
				Notes:             r.Notes,
				ConsentFormURL:    r.ConsentFormURL,
				CreatedBy:         r.CreatedBy,
				CreatedByOrg:      r.CreatedByOrg,
			})
			if err != nil {
				log.Printf("[Notifier] referral-received email failed: %v", err)
			}
		}

		if err := n.webhook.SendWebhook(r.ReferralTo, EventReferralCreated, referralEventData(r)); err != nil {
			log.Printf("[Notifier] referral.created webhook failed: %v", err)
		}
	}()
}

// ReferralDecided notifies the creator's organization and the deciding
// organization of an approval or rejection
func (n *Notifier) ReferralDecided(r *model.Referral) {
	var recipients []model.User
	if r.CreatedByID != "" {
		var creator model.User
		if err := model.DB.First(&creator, "id = ?", r.CreatedByID).Error; err == nil {
			recipients = append(recipients, creator)
		}
	}
	recipients = append(recipients, n.focalPersonsOf(r.CreatedByOrg)...)
	recipients = append(recipients, n.focalPersonsOf(r.ReferralTo)...)
	recipients = dedupeUsers(recipients, "")

	event := EventReferralApproved
	title := "Referral Approved"
	content := fmt.Sprintf("Your referral (case %s) was approved by %s.", r.CaseCode, r.ReferralTo)
	if r.Status == model.StatusRejected {
		event = EventReferralRejected
		title = "Referral Rejected"
		content = fmt.Sprintf("Your referral (case %s) was rejected by %s. Reason: %s",
			r.CaseCode, r.ReferralTo, r.RejectionNotes)
	}
	n.createInAppNotifications(recipients, r.ID, "referral_decided", title, content)

	go func() {
		if err := n.webhook.SendWebhook(r.CreatedByOrg, event, referralEventData(r)); err != nil {
			log.Printf("[Notifier] %s webhook failed: %v", event, err)
		}
	}()
}

// SupervisorAssigned notifies the supervisor who was just assigned the case
func (n *Notifier) SupervisorAssigned(r *model.Referral) {
	title := "New Case Assigned"
	content := fmt.Sprintf("You have been assigned case %s by %s (%s).",
		r.CaseCode, r.AssignedBy, r.AssignedByOrg)
	if r.AssignedSupervisorID != "" {
		n.createInAppNotifications([]model.User{{
			BaseModel: model.BaseModel{ID: r.AssignedSupervisorID},
		}}, r.ID, "supervisor_assigned", title, content)
	}

	go func() {
		if r.AssignedSupervisorEmail != "" {
			err := n.email.SendSupervisorAssigned(r.AssignedSupervisorEmail, SupervisorAssignedData{
				CaseCode:          r.CaseCode,
				ClientColorCode:   string(r.ClientColorCode),
				ClientContactInfo: r.ClientContactInfo,
				Notes:             r.Notes,
				ConsentFormURL:    r.ConsentFormURL,
				AssignedBy:        r.AssignedBy,
				AssignedByOrg:     r.AssignedByOrg,
			})
			if err != nil {
				log.Printf("[Notifier] supervisor-assigned email failed: %v", err)
			}
		}

		if err := n.webhook.SendWebhook(r.ReferralTo, EventReferralAssigned, referralEventData(r)); err != nil {
			log.Printf("[Notifier] referral.assigned webhook failed: %v", err)
		}
	}()
}

// CaseUpdated broadcasts a case status change to every active user
// except the supervisor who made it
func (n *Notifier) CaseUpdated(r *model.Referral, actor Actor) {
	recipients := dedupeUsers(n.allActiveUsers(), actor.ID)

	title := "Case Status Updated"
	content := fmt.Sprintf("Case %s is now %q (updated by %s).", r.CaseCode, r.CaseStatus, actor.Name)
	n.createInAppNotifications(recipients, r.ID, "case_updated", title, content)

	go func() {
		if emails := userEmails(recipients); len(emails) > 0 {
			err := n.email.SendCaseUpdate(emails, CaseUpdateData{
				CaseCode:      r.CaseCode,
				NewStatus:     string(r.CaseStatus),
				Note:          r.CaseStatusNote,
				UpdatedBy:     actor.Name,
				ReferredToOrg: r.ReferralTo,
			})
			if err != nil {
				log.Printf("[Notifier] case-update email failed: %v", err)
			}
		}

		if err := n.webhook.SendWebhook(r.CreatedByOrg, EventCaseUpdated, referralEventData(r)); err != nil {
			log.Printf("[Notifier] case.updated webhook failed: %v", err)
		}
	}()
}

// focalPersonsOf loads the active focal persons of an organization
func (n *Notifier) focalPersonsOf(organization string) []model.User {
	var users []model.User
	model.DB.Where("organization = ? AND role = ? AND status = ?",
		organization, model.RoleFocalPerson, model.UserStatusActive).Find(&users)
	return users
}

func (n *Notifier) allActiveUsers() []model.User {
	var users []model.User
	model.DB.Where("status = ?", model.UserStatusActive).Find(&users)
	return users
}

// fallbackToEveryone returns the focal persons if any exist, otherwise the
// full active user list so a referral never lands unannounced
func fallbackToEveryone(focal []model.User, everyone func() []model.User) []model.User {
	if len(focal) > 0 {
		return focal
	}
	return everyone()
}

func (n *Notifier) createInAppNotifications(recipients []model.User, referralID, notifType, title, content string) {
	for _, u := range recipients {
		notification := model.Notification{
			UserID:     u.ID,
			ReferralID: referralID,
			Type:       notifType,
			Title:      title,
			Content:    content,
		}
		if err := model.DB.Create(&notification).Error; err != nil {
			log.Printf("[Notifier] failed to create notification for user %s: %v", u.ID, err)
		}
	}
}

func userEmails(users []model.User) []string {
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			emails = append(emails, u.Email)
		}
	}
	return emails
}

// dedupeUsers removes duplicate users and the acting user from the list
func dedupeUsers(users []model.User, excludeID string) []model.User {
	seen := make(map[string]bool, len(users))
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		if u.ID == excludeID || seen[u.ID] {
			continue
		}
		seen[u.ID] = true
		out = append(out, u)
	}
	return out
}

func referralEventData(r *model.Referral) map[string]interface{} {
	return map[string]interface{}{
		"referral_id":   r.ID,
		"referral_code": r.ReferralCode,
		"case_code":     r.CaseCode,
		"referral_to":   r.ReferralTo,
		"status":        r.Status,
		"case_status":   r.CaseStatus,
		"progress":      r.Progress,
	}
}
