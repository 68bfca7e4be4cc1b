package service

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"referral-server/internal/config"
)

// EmailService sends notification mail over SMTP
type EmailService struct {
	enabled  bool
	host     string
	port     int
	username string
	password string
	from     string
}

// NewEmailService builds the mailer from configuration
func NewEmailService() *EmailService {
	cfg := config.Get()
	return &EmailService{
		enabled:  cfg.Email.Enabled,
		host:     cfg.Email.SMTPHost,
		port:     cfg.Email.SMTPPort,
		username: cfg.Email.Username,
		password: cfg.Email.Password,
		from:     cfg.Email.From,
	}
}

// SendEmail delivers one message to the given recipients
func (s *EmailService) SendEmail(to []string, subject, body string) error {
	if !s.enabled || s.host == "" {
		return fmt.Errorf("email service is not configured")
	}
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, strings.Join(to, ", "), subject, body)

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	if s.port == 465 {
		return s.sendEmailTLS(to, msg)
	}

	return smtp.SendMail(addr, auth, s.from, to, []byte(msg))
}

// sendEmailTLS delivers over an implicit-TLS connection
func (s *EmailService) sendEmailTLS(to []string, msg string) error {
	tlsConfig := &tls.Config{
		ServerName: s.host,
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err = client.Auth(auth); err != nil {
		return err
	}

	if err = client.Mail(s.from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(msg)); err != nil {
		return err
	}

	return w.Close()
}

const referralReceivedTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #004085; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 20px; text-align: center; color: #999; font-size: 12px; }
        .urgent { color: #ff4d4f; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Referral Received</h1>
        </div>
        <div class="content">
            <p><strong>Referred From:</strong> {{.CreatedByOrg}} (by {{.CreatedBy}})</p>
            <ul>
                <li>Case Code: {{.CaseCode}}</li>
                <li>Client Color Code: <span class="urgent">{{.ClientColorCode}}</span></li>
                <li>Client Contact: {{.ClientContactInfo}}</li>
                <li>Notes: {{.Notes}}</li>
            </ul>
            {{if .ConsentFormURL}}<p><a href="{{.ConsentFormURL}}">View Consent Form</a></p>{{end}}
            <p>Please review this referral promptly.</p>
        </div>
        <div class="footer">
            <p>This is an automated notification from the GBV Referral System.</p>
        </div>
    </div>
</body>
</html>
`

// ReferralReceivedData fills the referral-received template
type ReferralReceivedData struct {
	CaseCode          string
	ClientColorCode   string
	ClientContactInfo string
	Notes             string
	ConsentFormURL    string
	CreatedBy         string
	CreatedByOrg      string
}

// SendReferralReceived mails the focal persons of the receiving organization
func (s *EmailService) SendReferralReceived(to []string, data ReferralReceivedData) error {
	body, err := renderTemplate("referral_received", referralReceivedTemplate, data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("New Case Referral (Case: %s)", data.CaseCode)
	return s.SendEmail(to, subject, body)
}

const supervisorAssignedTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #004085; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 20px; text-align: center; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>You have been assigned a new case</h1>
        </div>
        <div class="content">
            <ul>
                <li>Case Code: {{.CaseCode}}</li>
                <li>Color Code: {{.ClientColorCode}}</li>
                <li>Client Info: {{.ClientContactInfo}}</li>
                <li>Notes: {{.Notes}}</li>
                {{if .ConsentFormURL}}<li>Consent Form: <a href="{{.ConsentFormURL}}">{{.ConsentFormURL}}</a></li>{{end}}
                <li>Assigned By: {{.AssignedBy}} ({{.AssignedByOrg}})</li>
            </ul>
            <p>Please review this case and take the necessary actions.</p>
        </div>
        <div class="footer">
            <p>This is an automated notification from the GBV Referral System.</p>
        </div>
    </div>
</body>
</html>
`

// SupervisorAssignedData fills the supervisor-assignment template
type SupervisorAssignedData struct {
	CaseCode          string
	ClientColorCode   string
	ClientContactInfo string
	Notes             string
	ConsentFormURL    string
	AssignedBy        string
	AssignedByOrg     string
}

// SendSupervisorAssigned mails the newly assigned supervisor
func (s *EmailService) SendSupervisorAssigned(to string, data SupervisorAssignedData) error {
	body, err := renderTemplate("supervisor_assigned", supervisorAssignedTemplate, data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Assigned Case: %s", data.CaseCode)
	return s.SendEmail([]string{to}, subject, body)
}

const caseUpdateTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #004085; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 20px; text-align: center; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Case Status Updated</h1>
        </div>
        <div class="content">
            <ul>
                <li>Case Code: {{.CaseCode}}</li>
                <li>New Status: {{.NewStatus}}</li>
                <li>Note: {{.Note}}</li>
                <li>Updated By: {{.UpdatedBy}}</li>
                <li>Referred To Org: {{.ReferredToOrg}}</li>
            </ul>
            <p>Please review this case update promptly.</p>
        </div>
        <div class="footer">
            <p>This is an automated notification from the GBV Referral System.</p>
        </div>
    </div>
</body>
</html>
`

// CaseUpdateData fills the case-update template
type CaseUpdateData struct {
	CaseCode      string
	NewStatus     string
	Note          string
	UpdatedBy     string
	ReferredToOrg string
}

// SendCaseUpdate mails a case status change
func (s *EmailService) SendCaseUpdate(to []string, data CaseUpdateData) error {
	body, err := renderTemplate("case_update", caseUpdateTemplate, data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Case Status Updated: %s", data.CaseCode)
	return s.SendEmail(to, subject, body)
}

func renderTemplate(name, text string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
