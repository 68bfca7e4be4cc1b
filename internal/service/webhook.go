package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"referral-server/internal/model"
)

// WebhookService delivers signed event payloads to subscribed organizations
type WebhookService struct {
	client *resty.Client
}

// NewWebhookService creates the webhook dispatcher
func NewWebhookService() *WebhookService {
	return &WebhookService{
		client: resty.New().
			SetTimeout(10 * time.Second).
			SetRetryCount(2).
			SetRetryWaitTime(2 * time.Second),
	}
}

// WebhookEvent is a subscribable event type
type WebhookEvent string

const (
	EventReferralCreated  WebhookEvent = "referral.created"
	EventReferralApproved WebhookEvent = "referral.approved"
	EventReferralRejected WebhookEvent = "referral.rejected"
	EventReferralAssigned WebhookEvent = "referral.assigned"
	EventCaseUpdated      WebhookEvent = "case.updated"
)

// WebhookPayload is the wire format posted to endpoints
type WebhookPayload struct {
	Event     WebhookEvent           `json:"event"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

// SendWebhook posts an event to every active subscription of the organization
func (s *WebhookService) SendWebhook(organization string, event WebhookEvent, data map[string]interface{}) error {
	var webhooks []model.Webhook
	model.DB.Where("organization = ? AND status = ?", organization, "active").Find(&webhooks)

	if len(webhooks) == 0 {
		return nil
	}

	payload := WebhookPayload{
		Event:     event,
		Timestamp: time.Now().Unix(),
		Data:      data,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	for _, webhook := range webhooks {
		if !subscribedTo(webhook.Events, event) {
			continue
		}
		go s.sendSingleWebhook(webhook, payloadBytes, event)
	}

	return nil
}

// subscribedTo checks the comma-separated event list, "*" matches all
func subscribedTo(events string, event WebhookEvent) bool {
	for _, e := range strings.Split(events, ",") {
		e = strings.TrimSpace(e)
		if e == "*" || e == string(event) {
			return true
		}
	}
	return false
}

func (s *WebhookService) sendSingleWebhook(webhook model.Webhook, payload []byte, event WebhookEvent) {
	signature := s.generateSignature(webhook.Secret, payload)

	resp, err := s.client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Webhook-Signature", signature).
		SetHeader("X-Webhook-Timestamp", time.Now().Format(time.RFC3339)).
		SetBody(payload).
		Post(webhook.URL)
	if err != nil {
		log.Printf("[Webhook] delivery to %s failed: %v", webhook.URL, err)
		s.logWebhookResult(webhook.ID, event, payload, 0, err.Error(), false)
		return
	}

	success := resp.StatusCode() >= 200 && resp.StatusCode() < 300
	s.logWebhookResult(webhook.ID, event, payload, resp.StatusCode(), resp.Status(), success)
}

// generateSignature computes the HMAC-SHA256 hex digest of the payload
func (s *WebhookService) generateSignature(secret string, payload []byte) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func (s *WebhookService) logWebhookResult(webhookID string, event WebhookEvent, payload []byte, status int, response string, success bool) {
	entry := model.WebhookLog{
		WebhookID:      webhookID,
		EventType:      string(event),
		Payload:        string(payload),
		ResponseStatus: status,
		ResponseBody:   response,
		Success:        success,
	}
	model.DB.Create(&entry)

	now := time.Now().Format(time.RFC3339)
	model.DB.Model(&model.Webhook{}).Where("id = ?", webhookID).Update("last_fired_at", now)
}
