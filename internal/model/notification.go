package model

// Notification is an in-app message shown to a user
type Notification struct {
	BaseModel
	UserID     string `gorm:"type:varchar(36);index;not null" json:"user_id"`
	ReferralID string `gorm:"type:varchar(36);index" json:"referral_id"`
	Type       string `gorm:"type:varchar(50);not null" json:"type"`
	Title      string `gorm:"type:varchar(200);not null" json:"title"`
	Content    string `gorm:"type:text" json:"content"`
	IsRead     bool   `gorm:"default:false" json:"is_read"`
}

func (Notification) TableName() string {
	return "notifications"
}

// Webhook is a per-organization event subscription
type Webhook struct {
	BaseModel
	Organization string  `gorm:"type:varchar(100);not null;index" json:"organization"`
	URL          string  `gorm:"type:varchar(500);not null" json:"url"`
	Secret       string  `gorm:"type:varchar(100);not null" json:"-"`
	Events       string  `gorm:"type:varchar(500);not null" json:"events"`
	Status       string  `gorm:"type:varchar(20);default:active" json:"status"`
	LastFiredAt  *string `json:"last_fired_at"`
}

func (Webhook) TableName() string {
	return "webhooks"
}

// WebhookLog records one delivery attempt
type WebhookLog struct {
	BaseModel
	WebhookID      string `gorm:"type:varchar(36);not null;index" json:"webhook_id"`
	EventType      string `gorm:"type:varchar(50);not null" json:"event_type"`
	Payload        string `gorm:"type:json;not null" json:"payload"`
	ResponseStatus int    `json:"response_status"`
	ResponseBody   string `gorm:"type:text" json:"response_body"`
	Success        bool   `json:"success"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}
