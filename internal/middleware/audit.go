package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"referral-server/internal/model"

	"github.com/gin-gonic/gin"
)

// AuditMiddleware records write operations to the audit log. Reads are
// skipped; log rows are written asynchronously so the request never
// waits on the audit table.
func AuditMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/health") {
			c.Next()
			return
		}

		method := c.Request.Method
		if method == "GET" {
			c.Next()
			return
		}

		startTime := time.Now()

		var requestBody string
		if c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			requestBody = string(bodyBytes)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

			if strings.Contains(requestBody, "password") {
				requestBody = maskSensitiveData(requestBody)
			}
		}

		c.Next()

		duration := time.Since(startTime).Milliseconds()

		action, resource, resourceID := parseActionFromPath(method, path)

		entry := model.AuditLog{
			UserID:       GetUserID(c),
			UserEmail:    GetUserEmail(c),
			Action:       action,
			Resource:     resource,
			ResourceID:   resourceID,
			Description:  action + " " + resource,
			IPAddress:    c.ClientIP(),
			UserAgent:    c.Request.UserAgent(),
			RequestBody:  truncateString(requestBody, 2000),
			ResponseCode: c.Writer.Status(),
			Duration:     duration,
		}

		go func() {
			model.DB.Create(&entry)
		}()
	}
}

// parseActionFromPath maps a request to an audit action and resource
func parseActionFromPath(method, path string) (action, resource, resourceID string) {
	parts := strings.Split(strings.Trim(path, "/"), "/")

	for _, part := range parts {
		switch part {
		case "referrals", "cases":
			resource = model.ResourceReferral
		case "users":
			resource = model.ResourceUser
		case "organizations":
			resource = model.ResourceOrganization
		case "roles":
			resource = model.ResourceRole
		case "notifications":
			resource = model.ResourceNotification
		case "auth":
			resource = model.ResourceUser
		}
	}

	switch method {
	case "POST":
		switch {
		case strings.Contains(path, "/login"):
			action = model.ActionLogin
		case strings.HasSuffix(path, "/approve"):
			action = model.ActionApprove
		case strings.HasSuffix(path, "/reject"):
			action = model.ActionReject
		case strings.HasSuffix(path, "/assign"):
			action = model.ActionAssign
		case strings.HasSuffix(path, "/status"):
			action = model.ActionUpdateStatus
		default:
			action = model.ActionCreate
		}
	case "PUT":
		action = model.ActionUpdate
	case "DELETE":
		action = model.ActionDelete
	default:
		action = method
	}

	// a UUID path segment identifies the resource
	for _, part := range parts {
		if len(part) == 36 && strings.Count(part, "-") == 4 {
			resourceID = part
			break
		}
	}

	return
}

// maskSensitiveData blanks password values in a JSON request body
func maskSensitiveData(body string) string {
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return "[unparseable body containing credentials]"
	}
	for key := range data {
		if strings.Contains(strings.ToLower(key), "password") {
			data[key] = "******"
		}
	}
	masked, err := json.Marshal(data)
	if err != nil {
		return "[masked]"
	}
	return string(masked)
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
