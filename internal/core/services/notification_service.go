package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"insureadmin/internal/config"
)

// NotificationService pushes operational events to an external webhook.
// When no webhook is configured every event is logged and dropped, so
// callers never need to branch on whether notifications are enabled.
type NotificationService struct {
	webhookURL string
	appBaseURL string
	client     *http.Client
}

// NewNotificationService creates a new notification service
func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{
		webhookURL: cfg.Notify.WebhookURL,
		appBaseURL: cfg.Notify.AppBaseURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

type webhookPayload struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	SentAt  string `json:"sent_at"`
}

// Notify sends a single event. Delivery failures are logged, never returned:
// a down webhook must not fail the business operation that triggered it.
func (s *NotificationService) Notify(kind, message string) {
	if s.webhookURL == "" {
		log.Printf("🔔 [%s] %s", kind, message)
		return
	}

	payload := webhookPayload{
		Kind:    kind,
		Message: message,
		SentAt:  time.Now().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("⚠️ Notify marshal failed: %v", err)
		return
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Notify delivery failed [%s]: %v", kind, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Notify webhook returned %d [%s]", resp.StatusCode, kind)
	}
}

// NotifyEnrollmentChange reports a create/update/delete on an enrollment.
// Reads never notify.
func (s *NotificationService) NotifyEnrollmentChange(action, userID string, enrollmentID uint) {
	s.Notify("enrollment", fmt.Sprintf("Enrollment %s: id=%d user=%s", action, enrollmentID, userID))
}

// SendPasswordReset delivers a password reset link for the given account
func (s *NotificationService) SendPasswordReset(email, token string) {
	link := fmt.Sprintf("%s/update-password?token=%s", s.appBaseURL, token)
	s.Notify("password_reset", fmt.Sprintf("Password reset requested for %s: %s", email, link))
}
