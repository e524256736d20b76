package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"gearbook-backend/internal/core/domain"
)

// Notifier is the outbound notification surface. Calls are best-effort;
// a failed delivery never fails the operation that triggered it.
type Notifier interface {
	NotifySubmitted(reservation domain.Reservation, resourceName string)
	NotifyDecision(reservation domain.Reservation, resourceName string)
	NotifyReturnReminder(reservation domain.Reservation, resourceName string)
	NotifyOverdue(reservation domain.Reservation, resourceName string, daysOverdue int)
	NotifyStrikeIssued(subjectID string, strikeNumber int, restrictionDays int)
}

// NotificationService posts reservation events to a configured webhook
type NotificationService struct {
	webhookURL string
	enabled    bool
	client     *http.Client
}

// NewNotificationService creates a new notification service. An empty
// webhook URL disables delivery.
func NewNotificationService(webhookURL string) *NotificationService {
	return &NotificationService{
		webhookURL: webhookURL,
		enabled:    webhookURL != "",
		client:     &http.Client{Timeout: 5 * time.Second},
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// sendWebhook posts one event as JSON. Errors are logged, not returned.
func (s *NotificationService) sendWebhook(event string, message string, payload map[string]interface{}) {
	if !s.enabled {
		return
	}

	body := map[string]interface{}{
		"event":   event,
		"message": message,
		"data":    payload,
		"sent_at": time.Now().Format(time.RFC3339),
	}

	raw, err := json.Marshal(body)
	if err != nil {
		log.Printf("❌ Notification marshal error: %v", err)
		return
	}

	resp, err := s.client.Post(s.webhookURL, "application/json", bytes.NewReader(raw))
	if err != nil {
		log.Printf("❌ Notification delivery error (%s): %v", event, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		log.Printf("❌ Notification webhook returned %d for event %s", resp.StatusCode, event)
	}
}

// NotifySubmitted announces a new pending reservation to staff
func (s *NotificationService) NotifySubmitted(reservation domain.Reservation, resourceName string) {
	message := fmt.Sprintf("🆕 New reservation request: %s (%s - %s) by %s",
		resourceName,
		reservation.Window.Dates.Start.Format("2006-01-02"),
		reservation.Window.Dates.End.Format("2006-01-02"),
		reservation.RequesterID,
	)
	s.sendWebhook("reservation.submitted", message, map[string]interface{}{
		"reservation_id": reservation.ID,
		"resource_id":    reservation.ResourceID,
		"requester_id":   reservation.RequesterID,
	})
}

// NotifyDecision announces an approval or denial to the requester
func (s *NotificationService) NotifyDecision(reservation domain.Reservation, resourceName string) {
	var message string
	switch reservation.Status {
	case domain.StatusApproved:
		message = fmt.Sprintf("✅ Reservation approved: %s (%s - %s)",
			resourceName,
			reservation.Window.Dates.Start.Format("2006-01-02"),
			reservation.Window.Dates.End.Format("2006-01-02"),
		)
	case domain.StatusDenied:
		reason := ""
		if reservation.DenialReason != nil {
			reason = *reservation.DenialReason
		}
		message = fmt.Sprintf("❌ Reservation denied: %s (reason: %s)", resourceName, reason)
	default:
		return
	}
	s.sendWebhook("reservation.decided", message, map[string]interface{}{
		"reservation_id": reservation.ID,
		"requester_id":   reservation.RequesterID,
		"status":         string(reservation.Status),
	})
}

// NotifyReturnReminder reminds the requester their return is due today
func (s *NotificationService) NotifyReturnReminder(reservation domain.Reservation, resourceName string) {
	message := fmt.Sprintf("⏰ Return reminder: %s is due back today (%s)",
		resourceName,
		reservation.Window.Dates.End.Format("2006-01-02"),
	)
	s.sendWebhook("reservation.reminder", message, map[string]interface{}{
		"reservation_id": reservation.ID,
		"requester_id":   reservation.RequesterID,
		"due_date":       reservation.Window.Dates.End.Format("2006-01-02"),
	})
}

// NotifyOverdue announces a reservation that passed its return date
func (s *NotificationService) NotifyOverdue(reservation domain.Reservation, resourceName string, daysOverdue int) {
	message := fmt.Sprintf("🚨 Overdue: %s was due %s (%d day(s) late)",
		resourceName,
		reservation.Window.Dates.End.Format("2006-01-02"),
		daysOverdue,
	)
	s.sendWebhook("reservation.overdue", message, map[string]interface{}{
		"reservation_id": reservation.ID,
		"requester_id":   reservation.RequesterID,
		"days_overdue":   daysOverdue,
	})
}

// NotifyStrikeIssued informs the subject of a new strike
func (s *NotificationService) NotifyStrikeIssued(subjectID string, strikeNumber int, restrictionDays int) {
	var message string
	if restrictionDays > 0 {
		message = fmt.Sprintf("⚠️ Strike %d issued to %s: booking restricted for %d days",
			strikeNumber, subjectID, restrictionDays)
	} else {
		message = fmt.Sprintf("⚠️ Strike %d issued to %s: warning only", strikeNumber, subjectID)
	}
	s.sendWebhook("strike.issued", message, map[string]interface{}{
		"subject_id":       subjectID,
		"strike_number":    strikeNumber,
		"restriction_days": restrictionDays,
	})
}
