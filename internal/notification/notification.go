// Package notification provides local alert notifications for the node,
// with deduplication and optional push delivery to user-configured services.
package notification

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nicholas-fedor/shoutrrr"
	"github.com/nicholas-fedor/shoutrrr/pkg/router"
	"github.com/patrickmn/go-cache"

	"github.com/tphakala/ecosentinel-go/internal/errors"
	"github.com/tphakala/ecosentinel-go/internal/logging"
)

// Type represents the category of a notification
type Type string

const (
	// TypeError indicates a system error notification
	TypeError Type = "error"
	// TypeWarning indicates a warning notification
	TypeWarning Type = "warning"
	// TypeInfo indicates an informational notification
	TypeInfo Type = "info"
	// TypeEmergency indicates an emergency escalation notification
	TypeEmergency Type = "emergency"
)

// Priority represents the urgency level of a notification
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// dedupWindow suppresses repeats of an identical notification. Emergency
// state is sticky, so without suppression every cycle in EMERGENCY would
// re-announce the same alert.
const dedupWindow = 5 * time.Minute

// Notification is a single alert event.
type Notification struct {
	ID        string
	Type      Type
	Priority  Priority
	Title     string
	Message   string
	Timestamp time.Time
}

// Service creates, deduplicates and delivers notifications.
type Service struct {
	log    *slog.Logger
	dedup  *cache.Cache
	pusher *router.ServiceRouter
}

// NewService creates a notification service. Push delivery is enabled when
// at least one shoutrrr URL is configured; invalid URLs disable push with a
// logged warning rather than failing the node.
func NewService(pushURLs []string) *Service {
	log := logging.ForService("notification")
	if log == nil {
		log = slog.Default()
	}

	s := &Service{
		log:   log,
		dedup: cache.New(dedupWindow, 2*dedupWindow),
	}

	if len(pushURLs) > 0 {
		sender, err := shoutrrr.CreateSender(pushURLs...)
		if err != nil {
			log.Warn("push delivery disabled, invalid notification URL", "error", err)
		} else {
			s.pusher = sender
		}
	}

	return s
}

// Send creates a notification, suppressing duplicates within the dedup
// window. Critical and high priority notifications are also pushed to the
// configured services.
func (s *Service) Send(typ Type, priority Priority, title, message string) (*Notification, error) {
	key := fmt.Sprintf("%s|%s|%s", typ, title, message)
	if _, found := s.dedup.Get(key); found {
		return nil, nil
	}
	s.dedup.Set(key, struct{}{}, cache.DefaultExpiration)

	n := &Notification{
		ID:        uuid.New().String(),
		Type:      typ,
		Priority:  priority,
		Title:     title,
		Message:   message,
		Timestamp: time.Now(),
	}

	s.log.Info("notification",
		"id", n.ID,
		"type", string(n.Type),
		"priority", string(n.Priority),
		"title", n.Title,
		"message", n.Message)

	if s.pusher != nil && (priority == PriorityCritical || priority == PriorityHigh) {
		if err := s.push(n); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s *Service) push(n *Notification) error {
	body := fmt.Sprintf("%s: %s", n.Title, n.Message)
	errs := s.pusher.Send(body, nil)
	var failed []string
	for _, err := range errs {
		if err != nil {
			failed = append(failed, err.Error())
		}
	}
	if len(failed) > 0 {
		return errors.Newf("push delivery failed: %s", strings.Join(failed, "; ")).
			Component("notification").
			Category(errors.CategoryNotification).
			Build()
	}
	return nil
}
