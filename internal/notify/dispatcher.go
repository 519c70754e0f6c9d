package notify

import (
	"context"
	"fmt"

	"github.com/shenikar/smart_incident_detection/internal/broadcast"
	"github.com/shenikar/smart_incident_detection/internal/metrics"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=dispatcher.go -destination=mocks/mock_dispatcher.go -package=mocks

// Notifier delivers a push alert for an incident.
type Notifier interface {
	Notify(ctx context.Context, incident *models.Incident) error
}

// Broadcaster emits an event to live subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, ev broadcast.Event) error
}

// Dispatcher fans an emergency out to push and live broadcast. The two
// channels are independent and neither can fail the caller.
type Dispatcher struct {
	notifier    Notifier
	broadcaster Broadcaster
	logger      *logrus.Logger
}

// NewDispatcher creates a dispatcher. A nil notifier disables push alerts.
func NewDispatcher(notifier Notifier, broadcaster Broadcaster, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{
		notifier:    notifier,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Dispatch alerts subscribers about an emergency incident. Other decisions
// are ignored. Delivery outlives the caller's cancellation.
func (d *Dispatcher) Dispatch(ctx context.Context, incident *models.Incident) {
	if !incident.Decision.IsEmergency() {
		return
	}
	ctx = context.WithoutCancel(ctx)
	log := d.logger.WithFields(logrus.Fields{
		"component":   "dispatcher",
		"incident_id": incident.ID,
		"location":    incident.Location,
	})

	if d.notifier == nil {
		log.Debug("Push notifier not configured, skipping push")
		metrics.RecordNotification("push", metrics.StatusSkipped)
	} else if err := guard(func() error { return d.notifier.Notify(ctx, incident) }); err != nil {
		log.WithError(err).Error("Failed to send push notification")
		metrics.RecordNotification("push", metrics.StatusFailed)
	}

	if err := guard(func() error {
		return d.broadcaster.Broadcast(ctx, broadcast.NewIncidentEvent(incident))
	}); err != nil {
		log.WithError(err).Error("Failed to broadcast incident")
		metrics.RecordNotification("broadcast", metrics.StatusFailed)
		return
	}
	metrics.RecordNotification("broadcast", metrics.StatusSent)
}

// guard converts a panic in fn into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recovered panic: %v", r)
		}
	}()
	return fn()
}
