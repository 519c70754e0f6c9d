package notify

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shenikar/smart_incident_detection/internal/imagecodec"
	"github.com/shenikar/smart_incident_detection/internal/metrics"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/shenikar/smart_incident_detection/pkg/pushbullet"
	"github.com/sirupsen/logrus"
)

// AlertTitle is the title of every emergency push.
const AlertTitle = "Emergency Alert"

//go:generate mockgen -source=push.go -destination=mocks/mock_push.go -package=mocks

// PushProvider is the subset of the push service used for alerts.
type PushProvider interface {
	Channels(ctx context.Context) ([]pushbullet.Channel, error)
	UploadFile(ctx context.Context, path, fileType string) (*pushbullet.Upload, error)
	PushFile(ctx context.Context, push pushbullet.FilePush) error
}

// PushNotifier sends an emergency push with the incident image attached
// to a single channel selected by tag.
type PushNotifier struct {
	provider   PushProvider
	channelTag string
	tempDir    string
	logger     *logrus.Logger
}

// NewPushNotifier creates a notifier. An empty tempDir means os.TempDir.
func NewPushNotifier(provider PushProvider, channelTag, tempDir string, logger *logrus.Logger) *PushNotifier {
	return &PushNotifier{
		provider:   provider,
		channelTag: channelTag,
		tempDir:    tempDir,
		logger:     logger,
	}
}

// FormatMessage renders the push body for an incident.
func FormatMessage(location string, keywords []string) string {
	return fmt.Sprintf("Emergency detected at %s! Keywords: %s", location, strings.Join(keywords, ", "))
}

// Notify pushes the alert. A missing channel is logged and is not an error.
func (n *PushNotifier) Notify(ctx context.Context, incident *models.Incident) error {
	log := n.logger.WithFields(logrus.Fields{
		"component":   "push",
		"channel_tag": n.channelTag,
		"incident_id": incident.ID,
	})

	channels, err := n.provider.Channels(ctx)
	if err != nil {
		return fmt.Errorf("notify: could not list channels: %w", err)
	}
	channel, ok := findChannel(channels, n.channelTag)
	if !ok {
		log.Warn("Push channel not found, make sure the API key owns the channel")
		metrics.RecordNotification("push", metrics.StatusChannelNotFound)
		return nil
	}
	log = log.WithField("channel", channel.Name)

	raw, err := imagecodec.Decode(incident.Image)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	fileType := imagecodec.DetectType(raw)

	path, cleanup, err := n.writeTempImage(raw, fileType)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	defer cleanup()

	upload, err := n.provider.UploadFile(ctx, path, fileType)
	if err != nil {
		return fmt.Errorf("notify: could not upload image: %w", err)
	}

	err = n.provider.PushFile(ctx, pushbullet.FilePush{
		Title:      AlertTitle,
		Body:       FormatMessage(incident.Location, incident.Keywords),
		ChannelTag: channel.Tag,
		File:       *upload,
	})
	if err != nil {
		return fmt.Errorf("notify: could not send push: %w", err)
	}

	log.Info("Push sent")
	metrics.RecordNotification("push", metrics.StatusSent)
	return nil
}

// writeTempImage stores raw in a uniquely named file. cleanup removes it
// and is safe to call on every path.
func (n *PushNotifier) writeTempImage(raw []byte, fileType string) (string, func(), error) {
	f, err := os.CreateTemp(n.tempDir, "incident-*"+imagecodec.Extension(fileType))
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	cleanup := func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			n.logger.WithError(err).WithField("path", path).Warn("Failed to remove temp image")
		}
	}

	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("close temp file: %w", err)
	}
	return path, cleanup, nil
}

func findChannel(channels []pushbullet.Channel, tag string) (pushbullet.Channel, bool) {
	for _, ch := range channels {
		if ch.Tag == tag {
			return ch, true
		}
	}
	return pushbullet.Channel{}, false
}
