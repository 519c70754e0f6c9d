package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/shenikar/smart_incident_detection/internal/broadcast"
	"github.com/shenikar/smart_incident_detection/internal/models"
	"github.com/shenikar/smart_incident_detection/internal/notify/mocks"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *mocks.MockNotifier, *mocks.MockBroadcaster) {
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	broadcaster := mocks.NewMockBroadcaster(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	return NewDispatcher(notifier, broadcaster, logger), notifier, broadcaster
}

func TestDispatch_EmergencyUsesBothChannels(t *testing.T) {
	dispatcher, notifier, broadcaster := newTestDispatcher(t)
	incident := emergencyIncident()

	notifier.EXPECT().Notify(gomock.Any(), incident).Return(nil).Times(1)
	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).
		Do(func(_ context.Context, ev broadcast.Event) {
			assert.Equal(t, broadcast.EventNewIncident, ev.Name)
			assert.Same(t, incident, ev.Data)
		}).Return(nil).Times(1)

	dispatcher.Dispatch(context.Background(), incident)
}

func TestDispatch_NotEmergencyIsIgnored(t *testing.T) {
	dispatcher, notifier, broadcaster := newTestDispatcher(t)
	incident := emergencyIncident()
	incident.Decision = models.DecisionNotEmergency

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Times(0)
	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Times(0)

	dispatcher.Dispatch(context.Background(), incident)
}

func TestDispatch_PushFailureDoesNotBlockBroadcast(t *testing.T) {
	dispatcher, notifier, broadcaster := newTestDispatcher(t)
	incident := emergencyIncident()

	notifier.EXPECT().Notify(gomock.Any(), incident).Return(errors.New("pushbullet down")).Times(1)
	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	dispatcher.Dispatch(context.Background(), incident)
}

func TestDispatch_PushPanicIsRecovered(t *testing.T) {
	dispatcher, notifier, broadcaster := newTestDispatcher(t)
	incident := emergencyIncident()

	notifier.EXPECT().Notify(gomock.Any(), incident).
		DoAndReturn(func(context.Context, *models.Incident) error { panic("boom") }).Times(1)
	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	assert.NotPanics(t, func() { dispatcher.Dispatch(context.Background(), incident) })
}

func TestDispatch_BroadcastFailureIsSwallowed(t *testing.T) {
	dispatcher, notifier, broadcaster := newTestDispatcher(t)
	incident := emergencyIncident()

	notifier.EXPECT().Notify(gomock.Any(), incident).Return(nil).Times(1)
	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(broadcast.ErrHubClosed).Times(1)

	assert.NotPanics(t, func() { dispatcher.Dispatch(context.Background(), incident) })
}

func TestDispatch_WithoutNotifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	broadcaster := mocks.NewMockBroadcaster(ctrl)
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	dispatcher := NewDispatcher(nil, broadcaster, logger)

	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	dispatcher.Dispatch(context.Background(), emergencyIncident())
}

func TestDispatch_IgnoresCallerCancellation(t *testing.T) {
	dispatcher, notifier, broadcaster := newTestDispatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ *models.Incident) error {
			assert.NoError(t, ctx.Err())
			return nil
		}).Times(1)
	broadcaster.EXPECT().Broadcast(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ broadcast.Event) error {
			assert.NoError(t, ctx.Err())
			return nil
		}).Times(1)

	dispatcher.Dispatch(ctx, emergencyIncident())
}
