package logging

import (
	"errors"
	"io"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentryHook(t *testing.T) {
	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, e)
			return nil
		},
	})
	require.NoError(t, err)

	hook := NewSentryHook([]logrus.Level{logrus.ErrorLevel})
	hook.hub = sentry.NewHub(client, sentry.NewScope())

	logger := logrus.New()
	logger.Out = io.Discard
	logger.AddHook(hook)

	logger.Warn("not forwarded")
	logger.WithError(errors.New("db down")).WithField("user", 7).Error("save failed")
	logger.Error("plain message")

	require.Len(t, events, 2)
	assert.Equal(t, sentry.LevelError, events[0].Level)
	assert.NotEmpty(t, events[0].Exception)
	assert.Equal(t, 7, events[0].Extra["user"])
	assert.Equal(t, "plain message", events[1].Message)
}

func TestSentryLevel(t *testing.T) {
	assert.Equal(t, sentry.LevelFatal, sentryLevel(logrus.PanicLevel))
	assert.Equal(t, sentry.LevelWarning, sentryLevel(logrus.WarnLevel))
	assert.Equal(t, sentry.LevelDebug, sentryLevel(logrus.TraceLevel))
}
