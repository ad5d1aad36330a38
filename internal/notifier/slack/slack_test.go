package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/permutatum/internal/metrics"
	"github.com/mauv0809/permutatum/internal/notifier"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func sampleNotification() notifier.Notification {
	return notifier.Notification{
		TargetEmail: "ana@tjsp.jus.br",
		Kind:        notifier.KindDirectSwap,
		Message:     "New match! Bia (TJRJ) wants to move to TJSP: a direct swap is possible!",
		Details:     "Search TJSP → TJRJ to see it.",
	}
}

func TestEmit_DryRun(t *testing.T) {
	m := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	n := NewNotifierWithAPI(nil, "C123", m)

	sent, err := n.Emit(notifier.WithDryRun(context.Background(), true), sampleNotification())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.Equal(t, 0, m.SlackNotifSent())
}

func TestEmit_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	sent, err := n.Emit(context.Background(), sampleNotification())
	require.NoError(t, err)
	assert.True(t, sent)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, m.SlackNotifSent())
	assert.Equal(t, 0, m.SlackNotifFailed())
}

func TestEmit_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	sent, err := n.Emit(context.Background(), sampleNotification())
	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.False(t, sent)
	assert.Equal(t, 0, m.SlackNotifSent())
	assert.Equal(t, 1, m.SlackNotifFailed())
}

func TestFormatNotification(t *testing.T) {
	n := NewNotifierWithAPI(nil, "C123", metrics.NewMock())
	msg := n.formatNotification(sampleNotification())

	require.Len(t, msg.Blocks.BlockSet, 3)
	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "New direct swap match", header.Text.Text)

	section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, section.Text.Text, "Bia (TJRJ)")
	assert.NotContains(t, section.Text.Text, "ana@tjsp.jus.br")

	noDetails := sampleNotification()
	noDetails.Details = ""
	assert.Len(t, n.formatNotification(noDetails).Blocks.BlockSet, 2)
}
