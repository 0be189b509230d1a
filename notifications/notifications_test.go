package notifications_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.senan.xyz/nofuture/notifications"
)

func TestAddURI(t *testing.T) {
	t.Parallel()

	var n notifications.Notifications
	assert.ErrorIs(t, n.AddURI("finished", "generic://example.com"), notifications.ErrUnknownEvent)
	assert.ErrorIs(t, n.AddURI(notifications.Complete, "not a uri"), notifications.ErrInvalidURI)

	require.NoError(t, n.AddURI(notifications.Complete, "generic://example.com/a"))
	require.NoError(t, n.AddURI(notifications.RunError, "generic://example.com/b"))
	require.NoError(t, n.AddURI(notifications.RunError, "generic://example.com/c"))

	got := map[notifications.Event][]string{}
	n.IterMappings(func(e notifications.Event, uri string) {
		got[e] = append(got[e], uri)
	})
	assert.Equal(t, map[notifications.Event][]string{
		notifications.Complete: {"generic://example.com/a"},
		notifications.RunError: {"generic://example.com/b", "generic://example.com/c"},
	}, got)
}

func TestSendWithoutMappings(t *testing.T) {
	t.Parallel()

	var n notifications.Notifications
	n.Send(context.Background(), notifications.Complete, "nothing configured") // no panic, no-op
}
