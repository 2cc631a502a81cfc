package gateway

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpdataXOR/hrdesk/internal/domain"
)

func TestMockGatewayRunLifecycle(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway("asst_1")
	gw.PollsToComplete = 2

	threadID, err := gw.CreateThread(ctx)
	require.NoError(t, err)

	_, err = gw.AppendMessage(ctx, threadID, domain.RoleUser, "hello")
	require.NoError(t, err)

	runID, err := gw.StartRun(ctx, threadID, "asst_1", "")
	require.NoError(t, err)

	// Two polls in progress, then terminal.
	for i := 0; i < 2; i++ {
		status, _, err := gw.PollRun(ctx, threadID, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunStatusInProgress, status)
	}
	status, _, err := gw.PollRun(ctx, threadID, runID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, status)

	// A completed run leaves an assistant reply on the thread, newest first.
	messages, err := gw.ListMessages(ctx, threadID, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleAssistant, messages[0].Role)
	assert.Equal(t, domain.RoleUser, messages[1].Role)
}

func TestMockGatewayDeleteFileDropsIndexMembership(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway()

	ref, err := gw.UploadFile(ctx, "handbook.txt", []byte("x"))
	require.NoError(t, err)

	_, err = gw.SubmitIndexBatch(ctx, "vs_1", []string{ref.ID})
	require.NoError(t, err)

	require.NoError(t, gw.DeleteFile(ctx, ref.ID))

	refs, err := gw.ListIndexFiles(ctx, "vs_1")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestMockGatewayFailureInjection(t *testing.T) {
	ctx := context.Background()
	gw := NewMockGateway("asst_1")
	gw.FailOp = "assistants.get"
	gw.FailErr = assert.AnError

	_, err := gw.GetAssistant(ctx, "asst_1")
	assert.ErrorIs(t, err, assert.AnError)

	// Other operations are unaffected.
	_, err = gw.CreateThread(ctx)
	assert.NoError(t, err)
}
