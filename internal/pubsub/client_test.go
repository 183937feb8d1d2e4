package pubsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeComputeRequest(t *testing.T) {
	data, err := Encode(ComputeRequest{Season: "2023", DryRun: true})
	require.NoError(t, err)

	var req ComputeRequest
	require.NoError(t, Decode(data, &req))
	assert.Equal(t, "2023", req.Season)
	assert.True(t, req.DryRun)
}

func TestDecode_Garbage(t *testing.T) {
	var req ComputeRequest
	assert.Error(t, Decode([]byte{0xc1}, &req))
}

func TestMock_RecordsMessages(t *testing.T) {
	m := NewMock()
	event := RatingsUpdated{RunID: "run-1", MatchesRated: 2, CompletedAt: time.Now()}
	require.NoError(t, m.SendMessage(EventRatingsUpdated, event))

	require.Len(t, m.SendMessageCalls, 1)
	assert.Equal(t, EventRatingsUpdated, m.SendMessageCalls[0].Topic)
	assert.Equal(t, event, m.SendMessageCalls[0].Data)

	m.Reset()
	assert.Empty(t, m.SendMessageCalls)
}
