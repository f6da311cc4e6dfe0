package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchday/internal/types"
)

func TestEnrichBroadcasters(t *testing.T) {
	events := []types.Event{
		{ID: 1, BroadcasterIDs: []int64{3, 99, 1}},
		{ID: 2, BroadcasterIDs: nil},
	}
	broadcasters := []types.Broadcaster{
		{ID: 1, Name: "Canal+", Type: types.BroadcasterTV},
		{ID: 3, Name: "DAZN", Type: types.BroadcasterStreaming},
	}

	EnrichBroadcasters(events, broadcasters)

	// Stored ID order is preserved; the unresolved ID 99 is dropped.
	require.Len(t, events[0].Broadcasters, 2)
	assert.Equal(t, "DAZN", events[0].Broadcasters[0].Name)
	assert.Equal(t, "Canal+", events[0].Broadcasters[1].Name)

	assert.Empty(t, events[1].Broadcasters)
}

func TestEnrichBroadcasters_AllUnresolved(t *testing.T) {
	events := []types.Event{{ID: 1, BroadcasterIDs: []int64{5, 6}}}

	EnrichBroadcasters(events, nil)

	assert.Empty(t, events[0].Broadcasters)
}
