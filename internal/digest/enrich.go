package digest

import "matchday/internal/types"

// EnrichBroadcasters hydrates each event's Broadcasters slice from its
// BroadcasterIDs, preserving the stored ID order. IDs that do not resolve
// against the broadcaster catalog are dropped silently; an event may end up
// with no broadcasters at all, which does not affect matching.
func EnrichBroadcasters(events []types.Event, broadcasters []types.Broadcaster) {
	byID := make(map[int64]types.Broadcaster, len(broadcasters))
	for _, b := range broadcasters {
		byID[b.ID] = b
	}

	for i := range events {
		if len(events[i].BroadcasterIDs) == 0 {
			continue
		}
		resolved := make([]types.Broadcaster, 0, len(events[i].BroadcasterIDs))
		for _, id := range events[i].BroadcasterIDs {
			if b, ok := byID[id]; ok {
				resolved = append(resolved, b)
			}
		}
		events[i].Broadcasters = resolved
	}
}
