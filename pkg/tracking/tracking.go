package tracking

import "github.com/leadpilot/filter-engine/pkg/query"

// Tracking receives filter-usage events. A nil Tracking is valid everywhere
// and drops the events.
type Tracking interface {
	TrackApply(sessionId int, page string, params query.Params)
	TrackClear(sessionId int, page string)
	TrackSuggestionPick(sessionId int, field, value string)
}
