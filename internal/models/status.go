package models

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"

	// StatusAll is the moderator-only list filter sentinel, never stored.
	StatusAll = "all"
)

var knownStatuses = map[string]struct{}{
	StatusPending:  {},
	StatusApproved: {},
	StatusRejected: {},
}

// KnownStatus reports whether s is a storable moderation status.
func KnownStatus(s string) bool {
	_, ok := knownStatuses[s]
	return ok
}
