package domain

import "strings"

const (
	GuestKey    = "guest"
	UnknownName = "Unknown"
)

// ParticipantKey derives the storage key for a display name: whitespace runs
// become underscores and an empty name maps to GuestKey.
func ParticipantKey(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return GuestKey
	}
	return strings.Join(fields, "_")
}

// DisplayName is the name written to attempt records.
func DisplayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownName
	}
	return name
}
