package entity

import "strings"

// UserID identifies a contractor account. The gateway trusts the upstream
// auth proxy to populate it; only presence is checked here.
type UserID string

func NormalizeUserID(raw string) UserID {
	return UserID(strings.TrimSpace(raw))
}

func (id UserID) String() string {
	return strings.TrimSpace(string(id))
}

func (id UserID) IsZero() bool {
	return id.String() == ""
}
