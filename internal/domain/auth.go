package domain

import "time"

// Token represents an issued access token and its metadata.
type Token struct {
	Value     string
	SubjectID string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
