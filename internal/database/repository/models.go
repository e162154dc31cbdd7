package repository

import "time"

// Token represents the stored auth token pair.
type Token struct {
	AccessToken  string
	RefreshToken *string
	Subject      string
	ExpiresAt    *time.Time
	UpdatedAt    time.Time
}

// ThemeColor represents a cached tenant colour.
type ThemeColor struct {
	TenantID     string
	PrimaryColor string
	FetchedAt    time.Time
}
