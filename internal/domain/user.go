package domain

import "time"

type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated identity attached to a request by the auth
// layer. The core trusts it without re-checking credentials.
type Actor struct {
	UserID int64
	Role   Role
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Role         Role
	Address      string
	Latitude     *float64
	Longitude    *float64
	Bio          string
	PortfolioURL string
	IsVerified   bool
	ProfileImage string
	CreatedAt    time.Time
}

// ProviderStats are aggregates shown on a provider profile.
type ProviderStats struct {
	TotalServices int
	AvgRating     float64
	TotalReviews  int
	CompletedJobs int
}
