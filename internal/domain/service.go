package domain

import "time"

type Service struct {
	ID               int64
	ProviderID       int64
	CategoryID       int64
	Title            string
	Description      string
	Price            float64
	Location         string
	Latitude         *float64
	Longitude        *float64
	ServiceType      string
	DurationEstimate string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Category struct {
	ID           int64
	Name         string
	Description  string
	Icon         string
	ServiceCount int
}
