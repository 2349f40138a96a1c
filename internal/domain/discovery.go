package domain

// ServiceFilter narrows the discovery candidate set. Nil fields mean "no
// constraint". Filtering happens at the store, before ranking.
type ServiceFilter struct {
	CategoryID *int64
	MinPrice   *float64
	MaxPrice   *float64
	Search     string
}

func (f ServiceFilter) IsZero() bool {
	return f.CategoryID == nil && f.MinPrice == nil && f.MaxPrice == nil && f.Search == ""
}

// ServiceListing is a service row joined with provider, category and rating
// aggregates, as returned by discovery. DistanceKm is filled by the ranker
// when the caller supplied an origin.
type ServiceListing struct {
	Service
	ProviderName     string
	ProviderPhone    string
	ProviderVerified bool
	CategoryName     string
	AvgRating        float64
	ReviewCount      int
	DistanceKm       *float64
}

// ProviderListing is a provider profile joined with activity aggregates.
type ProviderListing struct {
	UserID        int64
	Name          string
	Email         string
	Phone         string
	Address       string
	Latitude      *float64
	Longitude     *float64
	Bio           string
	IsVerified    bool
	ProfileImage  string
	ServiceCount  int
	CompletedJobs int
	AvgRating     float64
	ReviewCount   int
	DistanceKm    *float64
}

// ReviewEntry is a review joined with its author (and, for provider-scoped
// lists, the reviewed service title).
type ReviewEntry struct {
	Review
	CustomerName  string
	CustomerImage string
	ServiceTitle  string
}

// ReviewStats aggregates one review dimension set plus the total count.
type ReviewStats struct {
	Total    int
	Averages RatingAverages
}
