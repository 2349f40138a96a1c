package review

import (
	"context"
	"fmt"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/repository"
	"go.uber.org/zap"
)

type ReviewUseCase interface {
	CreateReview(ctx context.Context, customerID int64, input CreateReviewInput) (*domain.Review, error)
	RespondToReview(ctx context.Context, providerID, reviewID int64, response string) error
	DeleteReview(ctx context.Context, customerID, reviewID int64) error
	ListServiceReviews(ctx context.Context, serviceID int64, limit, offset int) (*ReviewPage, error)
	ListProviderReviews(ctx context.Context, providerID int64, limit, offset int) (*ReviewPage, error)
}

type Notifier interface {
	Notify(ctx context.Context, n *domain.Notification) error
}

type ReviewService struct {
	reviews  repository.ReviewRepository
	bookings repository.BookingRepository
	notifier Notifier
	log      *zap.Logger
}

type CreateReviewInput struct {
	BookingID           int64  `json:"booking_id"`
	Rating              int    `json:"rating"`
	Comment             string `json:"comment"`
	CommunicationRating *int   `json:"communication_rating"`
	QualityRating       *int   `json:"quality_rating"`
	TimelinessRating    *int   `json:"timeliness_rating"`
}

type ReviewPage struct {
	Reviews  []domain.ReviewEntry
	Total    int
	Limit    int
	Offset   int
	Averages domain.RatingAverages
}

func NewReviewService(
	reviews repository.ReviewRepository,
	bookings repository.BookingRepository,
	notifier Notifier,
	log *zap.Logger,
) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		bookings: bookings,
		notifier: notifier,
		log:      log,
	}
}

// CreateReview is the eligibility gate: one review per booking, authored by
// the booking's customer, only once the booking completed. The pre-check on
// existence is advisory; the UNIQUE constraint in the store settles races.
func (s *ReviewService) CreateReview(ctx context.Context, customerID int64, input CreateReviewInput) (*domain.Review, error) {
	if input.BookingID <= 0 {
		return nil, domain.Validationf("booking id is required")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, domain.Validationf("rating must be between 1 and 5")
	}
	for name, r := range map[string]*int{
		"communication_rating": input.CommunicationRating,
		"quality_rating":       input.QualityRating,
		"timeliness_rating":    input.TimelinessRating,
	} {
		if r != nil && (*r < 1 || *r > 5) {
			return nil, domain.Validationf("%s must be between 1 and 5", name)
		}
	}

	booking, err := s.bookings.GetByID(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.CustomerID != customerID {
		return nil, domain.Forbiddenf("only the customer can leave a review")
	}
	if booking.Status != domain.BookingStatusCompleted {
		return nil, domain.Conflictf("can only review completed bookings")
	}

	exists, err := s.reviews.ExistsForBooking(ctx, input.BookingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflictf("review already exists for this booking")
	}

	review := &domain.Review{
		BookingID:           booking.ID,
		ServiceID:           booking.ServiceID,
		CustomerID:          booking.CustomerID,
		ProviderID:          booking.ProviderID,
		Rating:              input.Rating,
		Comment:             input.Comment,
		CommunicationRating: input.CommunicationRating,
		QualityRating:       input.QualityRating,
		TimelinessRating:    input.TimelinessRating,
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		n := &domain.Notification{
			UserID:    booking.ProviderID,
			Type:      domain.NotificationTypeNewReview,
			Title:     "New Review Received",
			Message:   fmt.Sprintf("You received a %d-star review", review.Rating),
			RelatedID: review.ID,
		}
		if err := s.notifier.Notify(ctx, n); err != nil {
			s.log.Warn("review notification failed",
				zap.Int64("provider_id", booking.ProviderID), zap.Error(err))
		}
	}
	return review, nil
}

// RespondToReview overwrites any previous response, so repeating the call
// with the same text is a no-op. The booking's status is deliberately not
// consulted here.
func (s *ReviewService) RespondToReview(ctx context.Context, providerID, reviewID int64, response string) error {
	if response == "" {
		return domain.Validationf("response text is required")
	}
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.ProviderID != providerID {
		return domain.Forbiddenf("not authorized to respond to this review")
	}
	return s.reviews.SetProviderResponse(ctx, reviewID, response)
}

func (s *ReviewService) DeleteReview(ctx context.Context, customerID, reviewID int64) error {
	review, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.CustomerID != customerID {
		return domain.Forbiddenf("not authorized to delete this review")
	}
	return s.reviews.Delete(ctx, reviewID)
}

func (s *ReviewService) ListServiceReviews(ctx context.Context, serviceID int64, limit, offset int) (*ReviewPage, error) {
	limit, offset = normalizePage(limit, offset)
	entries, err := s.reviews.ListByService(ctx, serviceID, limit, offset)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviews.StatsByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: entries, Total: stats.Total, Limit: limit, Offset: offset, Averages: stats.Averages}, nil
}

func (s *ReviewService) ListProviderReviews(ctx context.Context, providerID int64, limit, offset int) (*ReviewPage, error) {
	limit, offset = normalizePage(limit, offset)
	entries, err := s.reviews.ListByProvider(ctx, providerID, limit, offset)
	if err != nil {
		return nil, err
	}
	stats, err := s.reviews.StatsByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return &ReviewPage{Reviews: entries, Total: stats.Total, Limit: limit, Offset: offset, Averages: stats.Averages}, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

var _ ReviewUseCase = (*ReviewService)(nil)
