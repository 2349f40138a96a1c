package users

import (
	"context"

	"github.com/dvekslers/servimarket/internal/domain"
	"github.com/dvekslers/servimarket/internal/repository"
)

type UserUseCase interface {
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, userID int64, upd repository.ProfileUpdate) error
	UpgradeToProvider(ctx context.Context, actor domain.Actor, userID int64) error
}

// Profile is a public user view; Stats is set only for providers.
type Profile struct {
	domain.User
	Stats *domain.ProviderStats
}

type UserService struct {
	users repository.UserRepository
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &Profile{User: *user}
	if user.Role == domain.RoleProvider {
		stats, err := s.users.ProviderStats(ctx, userID)
		if err != nil {
			return nil, err
		}
		profile.Stats = stats
	}
	return profile, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor domain.Actor, userID int64, upd repository.ProfileUpdate) error {
	if actor.UserID != userID {
		return domain.Forbiddenf("not authorized to update this profile")
	}
	return s.users.UpdateProfile(ctx, userID, upd)
}

// UpgradeToProvider promotes a customer. Promotion is one-way; providers are
// never demoted.
func (s *UserService) UpgradeToProvider(ctx context.Context, actor domain.Actor, userID int64) error {
	if actor.UserID != userID {
		return domain.Forbiddenf("not authorized")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleProvider {
		return domain.Conflictf("already a provider")
	}
	return s.users.PromoteToProvider(ctx, userID)
}

var _ UserUseCase = (*UserService)(nil)
