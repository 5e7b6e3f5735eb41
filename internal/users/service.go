package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains identity lookup and registration glue. Authentication
// itself is handled upstream; this service only keeps author records that
// documents reference.
type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Register persists an identity. A missing id gets generated so callers can
// seed authors without an upstream identity provider.
func (s *Service) Register(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(user.Username) == "" {
		return User{}, errors.New("username is required")
	}
	if strings.TrimSpace(user.ID) == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC()
	if err := s.Repo.Upsert(ctx, user); err != nil {
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) GetByUsername(ctx context.Context, username string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(username) == "" {
		return User{}, errors.New("username is required")
	}
	return s.Repo.GetByUsername(ctx, username)
}
