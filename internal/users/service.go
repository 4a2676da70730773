package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gateway-service/internal/auth"
	"gateway-service/internal/logger"
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// SocialLogin upserts the user for (provider, providerId). An existing user
// gets its profile refreshed; a new one is created active. Both record the
// login time.
func (s *Service) SocialLogin(ctx context.Context, provider auth.Provider, req SocialLoginRequest) (*User, error) {
	now := s.now()

	u, err := s.store.FindByProvider(ctx, provider, req.ProviderID)
	switch {
	case err == nil:
		u.updateProfile(req.Name, req.ProfileImage)
		u.LastLoginAt = &now
		u.UpdatedAt = now
		if err := s.store.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("update user %d: %w", u.ID, err)
		}
		return u, nil

	case !errors.Is(err, ErrUserNotFound):
		return nil, err
	}

	u = &User{
		Email:        req.Email,
		Name:         req.Name,
		Provider:     provider,
		ProviderID:   req.ProviderID,
		ProfileImage: req.ProfileImage,
		PhoneNumber:  req.PhoneNumber,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
		LastLoginAt:  &now,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info("user created", map[string]any{
		"user_id":  u.ID,
		"provider": provider.String(),
	})
	return u, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	u, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("id %d: %w", id, err)
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("email %s: %w", email, err)
	}
	return u, nil
}

func (s *Service) GetBySocial(ctx context.Context, provider auth.Provider, providerID string) (*User, error) {
	u, err := s.store.FindByProvider(ctx, provider, providerID)
	if err != nil {
		return nil, fmt.Errorf("provider %s id %s: %w", provider, providerID, err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	u.IsActive = false
	u.UpdatedAt = s.now()
	return s.store.Update(ctx, u)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("id %d: %w", id, err)
	}
	return nil
}
