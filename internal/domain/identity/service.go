package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/medvault/medvault/internal/platform/auth"
)

type Service struct {
	users    UserRepository
	profiles ProfileRepository
	sessions *auth.Manager
}

func NewService(users UserRepository, profiles ProfileRepository, sessions *auth.Manager) *Service {
	return &Service{users: users, profiles: profiles, sessions: sessions}
}

// SignUp registers a new account, creates its profile row, and returns a
// session token.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (string, *User, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  displayName,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return "", nil, err
	}
	if err := s.EnsureProfile(ctx, user.ID); err != nil {
		return "", nil, err
	}

	token, err := s.sessions.Issue(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return "", nil, fmt.Errorf("issuing session: %w", err)
	}
	return token, user, nil
}

// SignIn verifies credentials and returns a fresh session token. The
// profile row is created here if a legacy account predates profiles.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := s.EnsureProfile(ctx, user.ID); err != nil {
		return "", nil, err
	}

	token, err := s.sessions.Issue(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return "", nil, fmt.Errorf("issuing session: %w", err)
	}
	return token, user, nil
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// EnsureProfile lazily creates the user's profile row if absent.
func (s *Service) EnsureProfile(ctx context.Context, userID uuid.UUID) error {
	_, err := s.profiles.Get(ctx, userID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.profiles.Create(ctx, &Profile{UserID: userID})
}

// GetProfile returns the user's profile, creating it on first access.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	fresh := &Profile{UserID: userID}
	if err := s.profiles.Create(ctx, fresh); err != nil {
		return nil, err
	}
	return s.profiles.Get(ctx, userID)
}

// UpdateProfile replaces the user's profile attributes.
func (s *Service) UpdateProfile(ctx context.Context, p *Profile) (*Profile, error) {
	if p.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if err := s.EnsureProfile(ctx, p.UserID); err != nil {
		return nil, err
	}
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
