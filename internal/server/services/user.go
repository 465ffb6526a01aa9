// Package services contains server-side business logic. This file implements
// UserService, which handles registration, credential checks, durable token
// issuance, and profile management.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/recipevault/internal/common"
	"github.com/dmitrijs2005/recipevault/internal/server/config"
	"github.com/dmitrijs2005/recipevault/internal/server/models"
	"github.com/dmitrijs2005/recipevault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipevault/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 5

// tokenByteLength is the number of random bytes behind an auth token; the
// hex-encoded token string is twice as long.
const tokenByteLength = 32

// UserService provides identity operations:
// - Register: create users with hashed passwords
// - Login: verify credentials and return the user's durable token
// - GetByToken: resolve a presented token into a user
// - Profile/UpdateProfile: read and mutate the caller's own record
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bcryptCost  int

	// dummyHash is compared against when the email is unknown, so a login
	// probe costs the same whether or not the account exists.
	dummyHash []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("recipevault-dummy"), cfg.BcryptCost)
	if err != nil {
		// only possible with an out-of-range cost
		panic(err)
	}
	return &UserService{
		db:          db,
		repomanager: m,
		bcryptCost:  cfg.BcryptCost,
		dummyHash:   dummy,
	}
}

// Register creates a new active user. The password is bcrypt-hashed before it
// reaches the repository; a duplicate email (including a lost race on the
// unique constraint) comes back as a field-keyed validation error.
func (s *UserService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.createUser(ctx, email, password, name, false)
}

// CreateSuperuser creates an active user with the staff and superuser flags
// set. Used by the operator CLI, not reachable over the API.
func (s *UserService) CreateSuperuser(ctx context.Context, email, password, name string) (*models.User, error) {
	return s.createUser(ctx, email, password, name, true)
}

func (s *UserService) createUser(ctx context.Context, email, password, name string, super bool) (*models.User, error) {
	ve := common.NewValidationError()
	validation.Required(ve, "email", email)
	if email != "" {
		validation.Email(ve, "email", email)
		validation.MaxLen(ve, "email", email, validation.MaxNameLength)
	}
	validation.MinLen(ve, "password", password, MinPasswordLength)
	validation.MaxLen(ve, "name", name, validation.MaxNameLength)
	if !ve.Empty() {
		return nil, ve
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		IsActive:     true,
		IsStaff:      super,
		IsSuperuser:  super,
	}

	repo := s.repomanager.Users(s.db)
	created, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			ve.Add("email", "user with this email already exists")
			return nil, ve
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return created, nil
}

// Login verifies the email/password pair and returns the user's durable
// opaque token, creating one on first login. Failures carry a single generic
// error so callers cannot probe which emails are registered.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// burn a comparison so unknown emails are not faster
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", common.ErrorInvalidCredentials
		}
		return "", common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrorInvalidCredentials
	}
	if !user.IsActive {
		return "", common.ErrorInvalidCredentials
	}

	candidate, err := makeRandHexString(tokenByteLength)
	if err != nil {
		return "", common.ErrorInternal
	}

	token, err := s.repomanager.Tokens(s.db).GetOrCreate(ctx, user.ID, candidate)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// GetByToken resolves a presented token into the owning user. Unknown tokens
// and deactivated users both yield ErrorUnauthenticated.
func (s *UserService) GetByToken(ctx context.Context, token string) (*models.User, error) {
	authToken, err := s.repomanager.Tokens(s.db).GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, common.ErrorInternal
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, authToken.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, common.ErrorInternal
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthenticated
	}
	return user, nil
}

// Profile returns the caller's own user record.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, common.ErrorInternal
	}
	return user, nil
}

// UpdateProfile changes the caller's name and/or password. A nil field is left
// untouched; the password is re-hashed only when supplied. No other field is
// mutable through this path.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, name, password *string) (*models.User, error) {
	ve := common.NewValidationError()
	if name != nil {
		validation.MaxLen(ve, "name", *name, validation.MaxNameLength)
	}
	if password != nil {
		validation.MinLen(ve, "password", *password, MinPasswordLength)
	}
	if !ve.Empty() {
		return nil, ve
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthenticated
		}
		return nil, common.ErrorInternal
	}

	if name != nil {
		user.Name = *name
	}
	if password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*password), s.bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hashing password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := repo.Update(ctx, user); err != nil {
		return nil, common.ErrorInternal
	}
	return user, nil
}

func makeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
