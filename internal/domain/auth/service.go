package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/apperror"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/id"
	"github.com/alenprastyaa/hakimah-laporan-harian/internal/core/tx"
	"github.com/alenprastyaa/hakimah-laporan-harian/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	BcryptCost int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{BcryptCost: bcrypt.DefaultCost}
}

// Service provides user management and authentication.
type Service struct {
	userRepo   UserRepository
	txManager  tx.Manager
	jwtService *JWTService
	config     ServiceConfig
}

// NewService creates a new auth service.
func NewService(userRepo UserRepository, txManager tx.Manager, jwtService *JWTService, config ServiceConfig) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:   userRepo,
		txManager:  txManager,
		jwtService: jwtService,
		config:     config,
	}
}

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	passwordHash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	user := NewUser(req.Username, passwordHash, req.Role)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		taken, err := s.userRepo.UsernameTaken(ctx, req.Username, nil)
		if err != nil {
			return fmt.Errorf("check username: %w", err)
		}
		if taken {
			return apperror.NewDuplicate("user", "username", req.Username)
		}
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown users and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, apperror.NewValidation("username and password are required")
	}

	user, err := s.userRepo.GetByUsername(ctx, creds.Username)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Me returns the caller's profile with assigned stores.
func (s *Service) Me(ctx context.Context) (*Profile, error) {
	userID, err := CallerID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	storeIDs, err := s.userRepo.StoreIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load store ids: %w", err)
	}
	return &Profile{User: *user, StoreIDs: storeIDs}, nil
}

// ListUsers returns every user.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.userRepo.List(ctx)
}

// GetUser returns a user by id.
func (s *Service) GetUser(ctx context.Context, userID id.ID) (*User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// ListEmployees returns employees; assigned filters by store assignment.
func (s *Service) ListEmployees(ctx context.Context, assigned *bool) ([]Employee, error) {
	return s.userRepo.ListEmployees(ctx, assigned)
}

// UpdateUser applies a partial update.
func (s *Service) UpdateUser(ctx context.Context, userID id.ID, req UpdateUserRequest) (*User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var newHash string
	if req.Password != nil {
		h, err := s.hash(*req.Password)
		if err != nil {
			return nil, err
		}
		newHash = h
	}

	var updated *User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if req.Username != nil && *req.Username != user.Username {
			taken, err := s.userRepo.UsernameTaken(ctx, *req.Username, &userID)
			if err != nil {
				return fmt.Errorf("check username: %w", err)
			}
			if taken {
				return apperror.NewDuplicate("user", "username", *req.Username)
			}
			user.Username = *req.Username
		}
		if req.Role != nil {
			user.Role = *req.Role
		}
		if newHash != "" {
			user.PasswordHash = newHash
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user updated", "user_id", userID)
	return updated, nil
}

// DeleteUser removes a user. Reports the user authored are kept; the
// count is logged so orphaned authorship can be traced.
func (s *Service) DeleteUser(ctx context.Context, userID id.ID) error {
	var authored int
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := s.userRepo.CountAuthoredReports(ctx, userID)
		if err != nil {
			return fmt.Errorf("count authored reports: %w", err)
		}
		authored = n
		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	if authored > 0 {
		logger.Warn(ctx, "deleted user still referenced by reports", "user_id", userID, "reports", authored)
	}
	logger.Info(ctx, "user deleted", "user_id", userID)
	return nil
}

// JWT returns the token service used by the authentication middleware.
func (s *Service) JWT() *JWTService {
	return s.jwtService
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", apperror.NewInvalidInput("password", "password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
