package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/25x8/raffledesk/internal/raffledesk/models"
	"github.com/25x8/raffledesk/internal/raffledesk/repository"
	"github.com/25x8/raffledesk/internal/raffledesk/token"
	"golang.org/x/crypto/bcrypt"
)

// AuthService authenticates staff and gates administrator operations
type AuthService struct {
	repo   repository.Repository
	tokens *token.Manager
	logger *slog.Logger

	// HashCost is the bcrypt cost used for new passwords.
	HashCost int
}

func NewAuthService(repo repository.Repository, tokens *token.Manager, logger *slog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, logger: logger, HashCost: bcrypt.DefaultCost}
}

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// compareDummy burns the same bcrypt work for unknown users
func compareDummy(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("raffledesk-dummy"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// Login checks a credential pair and issues a session token
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.LoginResult, error) {
	log := s.logger.With("context", "Login", "username", username)

	if username == "" || password == "" {
		var missing []string
		if username == "" {
			missing = append(missing, "username")
		}
		if password == "" {
			missing = append(missing, "password")
		}
		return nil, models.MissingFields(missing...)
	}

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if user == nil {
		compareDummy(password)
		log.Warn("Login failed")
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn("Login failed")
		return nil, models.ErrInvalidCredentials
	}

	session := models.Session{UserID: user.ID, Username: user.Username, Role: user.Role}
	signed, err := s.tokens.Generate(session)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	log.Info("Login successful", "userID", user.ID)
	return &models.LoginResult{Token: signed, User: session}, nil
}

// Authenticate verifies a session token and that its user still exists
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*models.Session, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("%w: token not provided", models.ErrAuthentication)
	}

	session, err := s.tokens.Parse(tokenString)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: unknown user", models.ErrAuthentication)
	}

	return session, nil
}

// AuthorizeAdmin grants administrator capability to an admin session
func (s *AuthService) AuthorizeAdmin(session *models.Session) (models.AdminGrant, error) {
	if session == nil {
		return models.AdminGrant{}, fmt.Errorf("%w: no session", models.ErrAuthentication)
	}
	if session.Role != models.RoleAdmin {
		return models.AdminGrant{}, fmt.Errorf("%w: administrator role required", models.ErrAuthorization)
	}
	return models.AdminGrant{UserID: session.UserID, Username: session.Username}, nil
}

// CreateUser registers a new staff account
func (s *AuthService) CreateUser(ctx context.Context, grant models.AdminGrant, in models.NewUser) (int64, error) {
	log := s.logger.With("context", "CreateUser", "admin", grant.Username)

	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.HashCost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.CreateUser(ctx, in.Username, string(hash), in.Role)
	if err != nil {
		log.Warn("CreateUser failed", "username", in.Username, "error", err)
		return 0, err
	}

	log.Info("User created", "userID", id, "username", in.Username, "role", in.Role)
	return id, nil
}
