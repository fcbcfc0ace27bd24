package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/AnshRaj112/researchhive-backend/internal/auth"
	"github.com/AnshRaj112/researchhive-backend/internal/metrics"
	"github.com/AnshRaj112/researchhive-backend/internal/models"
	"github.com/AnshRaj112/researchhive-backend/internal/storage"
	"github.com/AnshRaj112/researchhive-backend/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RegisterInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput identifies the account by email or username.
type LoginInput struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`

	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type AuthService struct {
	users    storage.Users
	tokens   *auth.JWTManager
	sessions *SessionStore
	devices  *DeviceLog
}

// NewAuthService builds the account service. devices may be nil when PostgreSQL is not configured.
func NewAuthService(users storage.Users, tokens *auth.JWTManager, sessions *SessionStore, devices *DeviceLog) *AuthService {
	return &AuthService{users: users, tokens: tokens, sessions: sessions, devices: devices}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := utils.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := utils.Required("name", in.Name); err != nil {
		return nil, err
	}
	if err := utils.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if len(in.Password) < utils.MinPasswordLength {
		return nil, utils.Invalid("password", "Password must be at least 8 characters")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: utils.NormalizeUsername(in.Username),
		Name:     strings.TrimSpace(in.Name),
		Email:    utils.NormalizeEmail(in.Email),
		Password: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, utils.Invalid("username", "Username or email already registered")
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials, issues a token and opens its session.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, *models.User, error) {
	if in.Password == "" || (strings.TrimSpace(in.Email) == "" && strings.TrimSpace(in.Username) == "") {
		return "", nil, utils.Invalid("credentials", "Email or username and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.TrimSpace(in.Email) != "" {
		user, err = s.users.GetUserByEmail(ctx, utils.NormalizeEmail(in.Email))
	} else {
		user, err = s.users.GetUserByUsername(ctx, utils.NormalizeUsername(in.Username))
	}
	if errors.Is(err, storage.ErrNotFound) {
		metrics.Logins.WithLabelValues("unknown_user").Inc()
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}

	ok, err := utils.VerifyPassword(in.Password, user.Password)
	if err != nil || !ok {
		metrics.Logins.WithLabelValues("bad_password").Inc()
		return "", nil, ErrInvalidCredentials
	}

	if utils.NeedsRehash(user.Password) {
		if hash, err := utils.HashPassword(in.Password); err == nil {
			if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
				slog.Warn("password rehash failed", "user_id", user.ID.Hex(), "error", err)
			} else {
				user.Password = hash
			}
		}
	}

	token, claims, err := s.tokens.Generate(user)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Create(ctx, claims.UserID, claims.ID); err != nil {
		return "", nil, err
	}

	if s.devices != nil {
		device := models.LoginDevice{
			UserID:      claims.UserID,
			DeviceToken: claims.ID,
			IPAddress:   in.IPAddress,
			UserAgent:   in.UserAgent,
		}
		if err := s.devices.Record(ctx, device); err != nil {
			slog.Warn("failed to record login device", "user_id", claims.UserID, "error", err)
		}
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	return token, user, nil
}

// Authenticate resolves a bearer token to its principal. The token must be valid and its session live.
func (s *AuthService) Authenticate(ctx context.Context, token string) (auth.Principal, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return auth.Principal{}, errors.Join(ErrUnauthorized, err)
	}
	userID, ok, err := s.sessions.Validate(ctx, claims.ID)
	if err != nil {
		return auth.Principal{}, err
	}
	if !ok || userID != claims.UserID {
		return auth.Principal{}, ErrUnauthorized
	}
	oid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return auth.Principal{}, ErrUnauthorized
	}
	return auth.Principal{UserID: oid, Username: claims.Username, SessionID: claims.ID}, nil
}

func (s *AuthService) Logout(ctx context.Context, p auth.Principal) error {
	return s.sessions.Invalidate(ctx, p.SessionID)
}

// Me returns the caller's account.
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (*models.User, error) {
	user, err := s.users.GetUser(ctx, p.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return user, err
}
