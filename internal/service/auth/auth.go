package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/logger"
	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository"
)

const (
	defaultRefreshCookieName = "refreshToken"
	defaultRefreshCookiePath = "/api"
	defaultConfirmCodeTTL    = 24 * time.Hour
	defaultAccessAuthScheme  = "Bearer"
	defaultDeviceName        = "unknown device"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during registration and login
	// Defaults to BcryptHasher
	Hasher PasswordHasher

	// Sender for registration confirmation codes
	// Defaults to LogSender
	Sender ConfirmationSender

	// How long a registration confirmation code stays valid
	ConfirmCodeTTL time.Duration

	// Cookie the refresh token travels in. The path must cover every
	// refresh-guarded route: auth refresh/logout and the device management
	// surface
	RefreshCookieName string
	RefreshCookiePath string
}

// AuthService orchestrates login, refresh and logout over device sessions.
//
// Each login creates one session row keyed by (userId, deviceId); the row's
// created_at is the rotation fingerprint embedded into the refresh token.
// A refresh is valid only while the embedded fingerprint still matches the
// stored one, and every successful refresh moves the stored value forward,
// which retires the token that was just presented
type AuthService struct {
	token    *TokenManager
	hasher   PasswordHasher
	sender   ConfirmationSender
	users    repository.UserRepo
	sessions repository.SessionRepo

	confirmCodeTTL    time.Duration
	refreshCookieName string
	refreshCookiePath string
}

func NewService(cfg Config, token *TokenManager, users repository.UserRepo, sessions repository.SessionRepo, log logger.Logger) (*AuthService, error) {
	if token == nil {
		return nil, errors.New("token manager must not be nil")
	}
	if users == nil || sessions == nil {
		return nil, errors.New("repos must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	sender := cfg.Sender
	if sender == nil {
		if log == nil {
			log = logger.NewNoOp()
		}
		sender = LogSender{Logger: log}
	}

	if cfg.ConfirmCodeTTL == 0 {
		cfg.ConfirmCodeTTL = defaultConfirmCodeTTL
	}
	if cfg.RefreshCookieName == "" {
		cfg.RefreshCookieName = defaultRefreshCookieName
	}
	if cfg.RefreshCookiePath == "" {
		cfg.RefreshCookiePath = defaultRefreshCookiePath
	}

	return &AuthService{
		token:             token,
		hasher:            hasher,
		sender:            sender,
		users:             users,
		sessions:          sessions,
		confirmCodeTTL:    cfg.ConfirmCodeTTL,
		refreshCookieName: cfg.RefreshCookieName,
		refreshCookiePath: cfg.RefreshCookiePath,
	}, nil
}

// Register creates an unconfirmed user and sends them a confirmation code
func (s *AuthService) Register(ctx context.Context, login string, email string, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	user, err := s.users.Create(ctx, models.User{
		Login:            login,
		Email:            email,
		HashedPassword:   hash,
		Confirmed:        false,
		ConfirmCode:      uuid.New(),
		ConfirmExpiresAt: time.Now().Add(s.confirmCodeTTL),
	})
	if err != nil {
		return err
	}

	return s.sender.SendConfirmation(ctx, user.Email, user.ConfirmCode)
}

// ConfirmRegistration activates the account the code was issued for
func (s *AuthService) ConfirmRegistration(ctx context.Context, code uuid.UUID) error {
	user, err := s.users.GetByConfirmCode(ctx, code)
	if err != nil {
		return err
	}

	switch {
	case user.Confirmed:
		return apperrors.ErrAlreadyConfirmed
	case user.ConfirmExpiresAt.Before(time.Now()):
		return apperrors.ErrConfirmCodeExpired
	}

	return s.users.Confirm(ctx, user.ID)
}

// ResendConfirmation replaces the user confirmation code and sends it again
func (s *AuthService) ResendConfirmation(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}

	if user.Confirmed {
		return apperrors.ErrAlreadyConfirmed
	}

	code := uuid.New()
	err = s.users.SetConfirmCode(ctx, user.ID, code, time.Now().Add(s.confirmCodeTTL))
	if err != nil {
		return err
	}

	return s.sender.SendConfirmation(ctx, email, code)
}

// Login verifies credentials and starts a new device session.
// A new session never displaces the user's other devices: deviceId is
// freshly generated, so every login is additive
func (s *AuthService) Login(ctx context.Context, loginOrEmail string, password string, device models.DeviceMeta) (models.TokenPair, error) {
	var pair models.TokenPair

	user, err := s.users.GetByLoginOrEmail(ctx, loginOrEmail)
	if err != nil {
		// Unknown user and wrong password answer the same
		return pair, apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return pair, apperrors.ErrInvalidCredentials
	}

	if !user.Confirmed {
		return pair, apperrors.ErrInvalidCredentials
	}

	if device.Name == "" {
		device.Name = defaultDeviceName
	}

	session := models.DeviceSession{
		UserID:     user.ID,
		DeviceID:   uuid.New(),
		DeviceName: device.Name,
		DeviceIP:   device.IP,
		// The comparison against the token payload is millisecond-exact,
		// so the stored value must not carry sub-millisecond digits
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	err = s.sessions.Create(ctx, session)
	if err != nil {
		// deviceId is random, a collision here means something is badly off
		return pair, fmt.Errorf("error while creating device session. Err: %w", err)
	}

	return s.issuePair(user, session)
}

// Refresh rotates the session fingerprint and issues a new token pair.
// The presented refresh token becomes permanently unusable: its embedded
// fingerprint no longer matches the rotated session
func (s *AuthService) Refresh(ctx context.Context, refresh string) (models.TokenPair, error) {
	var pair models.TokenPair

	claims, session, err := s.checkRefresh(ctx, refresh)
	if err != nil {
		return pair, apperrors.ErrUnauthorized
	}

	// Conditional update: if another refresh or a logout got here first the
	// store reports not found and this caller loses
	next := time.Now().UTC().Truncate(time.Millisecond)
	err = s.sessions.Rotate(ctx, claims.UserID, claims.DeviceID, session.CreatedAt, next)
	if err != nil {
		return pair, apperrors.ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return pair, apperrors.ErrUnauthorized
	}

	session.CreatedAt = next
	return s.issuePair(user, session)
}

// CheckRefresh validates a refresh token against the stored session without
// rotating it. Used by the refresh guard: logout and device management need
// a proven (userId, deviceId) but must not consume the token
func (s *AuthService) CheckRefresh(ctx context.Context, refresh string) (RefreshClaims, error) {
	claims, _, err := s.checkRefresh(ctx, refresh)
	if err != nil {
		return RefreshClaims{}, apperrors.ErrUnauthorized
	}
	return claims, nil
}

// checkRefresh runs the refresh validation chain: signature and expiry,
// session existence, millisecond-exact fingerprint match
func (s *AuthService) checkRefresh(ctx context.Context, refresh string) (RefreshClaims, models.DeviceSession, error) {
	claims, err := s.token.ParseRefresh(refresh)
	if err != nil {
		return claims, models.DeviceSession{}, err
	}

	session, err := s.sessions.Get(ctx, claims.UserID, claims.DeviceID)
	if err != nil {
		return claims, session, err
	}

	if !session.CreatedAt.Equal(time.UnixMilli(claims.SessionCreatedAt)) {
		// The token was already rotated away: replay
		return claims, session, apperrors.ErrUnauthorized
	}

	return claims, session, nil
}

// Logout revokes the device session. Revoking an already revoked session is
// a no-op success
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) error {
	err := s.sessions.Delete(ctx, userID, deviceID)
	if errors.Is(err, apperrors.ErrSessionNotFound) {
		return nil
	}
	return err
}

// Authenticate resolves the user behind the request's bearer access token.
// No session store lookup here: this is the hot path, signature and expiry
// plus a user existence check are enough
func (s *AuthService) Authenticate(ctx context.Context, r *http.Request) (models.User, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, defaultAccessAuthScheme) {
		return models.User{}, apperrors.ErrUnauthorized
	}

	claims, err := s.token.ParseAccess(token)
	if err != nil {
		return models.User{}, apperrors.ErrUnauthorized
	}

	// A valid token may outlive its user
	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return models.User{}, apperrors.ErrUnauthorized
	}

	return user, nil
}

// ListDevices returns all active sessions of the user
func (s *AuthService) ListDevices(ctx context.Context, userID uuid.UUID) ([]models.DeviceSession, error) {
	return s.sessions.ListByUser(ctx, userID)
}

// TerminateDevice revokes one session by deviceId.
// Returns ErrSessionNotFound for an unknown device and ErrForbidden when the
// device belongs to another user
func (s *AuthService) TerminateDevice(ctx context.Context, userID uuid.UUID, deviceID uuid.UUID) error {
	session, err := s.sessions.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return err
	}

	if session.UserID != userID {
		return apperrors.ErrForbidden
	}

	return s.sessions.Delete(ctx, userID, deviceID)
}

// TerminateOtherDevices revokes every user session except the calling one
func (s *AuthService) TerminateOtherDevices(ctx context.Context, userID uuid.UUID, keepDeviceID uuid.UUID) error {
	return s.sessions.DeleteOthers(ctx, userID, keepDeviceID)
}

// SetRefreshCookie puts the refresh token into its scoped httpOnly cookie
func (s *AuthService) SetRefreshCookie(w http.ResponseWriter, refresh models.IssuedToken) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    refresh.Value,
		Path:     s.refreshCookiePath,
		Expires:  refresh.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ClearRefreshCookie drops the refresh cookie on logout
func (s *AuthService) ClearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.refreshCookieName,
		Value:    "",
		Path:     s.refreshCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// ReadRefreshToken extracts the refresh token string from the request cookie
func (s *AuthService) ReadRefreshToken(r *http.Request) (string, error) {
	cookie, err := r.Cookie(s.refreshCookieName)
	if err != nil {
		return "", apperrors.ErrUnauthorized
	}
	return cookie.Value, nil
}

func (s *AuthService) issuePair(user models.User, session models.DeviceSession) (models.TokenPair, error) {
	access, err := s.token.SignAccess(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := s.token.SignRefresh(user, session)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{Access: access, Refresh: refresh}, nil
}

// DeviceMetaFromRequest builds device metadata from what the transport knows
// about the client
func DeviceMetaFromRequest(r *http.Request) models.DeviceMeta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}

	return models.DeviceMeta{
		Name: r.UserAgent(),
		IP:   ip,
	}
}
