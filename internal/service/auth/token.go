package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mkuznecov/blogplatform/internal/models"
)

const (
	defaultSigningMethod   = "HS256"
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 30 * 24 * time.Hour
)

type AccessClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"userId"`
	Login  string    `json:"login"`
	Email  string    `json:"email"`
}

// RefreshClaims binds the token to one device session. SessionCreatedAt is
// the rotation fingerprint in unix milliseconds: the token is valid only
// while the stored session still carries exactly this value
type RefreshClaims struct {
	jwt.RegisteredClaims
	UserID           uuid.UUID `json:"userId"`
	Login            string    `json:"login"`
	Email            string    `json:"email"`
	DeviceID         uuid.UUID `json:"deviceId"`
	DeviceName       string    `json:"deviceName"`
	DeviceIP         string    `json:"deviceIp"`
	SessionCreatedAt int64     `json:"sessionCreatedAt"`
}

// Token manager configuration with sensible defaults
type TokenConfig struct {
	// Secret keys to sign access and refresh tokens
	// Both required, must differ
	AccessSecret  string
	RefreshSecret string

	// JWT MAC (Message Authentication Code) algorithm
	// If not set then default is used
	Alg string

	// Access and refresh token lifetimes
	// If not set then defaults are used
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenManager signs and verifies access and refresh tokens.
// Stateless: validity of the payload against stored sessions is the auth
// service's concern
type TokenManager struct {
	accessKey  string
	refreshKey string

	alg jwt.SigningMethod

	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("both access and refresh secret keys must not be empty")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh secret keys must differ")
	}

	if cfg.Alg == "" {
		cfg.Alg = defaultSigningMethod
	}

	setDefaultDuration := func(field *time.Duration, def time.Duration) {
		if *field == 0 {
			*field = def
		}
	}
	setDefaultDuration(&cfg.AccessTTL, defaultAccessTokenTTL)
	setDefaultDuration(&cfg.RefreshTTL, defaultRefreshTokenTTL)

	return &TokenManager{
		accessKey:  cfg.AccessSecret,
		refreshKey: cfg.RefreshSecret,
		alg:        jwt.GetSigningMethod(cfg.Alg),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}, nil
}

func (m *TokenManager) SignAccess(user models.User) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.accessTTL)

	token := jwt.NewWithClaims(
		m.alg,
		AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID: user.ID,
			Login:  user.Login,
			Email:  user.Email,
		},
	)

	signed, err := token.SignedString([]byte(m.accessKey))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing access token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

func (m *TokenManager) SignRefresh(user models.User, session models.DeviceSession) (models.IssuedToken, error) {
	now := time.Now().Truncate(time.Second)
	expiresAt := now.Add(m.refreshTTL)

	token := jwt.NewWithClaims(
		m.alg,
		RefreshClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
			UserID:           user.ID,
			Login:            user.Login,
			Email:            user.Email,
			DeviceID:         session.DeviceID,
			DeviceName:       session.DeviceName,
			DeviceIP:         session.DeviceIP,
			SessionCreatedAt: session.CreatedAt.UnixMilli(),
		},
	)

	signed, err := token.SignedString([]byte(m.refreshKey))
	if err != nil {
		return models.IssuedToken{}, fmt.Errorf("error while signing refresh token. Err: %w", err)
	}

	return models.IssuedToken{Value: signed, ExpiresAt: expiresAt}, nil
}

// Parse and validate access token
func (m *TokenManager) ParseAccess(access string) (AccessClaims, error) {
	claims := &AccessClaims{}

	_, err := jwt.ParseWithClaims(
		access,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.accessKey), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return AccessClaims{}, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	if claims.UserID == uuid.Nil {
		return AccessClaims{}, errors.New("access token misses required claims")
	}

	return *claims, nil
}

// Parse and validate refresh token
func (m *TokenManager) ParseRefresh(refresh string) (RefreshClaims, error) {
	claims := &RefreshClaims{}

	_, err := jwt.ParseWithClaims(
		refresh,
		claims,
		func(t *jwt.Token) (any, error) { return []byte(m.refreshKey), nil },
		jwt.WithValidMethods([]string{m.alg.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return RefreshClaims{}, fmt.Errorf("error while parsing or validating token. Err: %w", err)
	}

	if claims.UserID == uuid.Nil || claims.DeviceID == uuid.Nil || claims.SessionCreatedAt == 0 {
		return RefreshClaims{}, errors.New("refresh token misses required claims")
	}

	return *claims, nil
}
