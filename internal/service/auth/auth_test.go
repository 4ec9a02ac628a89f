package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/blogplatform/internal/apperrors"
	"github.com/mkuznecov/blogplatform/internal/models"
	"github.com/mkuznecov/blogplatform/internal/repository/postgres"
	"github.com/mkuznecov/blogplatform/internal/testutil"
)

// recordingSender keeps issued confirmation codes so tests can use them
type recordingSender struct {
	codes map[string]uuid.UUID
}

func (s *recordingSender) SendConfirmation(_ context.Context, email string, code uuid.UUID) error {
	s.codes[email] = code
	return nil
}

func Test_Auth(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	testDevice := models.DeviceMeta{Name: "Chrome on Linux", IP: "192.168.1.10"}

	// Begin new db transaction and create new AuthService
	// Rollback transaction when test stops
	withService := func(t *testing.T, dbpool *pgxpool.Pool, cfg Config, fn func(s *AuthService, sender *recordingSender)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			sender := &recordingSender{codes: map[string]uuid.UUID{}}
			cfg.Sender = sender

			tokenManager, err := NewTokenManager(TokenConfig{
				AccessSecret:  "test-access-key",
				RefreshSecret: "test-refresh-key",
			})
			require.NoError(t, err, "token manager should be created without errors")

			s, err := NewService(cfg, tokenManager, &postgres.UserRepo{DB: tx}, &postgres.SessionRepo{DB: tx}, nil)
			require.NoError(t, err, "auth service couldn't be started")

			fn(s, sender)
		})
	}

	// Register and confirm a user, ready to log in
	registerConfirmed := func(t *testing.T, s *AuthService, sender *recordingSender, login string) {
		t.Helper()

		err := s.Register(t.Context(), login, login+"@example.com", "pwd123456")
		require.NoError(t, err, "registering new user should be ok")

		err = s.ConfirmRegistration(t.Context(), sender.codes[login+"@example.com"])
		require.NoError(t, err, "confirmation with the sent code should be ok")
	}

	t.Run("new auth service defaults", func(t *testing.T) {
		tokenManager, err := NewTokenManager(TokenConfig{AccessSecret: "a", RefreshSecret: "r"})
		require.NoError(t, err)

		s, err := NewService(Config{}, tokenManager, &postgres.UserRepo{}, &postgres.SessionRepo{}, nil)
		require.NoError(t, err, "auth service should be created without errors")

		require.Equal(t, defaultRefreshCookieName, s.refreshCookieName, "default refresh cookie name should be set")
		require.Equal(t, "/api", s.refreshCookiePath, "default cookie path must cover the refresh-guarded routes, device management included")
		require.Equal(t, defaultConfirmCodeTTL, s.confirmCodeTTL)
		require.Equal(t, BcryptHasher{}, s.hasher, "default hasher should be set to BcryptHasher")
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("new user gets confirmation code", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				err := s.Register(t.Context(), "newuser", "newuser@example.com", "pwd123456")

				require.NoError(t, err)
				require.Contains(t, sender.codes, "newuser@example.com", "confirmation code must be sent")
			})
		})

		t.Run("fail if login taken", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				require.NoError(t, s.Register(t.Context(), "taken", "first@example.com", "pwd123456"))

				err := s.Register(t.Context(), "taken", "second@example.com", "pwd123456")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrLoginAlreadyExists)
			})
		})

		t.Run("fail if email taken", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				require.NoError(t, s.Register(t.Context(), "first", "shared@example.com", "pwd123456"))

				err := s.Register(t.Context(), "second", "shared@example.com", "pwd123456")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
			})
		})
	})

	t.Run("ConfirmRegistration", func(t *testing.T) {
		t.Run("unknown code", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				err := s.ConfirmRegistration(t.Context(), uuid.New())

				require.ErrorIs(t, err, apperrors.ErrConfirmCodeNotFound)
			})
		})

		t.Run("expired code", func(t *testing.T) {
			withService(t, pg.Pool, Config{ConfirmCodeTTL: -time.Minute}, func(s *AuthService, sender *recordingSender) {
				require.NoError(t, s.Register(t.Context(), "lateuser", "late@example.com", "pwd123456"))

				err := s.ConfirmRegistration(t.Context(), sender.codes["late@example.com"])

				require.ErrorIs(t, err, apperrors.ErrConfirmCodeExpired)
			})
		})
	})

	t.Run("ResendConfirmation", func(t *testing.T) {
		t.Run("replaces the code", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				require.NoError(t, s.Register(t.Context(), "resend", "resend@example.com", "pwd123456"))
				oldCode := sender.codes["resend@example.com"]

				require.NoError(t, s.ResendConfirmation(t.Context(), "resend@example.com"))
				newCode := sender.codes["resend@example.com"]
				require.NotEqual(t, oldCode, newCode, "resending must issue a fresh code")

				// The old code is gone, the new one works
				require.ErrorIs(t, s.ConfirmRegistration(t.Context(), oldCode), apperrors.ErrConfirmCodeNotFound)
				require.NoError(t, s.ConfirmRegistration(t.Context(), newCode))
			})
		})

		t.Run("unknown email", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				err := s.ResendConfirmation(t.Context(), "nobody@example.com")

				require.ErrorIs(t, err, apperrors.ErrUserNotFound)
			})
		})

		t.Run("already confirmed", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "done")

				err := s.ResendConfirmation(t.Context(), "done@example.com")

				require.ErrorIs(t, err, apperrors.ErrAlreadyConfirmed)
			})
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("by login and by email", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "flexible")

				pair, err := s.Login(t.Context(), "flexible", "pwd123456", testDevice)
				require.NoError(t, err)
				require.NotEmpty(t, pair.Access.Value, "access token should not be empty")
				require.NotEmpty(t, pair.Refresh.Value, "refresh token should not be empty")

				_, err = s.Login(t.Context(), "flexible@example.com", "pwd123456", testDevice)
				require.NoError(t, err)
			})
		})

		t.Run("failures answer the same", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "victim")
				require.NoError(t, s.Register(t.Context(), "pending", "pending@example.com", "pwd123456"))

				tests := []struct {
					name     string
					login    string
					password string
				}{
					{name: "unknown user", login: "nobody", password: "pwd123456"},
					{name: "wrong password", login: "victim", password: "wrong"},
					{name: "unconfirmed user", login: "pending", password: "pwd123456"},
				}

				for _, tt := range tests {
					t.Run(tt.name, func(t *testing.T) {
						_, err := s.Login(t.Context(), tt.login, tt.password, testDevice)

						require.Error(t, err)
						require.ErrorIs(t, err, apperrors.ErrInvalidCredentials, "every login failure must look identical")
					})
				}
			})
		})

		t.Run("every login adds a device", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "multidevice")

				_, err := s.Login(t.Context(), "multidevice", "pwd123456", models.DeviceMeta{Name: "laptop", IP: "10.0.0.1"})
				require.NoError(t, err)
				pair, err := s.Login(t.Context(), "multidevice", "pwd123456", models.DeviceMeta{Name: "phone", IP: "10.0.0.2"})
				require.NoError(t, err)

				claims, err := s.token.ParseRefresh(pair.Refresh.Value)
				require.NoError(t, err)

				sessions, err := s.ListDevices(t.Context(), claims.UserID)
				require.NoError(t, err)
				require.Len(t, sessions, 2, "logins must not displace each other")
			})
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("issues fresh pair", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "refresher")
				pair, err := s.Login(t.Context(), "refresher", "pwd123456", testDevice)
				require.NoError(t, err)

				time.Sleep(2 * time.Millisecond) // the fingerprint is millisecond-grained

				next, err := s.Refresh(t.Context(), pair.Refresh.Value)

				require.NoError(t, err)
				require.NotEmpty(t, next.Access.Value)
				require.NotEqual(t, pair.Refresh.Value, next.Refresh.Value, "refresh token must be replaced")
			})
		})

		t.Run("refresh token is single use", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "singleuse")
				pair, err := s.Login(t.Context(), "singleuse", "pwd123456", testDevice)
				require.NoError(t, err)

				time.Sleep(2 * time.Millisecond)

				next, err := s.Refresh(t.Context(), pair.Refresh.Value)
				require.NoError(t, err)

				// Replay of the consumed token
				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUnauthorized, "replayed refresh token must be rejected")

				// The fresh one still works
				time.Sleep(2 * time.Millisecond)
				_, err = s.Refresh(t.Context(), next.Refresh.Value)
				require.NoError(t, err)
			})
		})

		t.Run("garbage token", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				_, err := s.Refresh(t.Context(), "not-even-a-jwt")

				require.ErrorIs(t, err, apperrors.ErrUnauthorized)
			})
		})

		t.Run("refresh does not touch other devices", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "twodevices")
				laptop, err := s.Login(t.Context(), "twodevices", "pwd123456", models.DeviceMeta{Name: "laptop", IP: "10.0.0.1"})
				require.NoError(t, err)
				phone, err := s.Login(t.Context(), "twodevices", "pwd123456", models.DeviceMeta{Name: "phone", IP: "10.0.0.2"})
				require.NoError(t, err)

				time.Sleep(2 * time.Millisecond)

				_, err = s.Refresh(t.Context(), laptop.Refresh.Value)
				require.NoError(t, err)

				// The phone session is untouched, its token still refreshes
				_, err = s.Refresh(t.Context(), phone.Refresh.Value)
				require.NoError(t, err, "rotating one device must not revoke another")
			})
		})
	})

	t.Run("CheckRefresh", func(t *testing.T) {
		t.Run("does not consume the token", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "checker")
				pair, err := s.Login(t.Context(), "checker", "pwd123456", testDevice)
				require.NoError(t, err)

				for range 3 {
					claims, err := s.CheckRefresh(t.Context(), pair.Refresh.Value)
					require.NoError(t, err, "check must be repeatable")
					assert.NotEqual(t, uuid.Nil, claims.UserID)
					assert.NotEqual(t, uuid.Nil, claims.DeviceID)
				}

				// And the token still rotates fine afterwards
				time.Sleep(2 * time.Millisecond)
				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				require.NoError(t, err)
			})
		})

		t.Run("rejects rotated token", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "rotated")
				pair, err := s.Login(t.Context(), "rotated", "pwd123456", testDevice)
				require.NoError(t, err)

				time.Sleep(2 * time.Millisecond)
				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				require.NoError(t, err)

				_, err = s.CheckRefresh(t.Context(), pair.Refresh.Value)
				require.ErrorIs(t, err, apperrors.ErrUnauthorized)
			})
		})
	})

	t.Run("Logout", func(t *testing.T) {
		t.Run("revokes the session", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "leaver")
				pair, err := s.Login(t.Context(), "leaver", "pwd123456", testDevice)
				require.NoError(t, err)

				claims, err := s.token.ParseRefresh(pair.Refresh.Value)
				require.NoError(t, err)

				require.NoError(t, s.Logout(t.Context(), claims.UserID, claims.DeviceID))

				_, err = s.Refresh(t.Context(), pair.Refresh.Value)
				require.ErrorIs(t, err, apperrors.ErrUnauthorized, "refresh after logout must fail")
			})
		})

		t.Run("idempotent", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "doubleout")
				pair, err := s.Login(t.Context(), "doubleout", "pwd123456", testDevice)
				require.NoError(t, err)

				claims, err := s.token.ParseRefresh(pair.Refresh.Value)
				require.NoError(t, err)

				require.NoError(t, s.Logout(t.Context(), claims.UserID, claims.DeviceID))
				require.NoError(t, s.Logout(t.Context(), claims.UserID, claims.DeviceID), "repeated logout is not an error")
			})
		})
	})

	t.Run("Authenticate", func(t *testing.T) {
		t.Run("bearer token ok", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "bearer")
				pair, err := s.Login(t.Context(), "bearer", "pwd123456", testDevice)
				require.NoError(t, err)

				r := httptest.NewRequest("GET", "/", nil)
				r.Header.Set("Authorization", "Bearer "+pair.Access.Value)

				user, err := s.Authenticate(t.Context(), r)

				require.NoError(t, err)
				assert.Equal(t, "bearer", user.Login)
			})
		})

		t.Run("bad headers rejected", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "headers")
				pair, err := s.Login(t.Context(), "headers", "pwd123456", testDevice)
				require.NoError(t, err)

				tests := []struct {
					name   string
					header string
				}{
					{name: "no header", header: ""},
					{name: "no scheme", header: pair.Access.Value},
					{name: "wrong scheme", header: "Basic " + pair.Access.Value},
					{name: "garbage token", header: "Bearer garbage"},
				}

				for _, tt := range tests {
					t.Run(tt.name, func(t *testing.T) {
						r := httptest.NewRequest("GET", "/", nil)
						if tt.header != "" {
							r.Header.Set("Authorization", tt.header)
						}

						_, err := s.Authenticate(t.Context(), r)

						require.ErrorIs(t, err, apperrors.ErrUnauthorized)
					})
				}
			})
		})

		t.Run("deleted user rejected", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "ghost")
				pair, err := s.Login(t.Context(), "ghost", "pwd123456", testDevice)
				require.NoError(t, err)

				claims, err := s.token.ParseAccess(pair.Access.Value)
				require.NoError(t, err)
				require.NoError(t, s.users.Delete(t.Context(), claims.UserID))

				r := httptest.NewRequest("GET", "/", nil)
				r.Header.Set("Authorization", "Bearer "+pair.Access.Value)

				_, err = s.Authenticate(t.Context(), r)

				require.ErrorIs(t, err, apperrors.ErrUnauthorized, "a valid token may outlive its user")
			})
		})
	})

	t.Run("Devices", func(t *testing.T) {
		t.Run("terminate foreign device forbidden", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "owner")
				registerConfirmed(t, s, sender, "intruder")

				ownerPair, err := s.Login(t.Context(), "owner", "pwd123456", testDevice)
				require.NoError(t, err)
				intruderPair, err := s.Login(t.Context(), "intruder", "pwd123456", testDevice)
				require.NoError(t, err)

				ownerClaims, err := s.token.ParseRefresh(ownerPair.Refresh.Value)
				require.NoError(t, err)
				intruderClaims, err := s.token.ParseRefresh(intruderPair.Refresh.Value)
				require.NoError(t, err)

				err = s.TerminateDevice(t.Context(), intruderClaims.UserID, ownerClaims.DeviceID)

				require.ErrorIs(t, err, apperrors.ErrForbidden, "terminating another user's device must be forbidden")
			})
		})

		t.Run("terminate unknown device", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				err := s.TerminateDevice(t.Context(), uuid.New(), uuid.New())

				require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
			})
		})

		t.Run("terminate others keeps caller", func(t *testing.T) {
			withService(t, pg.Pool, Config{}, func(s *AuthService, sender *recordingSender) {
				registerConfirmed(t, s, sender, "cleaner")

				_, err := s.Login(t.Context(), "cleaner", "pwd123456", models.DeviceMeta{Name: "laptop", IP: "10.0.0.1"})
				require.NoError(t, err)
				_, err = s.Login(t.Context(), "cleaner", "pwd123456", models.DeviceMeta{Name: "tablet", IP: "10.0.0.2"})
				require.NoError(t, err)
				current, err := s.Login(t.Context(), "cleaner", "pwd123456", models.DeviceMeta{Name: "phone", IP: "10.0.0.3"})
				require.NoError(t, err)

				claims, err := s.token.ParseRefresh(current.Refresh.Value)
				require.NoError(t, err)

				require.NoError(t, s.TerminateOtherDevices(t.Context(), claims.UserID, claims.DeviceID))

				sessions, err := s.ListDevices(t.Context(), claims.UserID)
				require.NoError(t, err)
				require.Len(t, sessions, 1)
				assert.Equal(t, claims.DeviceID, sessions[0].DeviceID)
			})
		})
	})
}

// Concurrent refreshes of the same token race on the stored fingerprint.
// The conditional update in the session store admits exactly one winner,
// the loser gets Unauthorized. Runs on the pool directly: a single test
// transaction can't serve two goroutines
func Test_Auth_ConcurrentRefresh(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	users := &postgres.UserRepo{DB: pg.Pool}
	sessions := &postgres.SessionRepo{DB: pg.Pool}

	tokenManager, err := NewTokenManager(TokenConfig{
		AccessSecret:  "test-access-key",
		RefreshSecret: "test-refresh-key",
	})
	require.NoError(t, err, "token manager should be created without errors")

	s, err := NewService(Config{}, tokenManager, users, sessions, nil)
	require.NoError(t, err, "auth service couldn't be started")

	hash, err := DefaultHasher.Hash("pwd123456")
	require.NoError(t, err)

	user, err := users.Create(t.Context(), models.User{
		Login:          "racer",
		Email:          "racer@example.com",
		HashedPassword: hash,
		Confirmed:      true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		// Sessions go away with the user via the cascade
		err := users.Delete(context.Background(), user.ID)
		require.NoError(t, err, "test user cleanup should be ok")
	})

	device := models.DeviceMeta{Name: "Chrome on Linux", IP: "192.168.1.10"}
	pair, err := s.Login(t.Context(), "racer", "pwd123456", device)
	require.NoError(t, err)

	// Let the clock leave the login millisecond so the rotated
	// fingerprint is guaranteed to differ
	time.Sleep(2 * time.Millisecond)

	errs := make(chan error, 2)
	for range 2 {
		go func() {
			_, err := s.Refresh(context.Background(), pair.Refresh.Value)
			errs <- err
		}()
	}

	var won, lost int
	for range 2 {
		switch err := <-errs; {
		case err == nil:
			won++
		case errors.Is(err, apperrors.ErrUnauthorized):
			lost++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}

	require.Equal(t, 1, won, "exactly one concurrent refresh should win")
	require.Equal(t, 1, lost, "the losing refresh should get Unauthorized")
}
