package middleware

import (
	"context"
	"errors"
	"testing"

	"io"
	"net/http"
	"net/http/httptest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/mkuznecov/blogplatform/internal/service/auth"
)

type stubRefreshService struct {
	readErr  error
	claims   auth.RefreshClaims
	checkErr error
}

func (s stubRefreshService) ReadRefreshToken(r *http.Request) (string, error) {
	return "refresh-token", s.readErr
}

func (s stubRefreshService) CheckRefresh(ctx context.Context, refresh string) (auth.RefreshClaims, error) {
	return s.claims, s.checkErr
}

func TestRefreshMiddleware(t *testing.T) {
	userID := uuid.New()
	deviceID := uuid.New()

	// Handler that echoes the proven identity back
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := RefreshFromContext(r.Context())
		require.True(t, ok, "guard must attach identity before the handler runs")

		_, err := w.Write([]byte(identity.UserID.String() + " " + identity.DeviceID.String()))
		require.NoError(t, err)
	})

	get := func(t *testing.T, rs refreshService) (*http.Response, string) {
		t.Helper()

		srv := httptest.NewServer(RefreshMiddleware(rs)(handler))
		defer srv.Close()

		resp, err := http.Get(srv.URL + "/test")
		require.NoError(t, err, "should make request to test server")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err, "should read response body")
		defer resp.Body.Close() // nolint:errcheck

		return resp, string(body)
	}

	t.Run("valid refresh attaches identity", func(t *testing.T) {
		rs := stubRefreshService{
			claims: auth.RefreshClaims{UserID: userID, DeviceID: deviceID},
		}

		resp, body := get(t, rs)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, userID.String()+" "+deviceID.String(), body)
	})

	t.Run("missing cookie rejected", func(t *testing.T) {
		rs := stubRefreshService{readErr: http.ErrNoCookie}

		resp, body := get(t, rs)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t,
			`{
				"error": "service_error",
				"message": "Unauthorized"
			}`,
			body,
		)
	})

	t.Run("failed session check rejected", func(t *testing.T) {
		rs := stubRefreshService{checkErr: errors.New("session gone")}

		resp, _ := get(t, rs)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
