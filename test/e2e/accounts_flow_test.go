package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/altostack/webcore/internal/webcore/domain"
	webhttp "github.com/altostack/webcore/internal/webcore/http"
	"github.com/altostack/webcore/internal/webcore/service"
	"github.com/altostack/webcore/internal/webcore/store/drivers/sqlite"
	"github.com/altostack/webcore/pkg/jwtx"
	"github.com/altostack/webcore/pkg/passwordx"
)

// captureMailer records the last OTP sent per recipient so the flows can be
// driven end to end without a mail relay.
type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) Send(_ context.Context, _ domain.Purpose, recipient, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[recipient] = code
	return nil
}

func (m *captureMailer) lastCode(recipient string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[recipient]
}

type testServer struct {
	*httptest.Server
	mailer *captureMailer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	logger := slog.Default()
	mailer := &captureMailer{codes: make(map[string]string)}

	tokens := &service.TokenService{
		Store:     st,
		Codec:     jwtx.NewCodec([]byte("e2e-signing-secret"), "webcore"),
		OTPSecret: []byte("e2e-otp-secret"),
		OTPTTL:    5 * time.Minute,
		AccessTTL: 30 * time.Minute,
	}
	accounts := &service.AccountService{
		Store:  st,
		Tokens: tokens,
		Mailer: mailer,
		Policy: passwordx.Default(),
		Logger: logger,
	}

	router := webhttp.NewRouter("webcore", st, logger, []string{"*"})
	router.TokenService = tokens
	router.AccountService = accounts
	router.UserService = &service.UserService{Store: st}
	router.LogService = &service.LogService{Store: st, Logger: logger}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, mailer: mailer}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	}
	return resp, decoded
}

func TestAccountLifecycle(t *testing.T) {
	srv := newTestServer(t)

	const email = "a@x.com"

	resp, body := srv.do(t, http.MethodPost, "/v1/accounts/register", "", map[string]string{
		"email":            email,
		"password":         "Abc12345",
		"password_confirm": "Abc12345",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, email, body["email"])

	otp := srv.mailer.lastCode(email)
	require.NotEmpty(t, otp)

	t.Run("login refused before verification", func(t *testing.T) {
		resp, _ := srv.do(t, http.MethodPost, "/v1/accounts/login", "", map[string]string{
			"email": email, "password": "Abc12345",
		})
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	resp, body = srv.do(t, http.MethodPatch, "/v1/accounts/register/verify", "", map[string]string{
		"email": email, "otp": otp,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, body["access_token"])

	resp, body = srv.do(t, http.MethodPost, "/v1/accounts/login", "", map[string]string{
		"email": email, "password": "Abc12345",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	require.Equal(t, "bearer", body["token_type"])

	t.Run("profile round trip", func(t *testing.T) {
		resp, body := srv.do(t, http.MethodGet, "/v1/accounts/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		user, ok := body["user"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, email, user["email"])

		resp, body = srv.do(t, http.MethodPut, "/v1/accounts/me", token, map[string]string{
			"first_name": "Ada", "last_name": "Lovelace",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		user, ok = body["user"].(map[string]any)
		require.True(t, ok)
		require.Equal(t, "Ada", user["first_name"])
	})

	t.Run("change password forces re-login", func(t *testing.T) {
		resp, _ := srv.do(t, http.MethodPatch, "/v1/accounts/me/password", token, map[string]string{
			"current_password": "Abc12345",
			"password":         "Xyz98765",
			"password_confirm": "Xyz98765",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// The session that made the change is revoked too.
		resp, _ = srv.do(t, http.MethodGet, "/v1/accounts/me", token, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, _ = srv.do(t, http.MethodPost, "/v1/accounts/login", "", map[string]string{
			"email": email, "password": "Abc12345",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		resp, body := srv.do(t, http.MethodPost, "/v1/accounts/login", "", map[string]string{
			"email": email, "password": "Xyz98765",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		token, _ = body["access_token"].(string)
		require.NotEmpty(t, token)
	})

	t.Run("logout revokes the session", func(t *testing.T) {
		resp, _ := srv.do(t, http.MethodPost, "/v1/accounts/logout", token, nil)
		require.Equal(t, http.StatusNoContent, resp.StatusCode)

		resp, _ = srv.do(t, http.MethodGet, "/v1/accounts/me", token, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	srv := newTestServer(t)

	const email = "reset@x.com"

	srv.do(t, http.MethodPost, "/v1/accounts/register", "", map[string]string{
		"email": email, "password": "Abc12345", "password_confirm": "Abc12345",
	})
	srv.do(t, http.MethodPatch, "/v1/accounts/register/verify", "", map[string]string{
		"email": email, "otp": srv.mailer.lastCode(email),
	})

	t.Run("request succeeds for unknown addresses", func(t *testing.T) {
		resp, _ := srv.do(t, http.MethodPost, "/v1/accounts/reset-password", "", map[string]string{
			"email": "nobody@x.com",
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	resp, _ := srv.do(t, http.MethodPost, "/v1/accounts/reset-password", "", map[string]string{
		"email": email,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	otp := srv.mailer.lastCode(email)
	require.NotEmpty(t, otp)

	t.Run("mismatched confirmation rejected", func(t *testing.T) {
		resp, _ := srv.do(t, http.MethodPatch, "/v1/accounts/reset-password/verify", "", map[string]string{
			"email": email, "otp": otp,
			"password": "Qrs45678", "password_confirm": "different",
		})
		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	resp, _ = srv.do(t, http.MethodPatch, "/v1/accounts/reset-password/verify", "", map[string]string{
		"email": email, "otp": otp,
		"password": "Qrs45678", "password_confirm": "Qrs45678",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPost, "/v1/accounts/login", "", map[string]string{
		"email": email, "password": "Abc12345",
	})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = srv.do(t, http.MethodPost, "/v1/accounts/login", "", map[string]string{
		"email": email, "password": "Qrs45678",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestChangeEmailFlow(t *testing.T) {
	srv := newTestServer(t)

	const email = "old@x.com"
	const newEmail = "new@x.com"

	srv.do(t, http.MethodPost, "/v1/accounts/register", "", map[string]string{
		"email": email, "password": "Abc12345", "password_confirm": "Abc12345",
	})
	srv.do(t, http.MethodPatch, "/v1/accounts/register/verify", "", map[string]string{
		"email": email, "otp": srv.mailer.lastCode(email),
	})
	_, body := srv.do(t, http.MethodPost, "/v1/accounts/login", "", map[string]string{
		"email": email, "password": "Abc12345",
	})
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)

	resp, _ := srv.do(t, http.MethodPost, "/v1/accounts/me/email", token, map[string]string{
		"email": newEmail,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	otp := srv.mailer.lastCode(newEmail)
	require.NotEmpty(t, otp)

	resp, _ = srv.do(t, http.MethodPatch, "/v1/accounts/me/email/verify", token, map[string]string{
		"otp": otp,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = srv.do(t, http.MethodGet, "/v1/accounts/me", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, newEmail, user["email"])
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	resp, body := srv.do(t, http.MethodGet, "/livez", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])

	resp, body = srv.do(t, http.MethodGet, "/readyz", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", body["status"])
}
