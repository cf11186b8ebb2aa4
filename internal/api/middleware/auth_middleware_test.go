package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/models"
	"github.com/maheshrc27/autopost/internal/transfer"
	"github.com/maheshrc27/autopost/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubKeys struct {
	users map[string]string
}

func (s stubKeys) Issue(ctx context.Context, userID string) (*transfer.IssuedApiKey, error) {
	return nil, errors.New("not implemented")
}

func (s stubKeys) List(ctx context.Context, userID string) ([]*models.ApiKey, error) {
	return nil, nil
}

func (s stubKeys) Authenticate(ctx context.Context, key string) (string, error) {
	if userID, ok := s.users[key]; ok {
		return userID, nil
	}
	return "", errors.New("invalid api key")
}

func (s stubKeys) Revoke(ctx context.Context, userID string, keyID int64) error {
	return nil
}

const testSecret = "jwt-test-secret"

func newAuthApp() *fiber.App {
	cfg := config.Config{SecretKey: testSecret, CookieName: "session"}
	m := NewAuthMiddleware(cfg, stubKeys{users: map[string]string{"key-1": "user-from-key"}})

	app := fiber.New()
	app.Get("/whoami", m.AuthMiddleware(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("user_id").(string))
	})
	return app
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestAuthMiddlewareCookie(t *testing.T) {
	token, err := utils.GenerateToken(testSecret, "user-from-cookie", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token})
	resp, err := newAuthApp().Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-from-cookie", body(t, resp))
}

func TestAuthMiddlewareAPIKey(t *testing.T) {
	resp, err := newAuthApp().Test(httptest.NewRequest(http.MethodGet, "/whoami?api_key=key-1", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "user-from-key", body(t, resp))
}

func TestAuthMiddlewareRejects(t *testing.T) {
	expired, err := utils.GenerateToken(testSecret, "user-1", -time.Minute)
	require.NoError(t, err)
	forged, err := utils.GenerateToken("another-secret", "user-1", time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		target string
		cookie string
	}{
		{"Nothing", "/whoami", ""},
		{"UnknownKey", "/whoami?api_key=nope", ""},
		{"ExpiredCookie", "/whoami", expired},
		{"ForgedCookie", "/whoami", forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "session", Value: tt.cookie})
			}
			resp, err := newAuthApp().Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestFunctionSecret(t *testing.T) {
	newApp := func(secret string) *fiber.App {
		app := fiber.New()
		app.Use(FunctionSecret(secret))
		app.All("/run", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
		return app
	}

	tests := []struct {
		name   string
		secret string
		method string
		header string
		want   int
	}{
		{"OpenWhenUnset", "", http.MethodPost, "", http.StatusOK},
		{"MissingBearer", "s3cret", http.MethodPost, "", http.StatusUnauthorized},
		{"WrongBearer", "s3cret", http.MethodPost, "Bearer nope", http.StatusUnauthorized},
		{"RightBearer", "s3cret", http.MethodPost, "Bearer s3cret", http.StatusOK},
		{"OptionsPassThrough", "s3cret", http.MethodOptions, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/run", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newApp(tt.secret).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
