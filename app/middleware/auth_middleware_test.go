package middleware_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/Yatagarasu/app/middleware"
	"github.com/amirphl/Yatagarasu/app/services"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret      = "unit-test-secret-key-0123456789abcdef"
	testInternalKey = "internal-service-key-for-tests"
)

func newAuthTestApp(t *testing.T, tokenTTL time.Duration) (*fiber.App, services.TokenService) {
	t.Helper()

	tokenService, err := services.NewTokenService(tokenTTL, "yatagarasu", "yatagarasu-api", false, "", "", testSecret)
	require.NoError(t, err)

	auth := middleware.NewAuthMiddleware(tokenService, testInternalKey)

	app := fiber.New()
	okHandler := func(c fiber.Ctx) error {
		userID, _ := middleware.GetUserIDFromContext(c)
		return c.JSON(fiber.Map{
			"userId":   userID,
			"internal": middleware.IsInternalService(c),
		})
	}
	app.Get("/user-only", okHandler, auth.Authenticate())
	app.Get("/user-or-internal", okHandler, auth.InternalOrAuthenticate())
	app.Get("/optional", okHandler, auth.OptionalAuth())

	return app, tokenService
}

type authErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

func decodeAuthError(t *testing.T, body io.Reader) authErrorBody {
	t.Helper()
	var parsed authErrorBody
	require.NoError(t, json.NewDecoder(body).Decode(&parsed))
	return parsed
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	app, _ := newAuthTestApp(t, time.Hour)

	resp, err := app.Test(httptest.NewRequest("GET", "/user-only", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	parsed := decodeAuthError(t, resp.Body)
	assert.Equal(t, "Authentication required", parsed.Message)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", parsed.Error.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	app, tokenService := newAuthTestApp(t, time.Hour)

	token, err := tokenService.GenerateAccessToken("user-1")
	require.NoError(t, err)

	// A valid token with the wrong scheme is still "missing" auth
	req := httptest.NewRequest("GET", "/user-only", nil)
	req.Header.Set("Authorization", "Token "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	parsed := decodeAuthError(t, resp.Body)
	assert.Equal(t, "Authentication required", parsed.Message)
	assert.Equal(t, "AUTHENTICATION_REQUIRED", parsed.Error.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	app, _ := newAuthTestApp(t, time.Hour)

	req := httptest.NewRequest("GET", "/user-only", nil)
	req.Header.Set("Authorization", "Bearer garbage.token.value")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	parsed := decodeAuthError(t, resp.Body)
	assert.Equal(t, "Invalid token", parsed.Message)
	assert.Equal(t, "TOKEN_INVALID", parsed.Error.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	app, tokenService := newAuthTestApp(t, -time.Hour)

	token, err := tokenService.GenerateAccessToken("user-1")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/user-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	parsed := decodeAuthError(t, resp.Body)
	assert.Equal(t, "Token expired", parsed.Message)
	assert.Equal(t, "TOKEN_EXPIRED", parsed.Error.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	app, tokenService := newAuthTestApp(t, time.Hour)

	token, err := tokenService.GenerateAccessToken("user-42")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/user-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, "user-42", parsed["userId"])
	assert.Equal(t, false, parsed["internal"])
}

func TestAuthenticate_InternalKeyNotAccepted(t *testing.T) {
	// The internal key alone must not open user-only endpoints
	app, _ := newAuthTestApp(t, time.Hour)

	req := httptest.NewRequest("GET", "/user-only", nil)
	req.Header.Set(middleware.InternalKeyHeader, testInternalKey)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	parsed := decodeAuthError(t, resp.Body)
	assert.Equal(t, "Authentication required", parsed.Message)
}

func TestInternalOrAuthenticate_InternalKey(t *testing.T) {
	app, _ := newAuthTestApp(t, time.Hour)

	req := httptest.NewRequest("GET", "/user-or-internal", nil)
	req.Header.Set(middleware.InternalKeyHeader, testInternalKey)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, true, parsed["internal"])
}

func TestInternalOrAuthenticate_WrongInternalKeyFallsThrough(t *testing.T) {
	app, _ := newAuthTestApp(t, time.Hour)

	req := httptest.NewRequest("GET", "/user-or-internal", nil)
	req.Header.Set(middleware.InternalKeyHeader, "wrong-key")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	parsed := decodeAuthError(t, resp.Body)
	assert.Equal(t, "Authentication required", parsed.Message)
}

func TestOptionalAuth_NeverRejects(t *testing.T) {
	app, _ := newAuthTestApp(t, time.Hour)

	req := httptest.NewRequest("GET", "/optional", nil)
	req.Header.Set("Authorization", "Bearer garbage")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var parsed map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	assert.Equal(t, "", parsed["userId"])
}
