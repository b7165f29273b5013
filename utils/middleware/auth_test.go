package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dibyendu2004/BrightPath/config"
	"github.com/dibyendu2004/BrightPath/utils/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityApp(m *IdentityMiddleware) *fiber.App {
	app := fiber.New()
	app.Get("/me", m.Required(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "userId": GetUserID(c)})
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, headers map[string]string) map[string]interface{} {
	t.Helper()
	req := httptest.NewRequest("GET", "/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestHeaderMode(t *testing.T) {
	app := identityApp(NewIdentityMiddleware(config.AuthModeHeader, nil))

	body := doGet(t, app, map[string]string{"userid": "user_1"})
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "user_1", body["userId"])

	body = doGet(t, app, nil)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Not Authorized", body["message"])
	assert.Equal(t, "UNAUTHORIZED", body["code"])
}

func TestJWTMode(t *testing.T) {
	manager, err := auth.NewJWTManager(auth.JWTConfig{Secret: "s", Issuer: "brightpath-api", Expiry: time.Hour})
	require.NoError(t, err)
	app := identityApp(NewIdentityMiddleware(config.AuthModeJWT, manager))

	token, _, err := manager.GenerateAccessToken("user_7", "student")
	require.NoError(t, err)

	body := doGet(t, app, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, "user_7", body["userId"])

	body = doGet(t, app, map[string]string{"userid": "user_7"})
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Missing authorization token", body["message"])

	body = doGet(t, app, map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, "Invalid token", body["message"])

	body = doGet(t, app, map[string]string{"Authorization": "Token " + token})
	assert.Equal(t, "Invalid authorization format", body["message"])
}
