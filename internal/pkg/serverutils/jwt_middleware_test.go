package serverutils

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func echoUserApp(middleware ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append(middleware, func(ctx *fiber.Ctx) error {
		userId, _ := ctx.Locals("user_id").(string)
		return ctx.SendString(userId)
	})
	app.Get("/", handlers...)
	return app
}

func TestOptionalJwtMiddlewareAllowsAnonymous(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := echoUserApp(OptionalJwtMiddleware)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Empty(t, string(body)) // no user_id local for anonymous callers
}

func TestOptionalJwtMiddlewarePopulatesUserWhenAuthenticated(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := echoUserApp(OptionalJwtMiddleware)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, jwt.MapClaims{"user_id": "u-123"}))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "u-123", string(body))
}

func TestOptionalJwtMiddlewareRejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := echoUserApp(OptionalJwtMiddleware)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAdminMiddlewareGatesByRole(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := echoUserApp(JwtMiddleware, AdminMiddleware)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{name: "admin passes", role: "admin", wantStatus: fiber.StatusOK},
		{name: "member forbidden", role: "member", wantStatus: fiber.StatusForbidden},
		{name: "missing role forbidden", role: "", wantStatus: fiber.StatusForbidden},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			claims := jwt.MapClaims{"user_id": "u-1"}
			if test.role != "" {
				claims["role"] = test.role
			}

			req := httptest.NewRequest("GET", "/", nil)
			req.Header.Set("Authorization", "Bearer "+signedToken(t, claims))

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, test.wantStatus, resp.StatusCode)
		})
	}
}
