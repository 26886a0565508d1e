package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

const testSecret = "test_secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doAuthRequest(t *testing.T, authorization string) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := AuthJWT(config.Config{JWTSecret: testSecret})
	handler := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler: %v", err)
	}
	return rec, c
}

func TestAuthJWTAcceptsValidToken(t *testing.T) {
	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"sub": int64(7),
		"tv":  2,
		"iat": now.Unix(),
		"exp": now.Add(15 * time.Minute).Unix(),
	})

	rec, c := doAuthRequest(t, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), c.Get(CtxUserIDKey))
	assert.Equal(t, 2, c.Get(CtxTokenVersionKey))
}

func TestAuthJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	rec, _ := doAuthRequest(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doAuthRequest(t, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = doAuthRequest(t, "Bearer ")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWTRejectsExpiredToken(t *testing.T) {
	now := time.Now()
	token := signToken(t, jwt.MapClaims{
		"sub": int64(7),
		"tv":  0,
		"iat": now.Add(-time.Hour).Unix(),
		"exp": now.Add(-30 * time.Minute).Unix(),
	})

	rec, _ := doAuthRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWTRejectsWrongSignature(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": int64(7),
		"tv":  0,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte("other_secret"))
	assert.NoError(t, err)

	rec, _ := doAuthRequest(t, "Bearer "+signed)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthJWTRejectsMissingClaims(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, _ := doAuthRequest(t, "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
