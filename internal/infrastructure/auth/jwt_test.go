package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignValidate(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "token")
	tokenStr, err := ju.Sign(&AppTokenClaims{UID: "u1", Name: "ada", StandardClaims: jwt.StandardClaims{
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	}})
	require.NoError(t, err)

	claims, err := ju.Validate(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.User().ID)
	assert.True(t, claims.TimeRemaining() > 59*time.Minute)
}

func TestValidateRejects(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "token")
	expired, _ := ju.Sign(&AppTokenClaims{UID: "u1", StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()}})
	noUID, _ := ju.Sign(&AppTokenClaims{})
	otherSecret, _ := NewJWTUtil("HS256", "other", "token").Sign(&AppTokenClaims{UID: "u1"})
	otherMethod, _ := NewJWTUtil("HS512", "secret", "token").Sign(&AppTokenClaims{UID: "u1"})

	for name, tokenStr := range map[string]string{
		"expired":      expired,
		"no uid":       noUID,
		"other secret": otherSecret,
		"other method": otherMethod,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ju.Validate(tokenStr)
			assert.Error(t, err)
		})
	}
}

func TestExtractToken(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "token")
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: "from-cookie"})
	got, err := ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "from-cookie", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer from-header")
	got, err = ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	require.NoError(t, err)
	assert.Equal(t, "from-header", got)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = ju.ExtractToken(e.NewContext(req, httptest.NewRecorder()))
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestContextToken(t *testing.T) {
	ju := NewJWTUtil("HS256", "secret", "token")
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Nil(t, ju.GetContextToken(c))
	ju.SetContextToken(c, &AppTokenClaims{UID: "u1"})
	assert.Equal(t, "u1", ju.GetContextToken(c).UID)
}
