package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/pot-code/learning-engine/internal/domain"
)

// ErrNoToken request carries no token
var ErrNoToken = errors.New("auth: no token")

// AppTokenClaims .
type AppTokenClaims struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
	Name  string `json:"name"`

	jwt.StandardClaims
}

// TimeRemaining remaining time before the token get expired
func (tk *AppTokenClaims) TimeRemaining() time.Duration {
	exp := time.Unix(tk.ExpiresAt, 0)
	now := time.Now()

	if exp.Before(now) {
		return 0
	}
	return exp.Sub(now)
}

// User learner identity carried by the token
func (tk *AppTokenClaims) User() *domain.UserModel {
	return &domain.UserModel{ID: tk.UID, Username: tk.Name, Email: tk.Email}
}

// JWTUtil .
type JWTUtil struct {
	secret    []byte
	tokenName string
	method    jwt.SigningMethod
}

// NewJWTUtil create a JWTUtil instance
func NewJWTUtil(method, secret, tokenName string) *JWTUtil {
	var signMethod jwt.SigningMethod
	switch method {
	case "HS512":
		signMethod = jwt.SigningMethodHS512
	default:
		signMethod = jwt.SigningMethodHS256
	}
	return &JWTUtil{
		method:    signMethod,
		secret:    []byte(secret),
		tokenName: tokenName,
	}
}

// Sign sign token
func (ju *JWTUtil) Sign(claims *AppTokenClaims) (string, error) {
	token := jwt.NewWithClaims(ju.method, claims)
	return token.SignedString(ju.secret)
}

// Validate validate token string with secret and return AppTokenClaims
func (ju *JWTUtil) Validate(tokenStr string) (*AppTokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AppTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != ju.method.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", token.Method.Alg())
		}
		return ju.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims := token.Claims.(*AppTokenClaims)
	if claims.UID == "" {
		return nil, errors.New("token has no uid")
	}
	return claims, nil
}

// SetContextToken set token in App context
func (ju *JWTUtil) SetContextToken(c echo.Context, token *AppTokenClaims) {
	c.Set(ju.tokenName, token)
}

// GetContextToken get token from App context
func (ju *JWTUtil) GetContextToken(c echo.Context) *AppTokenClaims {
	v, ok := c.Get(ju.tokenName).(*AppTokenClaims)
	if ok {
		return v
	}
	return nil
}

// ExtractToken get token string from the cookie, or the bearer header for non-browser players
func (ju *JWTUtil) ExtractToken(c echo.Context) (string, error) {
	if token, err := c.Cookie(ju.tokenName); err == nil && token.Value != "" {
		return token.Value, nil
	}
	const bearer = "Bearer "
	if h := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(h, bearer) {
		return strings.TrimPrefix(h, bearer), nil
	}
	return "", ErrNoToken
}
