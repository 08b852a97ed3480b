package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "session"

const tokenIssuer = "notesboard"

type TokenData struct {
	Sub      int64
	Username string
	Exp      int64
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionTokens issues and validates HS256 session tokens.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionTokens(secret string, ttl time.Duration) (*SessionTokens, error) {
	if secret == "" {
		return nil, errors.New("session secret cannot be empty")
	}

	if ttl <= 0 {
		return nil, fmt.Errorf("invalid session ttl: %s", ttl)
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl}, nil
}

// Issue signs a new session token for the given user.
func (s *SessionTokens) Issue(userID int64, username string) (string, *TokenData, error) {
	now := time.Now()
	exp := now.Add(s.ttl)
	claims := &sessionClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	data := &TokenData{Sub: userID, Username: username, Exp: exp.Unix()}
	return signed, data, nil
}

// ValidateToken parses AND validates the signature locally.
// It returns the data if the token is authentic and unexpired.
func (s *SessionTokens) ValidateToken(tokenString string) (*TokenData, error) {
	clean := sanitizeToken(tokenString)
	if clean == "" {
		return nil, errors.New("missing token")
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(clean, &claims, s.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	sub, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid token subject %q: %w", claims.Subject, err)
	}

	return &TokenData{
		Sub:      sub,
		Username: claims.Username,
		Exp:      claims.ExpiresAt.Unix(),
	}, nil
}

// ParseTokenDataCtx reads the token from the Authorization header,
// falling back to the session cookie.
func (s *SessionTokens) ParseTokenDataCtx(ctx echo.Context) (*TokenData, error) {
	token := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if token == "" {
		if cookie, err := ctx.Cookie(SessionCookieName); err == nil {
			token = cookie.Value
		}
	}
	return s.ValidateToken(token)
}

// NewSessionCookie wraps a signed token into the cookie handed out on sign-in.
func (s *SessionTokens) NewSessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *SessionTokens) keyfunc(token *jwt.Token) (any, error) {
	return s.secret, nil
}

func sanitizeToken(token string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
}
