package services

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/inficom-solutions/portfolio-backend/errs"
	"golang.org/x/crypto/bcrypt"
)

const TokenIssuer = "portfolio-backend"

// Claims identify the administrator a token was issued to.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	Admin     Admin     `json:"admin"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type Admin struct {
	Email string `json:"email"`
}

// Authenticator checks the single administrator account and issues HS256
// tokens for it.
type Authenticator struct {
	email        string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthenticator(email, passwordHash, secret string, ttl time.Duration) (*Authenticator, error) {
	if email == "" {
		return nil, errs.NewConfigError("ADMIN_EMAIL")
	}
	if passwordHash == "" {
		return nil, errs.NewConfigError("ADMIN_PASSWORD_HASH")
	}
	if len(secret) < 16 {
		return nil, errs.NewInvalidConfigError("JWT_SECRET", "must be at least 16 characters")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, errs.NewInvalidConfigError("ADMIN_PASSWORD_HASH", "is not a bcrypt hash")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		secret:       []byte(secret),
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// Login checks the credentials and issues a token.
func (a *Authenticator) Login(email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.email)) == 1
	// The hash is always compared so timing does not reveal the email.
	passwordErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !emailOK || passwordErr != nil {
		return Session{}, errs.NewInvalidCredentialsError()
	}

	now := a.now()
	expiresAt := now.Add(a.ttl)
	claims := Claims{
		Email: a.email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    TokenIssuer,
			Subject:   a.email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return Session{}, errs.NewInternalErrorWithCause("could not sign token", err)
	}

	return Session{Token: token, Admin: Admin{Email: a.email}, ExpiresAt: expiresAt}, nil
}

// Verify parses a bearer token and returns its claims.
func (a *Authenticator) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errs.NewMissingTokenError()
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, errs.NewExpiredTokenError()
	case err != nil:
		return nil, errs.NewInvalidTokenError(err)
	case claims.Email != a.email:
		return nil, errs.NewInvalidTokenError(errors.New("token was issued to another account"))
	}
	return claims, nil
}
