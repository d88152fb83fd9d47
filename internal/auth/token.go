package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const confirmPurpose = "confirm_account"

// ErrInvalidToken covers malformed, expired and wrongly signed tokens.
var ErrInvalidToken = errors.New("invalid token")

// ConfirmationTokens issues and validates account confirmation tokens.
type ConfirmationTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewConfirmationTokens builds a token manager.
func NewConfirmationTokens(secret string, ttl time.Duration) *ConfirmationTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ConfirmationTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

type confirmClaims struct {
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Issue signs a token for userID.
func (t *ConfirmationTokens) Issue(userID int64) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := &confirmClaims{
		Purpose: confirmPurpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse returns the user id a valid token was issued for.
func (t *ConfirmationTokens) Parse(tokenStr string) (int64, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &confirmClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return 0, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*confirmClaims)
	if !ok || !parsed.Valid || claims.Purpose != confirmPurpose {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
