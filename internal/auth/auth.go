package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jobconnect/jobboard-api/internal/domain/models"
	"golang.org/x/crypto/bcrypt"
)

var ErrBadToken = errors.New("invalid token")

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

type Claims struct {
	UserID string      `json:"uid"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Issuer signs and parses short-lived access tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) MakeToken(userID string, role models.Role) (string, time.Time, error) {
	now := i.now()
	expiresAt := now.Add(i.ttl)
	c := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	return token, expiresAt, err
}

func (i *Issuer) ParseToken(raw string) (*Claims, error) {
	tok, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		// block alg confusion
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrBadToken
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, errors.Join(ErrBadToken, err)
	}
	c, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid || c.UserID == "" {
		return nil, ErrBadToken
	}
	return c, nil
}

// GenerateOpaqueToken returns a random token for the client and the hash to store.
func GenerateOpaqueToken() (raw string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashOpaqueToken(raw), nil
}

func HashOpaqueToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
