package echoportal

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/pkg/errors"
)

const cookieAudience = "classroom-portal"

var errInvalidCookie = errors.New("invalid session cookie")

// Claims of the session cookie. The cookie only carries the session id; the backend token stays server side.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

type cookieSigner struct {
	name   string
	key    []byte
	issuer string
	ttl    time.Duration
	secure bool
}

func (cs cookieSigner) sign(sid string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cs.issuer,
			Audience:  jwt.ClaimStrings{cookieAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cs.ttl)),
		},
		SessionID: sid,
	}
	ss, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cs.key)
	if err != nil {
		return "", errors.Wrap(err, "signing session cookie")
	}
	return ss, nil
}

// parse returns the session id of a signed cookie value still valid at `now`.
// Time claims are checked against `now`, the clock the cookie was signed with.
func (cs cookieSigner) parse(value string, now time.Time) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(value, &claims, func(tkn *jwt.Token) (interface{}, error) {
		if _, ok := tkn.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", tkn.Header["alg"])
		}
		return cs.key, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return "", errors.Wrap(errInvalidCookie, err.Error())
	}
	if !claims.VerifyExpiresAt(now, true) {
		return "", errors.Wrap(errInvalidCookie, "cookie is expired")
	}
	if !claims.VerifyAudience(cookieAudience, true) || claims.SessionID == "" {
		return "", errInvalidCookie
	}
	return claims.SessionID, nil
}

func (cs cookieSigner) cookie(value string, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cs.name,
		Value:    value,
		Path:     "/",
		Expires:  now.Add(cs.ttl),
		HttpOnly: true,
		Secure:   cs.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (cs cookieSigner) expired() *http.Cookie {
	return &http.Cookie{
		Name:     cs.name,
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   cs.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
