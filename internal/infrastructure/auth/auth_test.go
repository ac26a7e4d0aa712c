package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://auth.test/realms/media"
	testAudience = "media-service"
	testKID      = "test-key"
)

func newJWKSServer(t *testing.T, key *rsa.PublicKey) *httptest.Server {
	t.Helper()
	encode := func(b []byte) string { return base64.RawURLEncoding.EncodeToString(b) }
	body, err := json.Marshal(map[string]any{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": testKID,
			"alg": "RS256",
			"use": "sig",
			"n":   encode(key.N.Bytes()),
			"e":   encode(big.NewInt(int64(key.E)).Bytes()),
		}},
	})
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = testKID
	signed, err := token.SignedString(key)
	require.NoError(t, err)
	return signed
}

func newTestJWKSValidator(t *testing.T) (*JWKSValidator, *rsa.PrivateKey) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	server := newJWKSServer(t, &key.PublicKey)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	validator, err := NewJWKSValidator(ctx, server.URL, testIssuer, testAudience, time.Hour, time.Minute, zerolog.Nop())
	require.NoError(t, err)
	return validator, key
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"iss":                testIssuer,
		"aud":                []string{testAudience, "account"},
		"sub":                "user-123",
		"preferred_username": "ada",
		"email":              "ada@example.com",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"iat":                time.Now().Unix(),
	}
}

func TestJWKSValidatorAcceptsValidToken(t *testing.T) {
	validator, key := newTestJWKSValidator(t)
	assert.True(t, validator.Ready())

	principal, err := validator.Validate(context.Background(), signToken(t, key, validClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-123", principal.Subject)
	assert.Equal(t, testIssuer, principal.Issuer)
	assert.Equal(t, "ada", principal.PreferredUsername)
	assert.Equal(t, "ada@example.com", principal.Email)
	assert.False(t, principal.ExpiresAt.IsZero())
}

func TestJWKSValidatorRejectsBadTokens(t *testing.T) {
	validator, key := newTestJWKSValidator(t)
	otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token func() string
	}{
		{name: "wrong issuer", token: func() string {
			claims := validClaims()
			claims["iss"] = "https://evil.test"
			return signToken(t, key, claims)
		}},
		{name: "wrong audience", token: func() string {
			claims := validClaims()
			claims["aud"] = "someone-else"
			return signToken(t, key, claims)
		}},
		{name: "missing subject", token: func() string {
			claims := validClaims()
			delete(claims, "sub")
			return signToken(t, key, claims)
		}},
		{name: "expired", token: func() string {
			claims := validClaims()
			claims["exp"] = time.Now().Add(-time.Hour).Unix()
			return signToken(t, key, claims)
		}},
		{name: "foreign signature", token: func() string {
			return signToken(t, otherKey, validClaims())
		}},
		{name: "garbage", token: func() string { return "not-a-jwt" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.Validate(context.Background(), tt.token())
			assert.Error(t, err)
		})
	}
}

type stubTokens struct {
	principal *Principal
	err       error
}

func (s stubTokens) Validate(context.Context, string) (*Principal, error) {
	return s.principal, s.err
}

func runMiddleware(v *Validator, header, value string) (*httptest.ResponseRecorder, string) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	var owner string
	router.GET("/", v.Middleware(), func(c *gin.Context) {
		owner = OwnerFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, owner
}

func TestMiddlewareDisabledTrustsGatewayHeader(t *testing.T) {
	v := &Validator{log: zerolog.Nop()}

	w, owner := runMiddleware(v, "X-User-ID", " user-9 ")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "user-9", owner)

	w, owner = runMiddleware(v, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, owner)
}

func TestMiddlewareEnabled(t *testing.T) {
	ok := &Validator{enabled: true, log: zerolog.Nop(), tokens: stubTokens{principal: &Principal{Subject: "user-1"}}}
	rejecting := &Validator{enabled: true, log: zerolog.Nop(), tokens: stubTokens{err: errors.New("bad token")}}

	w, owner := runMiddleware(ok, "Authorization", "Bearer abc")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "user-1", owner)

	w, _ = runMiddleware(ok, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = runMiddleware(ok, "Authorization", "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = runMiddleware(rejecting, "Authorization", "Bearer abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized_error")
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken("Token abc"))
	assert.Empty(t, bearerToken(""))
}
