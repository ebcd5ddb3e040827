package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lealre/cinematch-backend/internal/mongodb"
)

func TestJWT(t *testing.T) {
	token, err := MakeJWT("user-1", "secret", time.Hour)
	require.NoError(t, err)

	userId, err := ValidateJWT(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "user-1", userId)

	_, err = ValidateJWT(token, "other-secret")
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := MakeJWT("user-1", "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ValidateJWT(expired, "secret")
	require.ErrorIs(t, err, ErrTokenExpired)

	noSubject, err := MakeJWT("", "secret", time.Hour)
	require.NoError(t, err)
	_, err = ValidateJWT(noSubject, "secret")
	require.ErrorIs(t, err, ErrTokenWithNoSubject)

	for _, subject := range []string{"first.last", "$where"} {
		dotted, err := MakeJWT(subject, "secret", time.Hour)
		require.NoError(t, err)
		_, err = ValidateJWT(dotted, "secret")
		require.ErrorIs(t, err, ErrInvalidSubject, subject)
	}
}

func TestGetBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		err    error
	}{
		{"", "", ErrNoAuthorizationHeader},
		{"Token abc", "", ErrMalformedAuthHeader},
		{"Bearer    ", "", ErrNoTokenInAuthHeader},
		{"Bearer abc ", "abc", nil},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.header != "" {
			h.Set("Authorization", tt.header)
		}
		token, err := GetBearerToken(h)
		if tt.err != nil {
			require.ErrorIs(t, err, tt.err, tt.header)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.token, token)
	}
}

func TestUserContext(t *testing.T) {
	require.Nil(t, GetUserFromContext(context.Background()))

	ctx := WithUser(context.Background(), mongodb.UserDb{Id: "u1", IsAdmin: true})
	user := GetUserFromContext(ctx)
	require.NotNil(t, user)
	require.Equal(t, "u1", user.Id)
	require.True(t, user.IsAdmin)
}
