package mongodb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidFieldKey(t *testing.T) {
	cases := map[string]bool{
		"best-sound": true,
		"u_1":        true,
		"":           false,
		"best.sound": false,
		"$set":       false,
		"a$b":        false,
	}
	for key, want := range cases {
		require.Equal(t, want, ValidFieldKey(key), key)
	}
}
