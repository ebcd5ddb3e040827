package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults are applied when only required values are set", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "secret")

		cfg, err := Load("does-not-exist.env")
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.Address)
		require.Equal(t, "cinematch", cfg.MongoDatabase)
		require.Equal(t, 18, cfg.AwardsLockHour)
		require.Equal(t, "America/Los_Angeles", cfg.AwardsTimezone)
		require.Equal(t, 30*time.Minute, cfg.CatalogCacheTTL)
		require.False(t, cfg.EnforceVoteDeadline)
	})

	t.Run("Missing required values fail", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "")
		t.Setenv("JWT_SECRET", "")

		_, err := Load("does-not-exist.env")
		require.Error(t, err)
	})

	t.Run("Invalid timezone fails", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("AWARDS_TIMEZONE", "Mars/Olympus_Mons")

		_, err := Load("does-not-exist.env")
		require.ErrorContains(t, err, "AWARDS_TIMEZONE")
	})

	t.Run("Lock hour out of range fails", func(t *testing.T) {
		t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("AWARDS_LOCK_HOUR", "24")

		_, err := Load("does-not-exist.env")
		require.ErrorContains(t, err, "AWARDS_LOCK_HOUR")
	})
}
