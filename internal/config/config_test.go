package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	t.Setenv("RECEIPTGUARD_TEST_DIR", "/var/data")

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "empty", path: "", want: ""},
		{name: "absolute", path: "/tmp/receipts.db", want: "/tmp/receipts.db"},
		{name: "home prefix", path: "~/receipts.db", want: filepath.Join(home, "receipts.db")},
		{name: "bare tilde", path: "~", want: home},
		{name: "env var", path: "$RECEIPTGUARD_TEST_DIR/receipts.db", want: "/var/data/receipts.db"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.path))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	assert.True(t, strings.HasSuffix(DatabasePath(), filepath.Join("receiptguard", "receiptguard.db")))

	viper.Set("database.path", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DatabasePath())
}

func TestCountryHint(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Reset()

	assert.Equal(t, "SG", CountryHint())

	viper.Set("country", "th")
	assert.Equal(t, "TH", CountryHint())
}
