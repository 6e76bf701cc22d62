package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("DEDUCT_TEST_DIR", "/srv/deduct")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "tilde only", input: "~", expected: home},
		{name: "tilde prefix", input: "~/data/deduct.db", expected: filepath.Join(home, "data/deduct.db")},
		{name: "env var", input: "$DEDUCT_TEST_DIR/deduct.db", expected: "/srv/deduct/deduct.db"},
		{name: "absolute", input: "/tmp/deduct.db", expected: "/tmp/deduct.db"},
		{name: "tilde in middle", input: "/tmp/~/x", expected: "/tmp/~/x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExpandPath(tt.input))
		})
	}
}

func TestDatabasePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/.local/share/deduct/deduct.db", DatabasePath(""))
	assert.Equal(t, "/home/tester/.local/share/deduct/deduct.db", DatabasePath("  "))
	assert.Equal(t, ":memory:", DatabasePath(":memory:"))
	assert.Equal(t, "/var/lib/deduct.db", DatabasePath("/var/lib/deduct.db"))
}

func TestConfigDir(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.config/deduct", dir)
}
