package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvPrefersLoadedMap(t *testing.T) {
	t.Setenv("SLOTSYNC_TEST_KEY", "from-os")
	Env = map[string]string{"SLOTSYNC_TEST_KEY": "from-file"}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, "from-file", GetEnv("SLOTSYNC_TEST_KEY", "def"))
}

func TestGetEnvFallsBackToOS(t *testing.T) {
	Env = map[string]string{}
	t.Cleanup(func() { Env = nil })
	t.Setenv("SLOTSYNC_TEST_KEY", "from-os")

	assert.Equal(t, "from-os", GetEnv("SLOTSYNC_TEST_KEY", "def"))
	assert.Equal(t, "def", GetEnv("SLOTSYNC_MISSING_KEY", "def"))
}

func TestGetIntEnv(t *testing.T) {
	Env = map[string]string{"A": "7", "B": "seven", "C": " "}
	t.Cleanup(func() { Env = nil })

	assert.Equal(t, 7, GetIntEnv("A", 1))
	assert.Equal(t, 1, GetIntEnv("B", 1))
	assert.Equal(t, 1, GetIntEnv("C", 1))
	assert.Equal(t, 4, GetIntEnv("SLOTSYNC_MISSING_INT", 4))
}
