package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	r := Get()

	assert.Equal(t, "auto", r.Engine.Implementation)
	assert.Equal(t, 64, r.Engine.BatchSize)
	assert.Equal(t, 4, r.Engine.MaxConcurrency)
	assert.Equal(t, 1000, r.Performance.SampleCapacity)
	assert.Equal(t, uint64(1<<16), r.Performance.DecryptBound)
}

func TestEnvOverridesDefault(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	defineDefaults()
	defineENV()

	assert.Equal(t, "auto", viper.GetString("engine.implementation"))
	assert.Equal(t, "info", viper.GetString("logger.level"))

	require.Nil(t, os.Setenv("VEIL_ENGINE_IMPLEMENTATION", "native"))
	require.Nil(t, os.Setenv("VEIL_LOGGER_LEVEL", "debug"))
	defer os.Unsetenv("VEIL_ENGINE_IMPLEMENTATION")
	defer os.Unsetenv("VEIL_LOGGER_LEVEL")

	// the bound environment variables win over the defaults
	assert.Equal(t, "native", viper.GetString("engine.implementation"))
	assert.Equal(t, "debug", viper.GetString("logger.level"))
}

func TestMock(t *testing.T) {
	m := new(Registry)
	m.Engine.Implementation = "native"
	m.Engine.MaxConcurrency = 1
	Mock(m)

	r := Get()
	assert.Equal(t, "native", r.Engine.Implementation)
	assert.Equal(t, 1, r.Engine.MaxConcurrency)

	// registry is copied by value, mutations do not leak back
	r.Engine.Implementation = "accelerated"
	assert.Equal(t, "native", Get().Engine.Implementation)
}
