package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobmcallan/lexicon/tests/common"
)

func TestHealthEndpoint(t *testing.T) {
	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	resp, err := env.HTTPGet("/api/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := common.DecodeBody[map[string]string](t, resp)
	assert.Equal(t, "ok", result["status"])
}

func TestVersionEndpoint(t *testing.T) {
	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	resp, err := env.HTTPGet("/api/version")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := common.DecodeBody[map[string]string](t, resp)
	assert.Equal(t, "test", result["version"])
	assert.Equal(t, "docker", result["build"])
	assert.Contains(t, result, "commit")
}

func TestConfigEndpoint_ReportsSettings(t *testing.T) {
	env := common.NewEnv(t)
	if env == nil {
		return
	}
	defer env.Cleanup()

	resp, err := env.HTTPGet("/api/config")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	result := common.DecodeBody[map[string]interface{}](t, resp)
	assert.Equal(t, "test", result["environment"])
	assert.Equal(t, "embedded", result["catalog"])
	assert.Equal(t, "log", result["analytics_provider"])
	assert.Equal(t, false, result["gemini_configured"])
}
