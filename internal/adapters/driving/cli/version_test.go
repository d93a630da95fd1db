package cli

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheyangsuzhiyuan-max/ntu-campus-genie/internal/core/domain"
)

func withVersion(t *testing.T, v string, bi *debug.BuildInfo) {
	t.Helper()
	prevVersion, prevRead := version, readBuildInfo
	version = v
	readBuildInfo = func() (*debug.BuildInfo, bool) { return bi, bi != nil }
	t.Cleanup(func() {
		version, readBuildInfo = prevVersion, prevRead
		versionJSON = false
	})
}

func TestVersionCmd_Plain(t *testing.T) {
	withVersion(t, "1.2.0", &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.modified", Value: "true"},
	}})

	out, _, err := execute(t, nil, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "genie version 1.2.0")
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, "0123456789ab (modified)")
}

func TestVersionCmd_DevWithoutBuildInfo(t *testing.T) {
	withVersion(t, "dev", nil)

	out, _, err := execute(t, nil, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "genie version dev")
	assert.NotContains(t, out, "revision")
}

func TestVersionCmd_JSONWithModels(t *testing.T) {
	withVersion(t, "1.2.0", nil)
	settings := domain.DefaultSettings()
	withSettings(t, &mockSettings{settings: settings})

	out, _, err := execute(t, nil, "", "version", "--json")
	require.NoError(t, err)

	var got buildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1.2.0", got.Version)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, got.Platform)
	assert.Contains(t, got.LLM, settings.LLM.Model)
	assert.Contains(t, got.Embedding, string(settings.Embedding.Provider))
}
