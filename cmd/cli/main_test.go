package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-devlinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/go-devlinks/pkg/config"
	"github.com/wadjakorntonsri/go-devlinks/pkg/core/domain"
)

func testConfig() func() *config.Config {
	cfg := &config.Config{
		DatabaseURL: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(uuid.NewString(), "-", "")),
		LogLevel:    "error",
	}
	return func() *config.Config { return cfg }
}

func run(t *testing.T, load func() *config.Config, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(load)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	load := testConfig()

	out, err := run(t, load, "validate", "github", "github.com/alice")
	require.NoError(t, err)
	assert.Equal(t, "valid https://www.github.com/alice\n", out)

	out, err = run(t, load, "validate", "twitter", "github.com/alice")
	assert.Error(t, err)
	assert.Contains(t, out, "invalid")

	_, err = run(t, load, "validate", "myspace", "myspace.com/alice")
	assert.ErrorIs(t, err, domain.ErrUnknownPlatform)

	_, err = run(t, load, "validate", "github")
	assert.Error(t, err)
}

func TestImportThenExport(t *testing.T) {
	load := testConfig()
	// The in-memory database lives as long as one connection does; each
	// command closes its own.
	keep, err := sqlite.NewSQLiteRepository(load().DatabaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = keep.Close() })

	path := filepath.Join(t.TempDir(), "links.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"platform":"github","url":"github.com/alice"},
		{"platform":"instagram","url":"not-a-url"},
		{"platform":"youtube","url":"youtube.com/@alice"}
	]`), 0o600))

	out, err := run(t, load, "import", "--user", "alice", "--file", path)
	require.NoError(t, err)
	assert.Equal(t, "imported 2 links, skipped invalid positions [1]\n", out)

	out, err = run(t, load, "export", "--user", "alice")
	require.NoError(t, err)

	var export Export
	require.NoError(t, json.Unmarshal([]byte(out), &export))
	assert.Nil(t, export.Profile)
	assert.Equal(t, []domain.LinkEntry{
		{Platform: domain.PlatformGitHub, URL: "https://www.github.com/alice"},
		{Platform: domain.PlatformYouTube, URL: "https://youtube.com/@alice"},
	}, export.Links)
}

func TestImportRequiresFlags(t *testing.T) {
	_, err := run(t, testConfig(), "import", "--user", "alice")
	assert.Error(t, err)
}

func TestDecodeLinks(t *testing.T) {
	links, err := decodeLinks(strings.NewReader(`{"profile":{"id":1},"links":[{"platform":"github","url":"github.com/a"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []domain.LinkEntry{{Platform: domain.PlatformGitHub, URL: "github.com/a"}}, links)

	links, err = decodeLinks(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, links)

	_, err = decodeLinks(strings.NewReader(`nope`))
	assert.Error(t, err)
}
