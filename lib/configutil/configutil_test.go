package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Site    string `json:"site" validate:"required"`
	Timeout int    `json:"timeout" validate:"gte=0"`
	Cache   struct {
		File string `json:"file"`
	} `json:"cache"`
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		t.Fatal(err)
	}
}

func TestLocalName(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "mgq.json5", expected: "mgq.local.json5"},
		{input: filepath.Join("conf", "mgq.json5"), expected: filepath.Join("conf", "mgq.local.json5")},
		{input: "mgq", expected: "mgq.local"},
	}
	for _, row := range table {
		require.Equal(t, row.expected, localName(row.input))
	}
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "mgq.json5")

	_, err := ReadConfig[testConfig](name)
	require.ErrorIs(t, err, os.ErrNotExist)

	writeFile(t, name, `{
		// comments are allowed
		site: "example.gov.uk",
		timeout: 10,
		cache: { file: "cache.db" },
	}`)
	cfg, err := ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "example.gov.uk", cfg.Site)
	require.Equal(t, 10, cfg.Timeout)
	require.Equal(t, "cache.db", cfg.Cache.File)

	writeFile(t, filepath.Join(dir, "mgq.local.json5"), `{ site: "democracy.other.gov.uk" }`)
	cfg, err = ReadConfig[testConfig](name)
	require.NoError(t, err)
	require.Equal(t, "democracy.other.gov.uk", cfg.Site)
	require.Equal(t, 10, cfg.Timeout)
	require.Equal(t, "cache.db", cfg.Cache.File)
}

func TestReadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "mgq.json5")
	writeFile(t, name, `{ site: `)

	_, err := ReadConfig[testConfig](name)
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(testConfig{Site: "example.gov.uk"}))
	require.Error(t, Validate(testConfig{}))
	require.Error(t, Validate(testConfig{Site: "example.gov.uk", Timeout: -1}))
}
