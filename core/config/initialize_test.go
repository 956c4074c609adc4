package config

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/etc/plsh"
	if err := Initialize(fs, dir, log.New(io.Discard, "", 0)); err != nil {
		t.Fatal(err)
	}

	// Check that the config is valid
	cfg, err := Load(fs, dir)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, cfg.HasEventLog())

	t.Run("OpenEventLog", func(t *testing.T) {
		fd, err := cfg.OpenEventLog()
		require.NoError(t, err)
		_, err = fd.WriteString("{}\n")
		assert.NoError(t, err)
		fd.Close()

		ok, err := afero.Exists(fs, filepath.Join(dir, "events.log"))
		assert.NoError(t, err)
		assert.True(t, ok, "event log is relative to the config directory")
	})

	t.Run("ReadEventLog", func(t *testing.T) {
		fd, err := cfg.ReadEventLog()
		require.NoError(t, err)
		defer fd.Close()
		contents, err := io.ReadAll(fd)
		assert.NoError(t, err)
		assert.Equal(t, "{}\n", string(contents))
	})

	t.Run("LoadConfigFile", func(t *testing.T) {
		_, err := Load(fs, filepath.Join(dir, ConfigurationName))
		assert.NoError(t, err)
	})
}

func TestInitialize_KeepsExisting(t *testing.T) {
	fs := afero.NewMemMapFs()
	custom := []byte("max_args: 3\ntrace: true\ncolor: never\npath: /bin\nevent_log: \"\"\n")
	require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", custom, 0600))

	require.NoError(t, Initialize(fs, "/cfg", log.New(io.Discard, "", 0)))

	cfg, err := Load(fs, "/cfg")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxArgs)
	assert.True(t, cfg.Trace)
	assert.Equal(t, "/bin", cfg.Path)
	assert.False(t, cfg.HasEventLog())
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown-field": "max_args: 3\ncolour: never\n",
		"invalid":       "max_args: 0\ncolor: auto\n",
		"not-yaml":      "max_args: [\n",
	}

	for tn, contents := range cases {
		t.Run(tn, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/cfg/config.yaml", []byte(contents), 0600))

			_, err := Load(fs, "/cfg")
			assert.Error(t, err)
		})
	}

	_, err := Load(afero.NewMemMapFs(), "/missing")
	assert.Error(t, err)
}
