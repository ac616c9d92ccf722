package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigPath(t *testing.T) {
	t.Setenv(configEnv, "")
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })

	assert.Equal(t, "", resolveConfigPath(""))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "moviecatalog.yaml"), []byte("{}"), 0644))
	assert.Equal(t, "./moviecatalog.yaml", resolveConfigPath(""))

	t.Setenv(configEnv, "/etc/catalog.yaml")
	assert.Equal(t, "/etc/catalog.yaml", resolveConfigPath(""))
	assert.Equal(t, "custom.yaml", resolveConfigPath("custom.yaml"))
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "catalog.yaml")
	content := "database:\n  type: sqlite\n  data_dir: " + dir + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(content), 0644))

	rootCmd.SetArgs([]string{"migrate", "--config", cfgFile})
	require.NoError(t, rootCmd.Execute())

	_, err := os.Stat(filepath.Join(dir, "moviecatalog.db"))
	assert.NoError(t, err)
}
