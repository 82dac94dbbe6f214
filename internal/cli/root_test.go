package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"import", "list", "validate", "replay", "seek", "test"}, names)
}

func TestRootCommand_InvalidFormat(t *testing.T) {
	_, _, err := execute(t, "list", "--db", tempDB(t), "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestRootCommand_DatabaseFromEnv(t *testing.T) {
	t.Setenv("REWIND_DB", "/tmp/sessions.db")

	cmd := NewRootCommand()
	flag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, flag)
	assert.Equal(t, "/tmp/sessions.db", flag.DefValue)
}

func TestLoadConfig_Default(t *testing.T) {
	t.Setenv("REWIND_DB", "")
	require.NoError(t, os.Unsetenv("REWIND_DB"))

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "rewind.db", cfg.Database)
}
