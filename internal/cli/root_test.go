package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "itemcat", cmd.Use)
	assert.Contains(t, cmd.Long, "catalog")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"update", "compile", "images", "add", "validate", "export"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "catalog", "images", "log-level"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCompileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	compileCmd, _, err := cmd.Find([]string{"compile"})
	require.NoError(t, err)

	outputFlag := compileCmd.Flags().Lookup("output")
	require.NotNil(t, outputFlag)
	assert.Equal(t, "o", outputFlag.Shorthand)
}

func TestAddCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	addCmd, _, err := cmd.Find([]string{"add"})
	require.NoError(t, err)

	for _, name := range []string{"id", "shortname", "name", "description", "image", "yes"} {
		assert.NotNil(t, addCmd.Flags().Lookup(name), name)
	}
}

func TestValidateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	validateCmd, _, err := cmd.Find([]string{"validate"})
	require.NoError(t, err)

	limitFlag := validateCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "10", limitFlag.DefValue)
}

func TestRoot_InvalidFormat(t *testing.T) {
	res := execute(NewRootCommand(), "", "validate", "--format", "yaml")
	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "invalid format")

	var exitErr *ExitError
	assert.False(t, errors.As(res.err, &exitErr))
}

func TestRoot_FlagsOverrideConfig(t *testing.T) {
	env := newTestEnv(t)
	env.writeCatalog(t, sampleItems())

	res := execute(NewRootCommand(), "", "validate", "--catalog", env.catalog, "--images", env.images, "--format", "json", "--log-level", "error")
	require.NoError(t, res.err, res.stdout)

	var result ValidationResult
	decode(t, res.stdout, &result)
	assert.Equal(t, env.catalog, result.Catalog)
	assert.Equal(t, env.images, result.Images)
}

func TestRoot_ExplicitConfigMissing(t *testing.T) {
	env := newTestEnv(t)

	res := execute(NewRootCommand(), "", "validate", "--config", env.dir+"/nope.yaml")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.stdout, "Error [E008]")
}

func TestRoot_BadLogLevel(t *testing.T) {
	env := newTestEnv(t)
	env.writeCatalog(t, sampleItems())

	res := execute(NewRootCommand(), "", "validate", "--catalog", env.catalog, "--log-level", "loud")
	require.Error(t, res.err)
	assert.Contains(t, res.stdout, "unknown log level")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
}
