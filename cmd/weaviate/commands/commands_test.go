package commands_test

import (
	"testing"

	"github.com/gmanninglive/weaviate-client/cmd/weaviate/commands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchemaCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewSchemaCommand()
	assert.Equal(t, "schema", cmd.Use)
	assert.Equal(t, []string{"classes"}, cmd.Aliases)
	assert.Equal(t, "Manage the database schema", cmd.Short)

	subcommands := cmd.Commands()
	assert.Len(t, subcommands, 4)

	commandNames := make([]string, 0, len(subcommands))
	for _, subcmd := range subcommands {
		commandNames = append(commandNames, subcmd.Name())
	}

	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "create-class")
	assert.Contains(t, commandNames, "get-class")
	assert.Contains(t, commandNames, "delete-class")
}

func TestSchemaCreateClassCommand(t *testing.T) {
	t.Parallel()

	cmd := findSubcommand(commands.NewSchemaCommand(), "create-class")
	require.NotNil(t, cmd)
	assert.NotNil(t, cmd.RunE)

	fileFlag := cmd.Flags().Lookup("file")
	require.NotNil(t, fileFlag)
	assert.Equal(t, "f", fileFlag.Shorthand)
	assert.Empty(t, fileFlag.DefValue)
}

func TestSchemaClassCommandsRequireName(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"get-class", "delete-class"} {
		cmd := findSubcommand(commands.NewSchemaCommand(), name)
		require.NotNil(t, cmd, name)
		assert.Equal(t, name+" CLASS_NAME", cmd.Use)
		require.Error(t, cmd.Args(cmd, nil))
		require.NoError(t, cmd.Args(cmd, []string{"Article"}))
	}
}

func TestNewGraphQLCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewGraphQLCommand()
	assert.Equal(t, "graphql", cmd.Use)
	assert.Equal(t, []string{"gql"}, cmd.Aliases)
	assert.Len(t, cmd.Commands(), 2)

	get := findSubcommand(cmd, "get")
	require.NotNil(t, get)

	for _, flag := range []string{"fields", "where", "near-text", "certainty", "limit", "offset", "after"} {
		assert.NotNil(t, get.Flags().Lookup(flag), flag)
	}

	assert.Equal(t, "0", get.Flags().Lookup("limit").DefValue)

	raw := findSubcommand(cmd, "raw")
	require.NotNil(t, raw)
	assert.NotNil(t, raw.Flags().Lookup("file"))
	require.Error(t, raw.Args(raw, []string{"a", "b"}))
}

func TestProbeCommands(t *testing.T) {
	t.Parallel()

	live := commands.NewLiveCommand()
	assert.Equal(t, "live", live.Use)
	assert.Equal(t, "Check that the server is live", live.Short)

	ready := commands.NewReadyCommand()
	assert.Equal(t, "ready", ready.Use)
	assert.Equal(t, "Check that the server is ready to serve requests", ready.Short)
}

func TestNewConfigCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewConfigCommand()
	assert.Equal(t, "config", cmd.Use)

	for _, name := range []string{"show", "set", "unset"} {
		assert.NotNil(t, findSubcommand(cmd, name), name)
	}

	set := findSubcommand(cmd, "set")
	require.Error(t, set.Args(set, []string{"host"}))
	require.NoError(t, set.Args(set, []string{"host", "localhost:8080"}))
}

func TestNewLoginCommand(t *testing.T) {
	t.Parallel()

	cmd := commands.NewLoginCommand()
	assert.Equal(t, "login", cmd.Use)

	for _, flag := range []string{"username", "password", "client-id", "client-secret", "token-url", "scopes"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), flag)
	}

	assert.Equal(t, "u", cmd.Flags().Lookup("username").Shorthand)
	assert.Equal(t, "p", cmd.Flags().Lookup("password").Shorthand)
	assert.Equal(t, "logout", commands.NewLogoutCommand().Use)
}
