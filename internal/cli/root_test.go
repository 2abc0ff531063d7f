package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "nutrilog", cmd.Use)
	assert.Contains(t, cmd.Long, "seven meal slots")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"show", "dates", "save", "add", "remove", "delete", "export", "analyze", "status"}

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

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestRootOptionsSurviveFlagBinding(t *testing.T) {
	opts := &RootOptions{
		Verbose:    true,
		Format:     "json",
		ConfigPath: "/tmp/nutrilog.yaml",
		Database:   "/tmp/nutrilog-test.db",
	}
	cmd := NewRootCommandWithOptions(opts)

	assert.True(t, opts.Verbose)
	assert.Equal(t, "json", opts.Format)
	assert.Equal(t, "/tmp/nutrilog.yaml", opts.ConfigPath)
	assert.Equal(t, "/tmp/nutrilog-test.db", opts.Database)
	assert.Equal(t, "/tmp/nutrilog-test.db", cmd.PersistentFlags().Lookup("db").DefValue)
}

func TestRootOptions_FormatDefaultsToText(t *testing.T) {
	opts := &RootOptions{}
	NewRootCommandWithOptions(opts)
	assert.Equal(t, "text", opts.Format)
}

func TestCommandFlags(t *testing.T) {
	tests := []struct {
		command  string
		flag     string
		required bool
	}{
		{"show", "date", false},
		{"save", "file", true},
		{"save", "date", false},
		{"add", "slot", true},
		{"add", "name", true},
		{"add", "calories", false},
		{"remove", "id", true},
		{"delete", "date", true},
		{"export", "out", false},
		{"export", "text", false},
		{"analyze", "photo", true},
		{"analyze", "add", false},
	}

	root := NewRootCommand()
	for _, tt := range tests {
		t.Run(tt.command+"/"+tt.flag, func(t *testing.T) {
			sub, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)

			flag := sub.Flags().Lookup(tt.flag)
			require.NotNil(t, flag)
			_, required := flag.Annotations[cobra.BashCompOneRequiredFlag]
			assert.Equal(t, tt.required, required)
		})
	}
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "status"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestIsValidFormat(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))
	assert.False(t, isValidFormat("yaml"))
	assert.False(t, isValidFormat(""))
}
