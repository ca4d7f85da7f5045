package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["seed"])
}

func TestSeedCommand_RequiresFile(t *testing.T) {
	require.Error(t, seedCmd.Args(seedCmd, nil))
	require.NoError(t, seedCmd.Args(seedCmd, []string{"demo.yaml"}))
}
