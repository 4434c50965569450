package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nest-oracle/nest-cli/internal/config"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findCmd(t *testing.T, root *cobra.Command, path ...string) *cobra.Command {
	t.Helper()
	cmd, _, err := root.Find(path)
	require.NoError(t, err)
	require.Equal(t, path[len(path)-1], cmd.Name())
	return cmd
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCmd()

	paths := [][]string{
		{"assertions", "list"},
		{"assertions", "show"},
		{"propose"},
		{"dispute"},
		{"settle"},
		{"vote", "list"},
		{"vote", "commit"},
		{"vote", "reveal"},
		{"vote", "advance"},
		{"vote", "resolve"},
		{"vote", "watch"},
		{"commitments", "list"},
		{"commitments", "discard"},
		{"commitments", "prune"},
		{"account"},
		{"register-storage"},
		{"health"},
		{"config"},
		{"config", "set"},
		{"config", "remove"},
		{"version"},
	}
	for _, p := range paths {
		t.Run(strings.Join(p, " "), func(t *testing.T) {
			findCmd(t, root, p...)
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()
	for _, name := range []string{
		"network", "account", "signer-url", "rpc-url", "indexer-url", "data-dir",
		"config", "store", "dry-run", "json", "debug", "non-interactive", "timeout",
	} {
		assert.NotNil(t, root.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "n", root.PersistentFlags().Lookup("network").Shorthand)
}

func TestSkipsApp(t *testing.T) {
	root := NewRootCmd()

	assert.True(t, skipsApp(findCmd(t, root, "version")))
	assert.True(t, skipsApp(findCmd(t, root, "vote")), "group commands without RunE")
	assert.False(t, skipsApp(findCmd(t, root, "vote", "commit")))
	assert.False(t, skipsApp(findCmd(t, root, "config")))
}

func TestWatchHasNoTimeout(t *testing.T) {
	root := NewRootCmd()
	assert.NotEmpty(t, findCmd(t, root, "vote", "watch").Annotations[noTimeoutAnnotation])
	assert.Empty(t, findCmd(t, root, "vote", "list").Annotations[noTimeoutAnnotation])
}

func TestVersionCommand(t *testing.T) {
	config.SetBuildFlags("1.2.3", "abc123", "2026-01-01")
	t.Cleanup(func() { config.SetBuildFlags("dev", "unknown", "unknown") })

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "nest version 1.2.3 (commit abc123, built 2026-01-01)\n", out.String())
}

func TestResolveDataDir(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv("NEST_DATA_DIR", "/from/env")
		root := NewRootCmd()
		require.NoError(t, root.PersistentFlags().Set("data-dir", "/from/flag"))

		dir, err := resolveDataDir(root)
		require.NoError(t, err)
		assert.Equal(t, "/from/flag", dir)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("NEST_DATA_DIR", "/from/env")
		dir, err := resolveDataDir(NewRootCmd())
		require.NoError(t, err)
		assert.Equal(t, "/from/env", dir)
	})

	t.Run("default", func(t *testing.T) {
		t.Setenv("NEST_DATA_DIR", "")
		t.Setenv("HOME", "/home/tester")
		dir, err := resolveDataDir(NewRootCmd())
		require.NoError(t, err)
		assert.Equal(t, "/home/tester/.nest", dir)
	})
}

func TestParseLiveness(t *testing.T) {
	d, err := parseLiveness("6h")
	require.NoError(t, err)
	assert.Equal(t, "6h0m0s", d.String())

	d, err = parseLiveness("90m")
	require.NoError(t, err)
	assert.Equal(t, "1h30m0s", d.String())

	for _, bad := range []string{"", "soon", "-1h", "0s"} {
		_, err := parseLiveness(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseID(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 32)

	id, err := parseID("assertion id", valid)
	require.NoError(t, err)
	assert.Equal(t, valid, id.Hex())

	_, err = parseID("assertion id", "0x1234")
	assert.ErrorContains(t, err, "invalid assertion id")

	req, err := optionalRequestID("")
	require.NoError(t, err)
	assert.Nil(t, req)

	req, err = optionalRequestID(strings.Repeat("cd", 32))
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "0x"+strings.Repeat("cd", 32), req.Hex())
}
