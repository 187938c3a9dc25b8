//go:build unit

package controllers_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const testConfig = `providers:
  - name: corp
    type: gitlab
    token: glpat-test
`

// newTestCommand builds a cobra command with the global --config flag pointing at a temporary file.
func newTestCommand(t *testing.T, addFlags func(*cobra.Command)) (*cobra.Command, *bytes.Buffer) {
	t.Helper()

	configPath := filepath.Join(t.TempDir(), "gitbridge.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0o600))

	//nolint:exhaustruct // Minimal Command initialization with required fields only
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("config", configPath, "")
	addFlags(cmd)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	return cmd, out
}
