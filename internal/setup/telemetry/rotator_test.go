package telemetry_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/civicwatch/civicwatch/internal/setup/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRotatorKeepsRecentLines(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "main.log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)

	rotator := telemetry.NewLogRotator(file, 3, path)
	t.Cleanup(func() { file.Close() })

	for i := 1; i <= 5; i++ {
		_, err := fmt.Fprintf(rotator, "line %d\n", i)
		require.NoError(t, err)
	}

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\nline 3\nline 4\nline 5\n", string(content))

	// Twice the capacity triggers a rewrite with the newest lines
	_, err = fmt.Fprintf(rotator, "line 6\n")
	require.NoError(t, err)

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line 4\nline 5\nline 6\n", string(content))

	_, err = fmt.Fprintf(rotator, "line 7\n")
	require.NoError(t, err)

	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line 4\nline 5\nline 6\nline 7\n", string(content))
}

func TestLogRotatorSplitsMultilineWrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "database.log")
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })

	rotator := telemetry.NewLogRotator(file, 2, path)

	_, err = rotator.Write([]byte("a\nb\nc\nd\n"))
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "c\nd\n", string(content))
}

func TestServiceTypeString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "api", telemetry.ServiceAPI.String())
	assert.Equal(t, "db", telemetry.ServiceDB.String())
	assert.Equal(t, "sim", telemetry.ServiceSim.String())
}
