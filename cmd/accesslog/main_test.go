package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLinesSkipsBlankAndCR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.csv")
	content := "\uFEFFtimestamp,userId,path,status,latencyMs\r\n\r\n2025-01-03T10:12:00Z,u1,/a,200,100\r\n   \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lines, err := readLines(path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"timestamp,userId,path,status,latencyMs",
		"2025-01-03T10:12:00Z,u1,/a,200,100",
	}, lines)
}

func TestRunRequiresFile(t *testing.T) {
	assert.EqualError(t, run(nil), "--file is required")
	assert.Error(t, run([]string{"--file=" + filepath.Join(t.TempDir(), "missing.csv")}))
}

func TestRunRejectsUnknownZone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "access.csv")
	require.NoError(t, os.WriteFile(path, []byte("2025-01-03T10:12:00Z,u1,/a,200,100\n"), 0o644))
	assert.Error(t, run([]string{"--file=" + path, "--tz=pst"}))
}
