package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessageAppendsLine(t *testing.T) {
	dir := t.TempDir()
	ev := AdmissionEvaluatedEvent{
		CheckID:       9,
		Valid:         true,
		Admitted:      false,
		TicketCount:   2,
		RejectedCount: 1,
		Seats:         []string{"A-1", "J-16"},
		Locale:        "en",
		Output:        "seat-limit",
		EvaluatedAt:   "2025-01-02T03:04:05Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body, dir))
	require.NoError(t, handleMessage(body, dir))

	data, err := os.ReadFile(filepath.Join(dir, "admission.log"))
	require.NoError(t, err)
	want := `[2025-01-02T03:04:05Z] Admission rejected | check_id=9 | tickets=2 | rejected=1 | locale=en | seats=[A-1,J-16] | output="seat-limit"` + "\n"
	assert.Equal(t, want+want, string(data))
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	assert.Error(t, handleMessage([]byte("{"), t.TempDir()))
}

func TestWriteLineFlattensOutput(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeLine(&sb, AdmissionEvaluatedEvent{Valid: false, Output: "a\nb"}))
	assert.Contains(t, sb.String(), "Admission invalid")
	assert.Contains(t, sb.String(), `output="a | b"`)
}
