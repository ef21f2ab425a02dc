package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderWritesSummaryThenTable(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Summary: []Field{{Label: "Student", Value: "Ana Pérez"}},
		Headers: []string{"type", "summary"},
		Rows:    []map[string]string{{"type": "screening", "summary": "needs follow-up, weekly"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Student,Ana Pérez\n\ntype,summary\nscreening,\"needs follow-up, weekly\"\n", string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	out, err := NewPDFExporter().Render(Dataset{
		Title:   "Case report",
		Summary: []Field{{Label: "Diagnóstico", Value: "TDAH"}},
		Headers: []string{"date", "note"},
		Rows:    []map[string]string{{"date": "2024-03-01", "note": "first session"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
