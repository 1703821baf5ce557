package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverityKnownValues(t *testing.T) {
	cases := map[string]Severity{
		"critical": Critical,
		"high":     High,
		"medium":   Medium,
		"low":      Low,
		"info":     Info,
		"":         Info,
	}
	for raw, want := range cases {
		got, err := ParseSeverity(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestParseSeverityUnknownIsError(t *testing.T) {
	_, err := ParseSeverity("bogus")
	require.Error(t, err)
}

func TestSeverityOrdering(t *testing.T) {
	assert.Less(t, int(Info), int(Low))
	assert.Less(t, int(Low), int(Medium))
	assert.Less(t, int(Medium), int(High))
	assert.Less(t, int(High), int(Critical))
}
