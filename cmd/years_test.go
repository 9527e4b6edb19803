package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/home-capacity-viewer/internal/model"
)

func TestPrintYears(t *testing.T) {
	useTestConfig(t)
	env, err := initApp(context.Background(), false)
	require.NoError(t, err)

	tests := []struct {
		name      string
		preferred int
		facts     bool
		want      []string
	}{
		{
			name:      "range only",
			preferred: 2025,
			want:      []string{"years: 2025-2026 (default 2025)"},
		},
		{
			name:      "default clamped",
			preferred: 2040,
			want:      []string{"years: 2025-2026 (default 2026)"},
		},
		{
			name:      "with facts",
			preferred: 2025,
			facts:     true,
			want: []string{
				"The highest water supply in 2025 is in Hartlepool with a value of 1.50",
				"The lowest energy supply in 2025 is in Middlesbrough with a value of -1.00",
				"The average energy supply in 2025 is 0.50",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, printYears(&buf, env.Processed, tt.preferred, tt.facts))
			for _, line := range tt.want {
				assert.Contains(t, buf.String(), line)
			}
		})
	}
}

func TestPrintYears_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printYears(&buf, &model.Processed{}, 2025, false))
	assert.Equal(t, "no year columns loaded\n", buf.String())
}
