package restriction_test

import (
	"testing"
	"time"

	"github.com/robalyx/fuzzy/internal/restriction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{input: "5h", want: 5 * time.Hour},
		{input: "1d 2h 30m 10s", want: 26*time.Hour + 30*time.Minute + 10*time.Second},
		{input: "10s 1d", want: 24*time.Hour + 10*time.Second},
		{input: "3 days", want: 72 * time.Hour},
		{input: "2 hours 15 minutes", want: 2*time.Hour + 15*time.Minute},
		{input: "45mins", want: 45 * time.Minute},
		{input: "30 secs", want: 30 * time.Second},
		{input: "0m", wantErr: true},
		{input: "soon", wantErr: true},
		{input: "", wantErr: true},
		{input: "99999999999999999999d", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := restriction.ParseDuration(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, restriction.ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0s", restriction.FormatDuration(0))
	assert.Equal(t, "1h", restriction.FormatDuration(time.Hour))
	assert.Equal(t, "1d 2h 30m 10s", restriction.FormatDuration(26*time.Hour+30*time.Minute+10*time.Second))

	d, err := restriction.ParseDuration(restriction.FormatDuration(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, d)
}
