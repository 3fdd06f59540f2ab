package duration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Duration
		wantErr bool
	}{
		{
			name:  "months",
			input: "3 Month",
			want:  Duration{Value: 3, Unit: UnitMonth},
		},
		{
			name:  "single day",
			input: "1 Day",
			want:  Duration{Value: 1, Unit: UnitDay},
		},
		{
			name:  "years",
			input: "2 Year",
			want:  Duration{Value: 2, Unit: UnitYear},
		},
		{
			name:    "zero value",
			input:   "0 Month",
			wantErr: true,
		},
		{
			name:    "negative value",
			input:   "-1 Day",
			wantErr: true,
		},
		{
			name:    "unknown unit",
			input:   "3 Week",
			wantErr: true,
		},
		{
			name:    "missing unit",
			input:   "3",
			wantErr: true,
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "not a number",
			input:   "three Month",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAddTo(t *testing.T) {
	base := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, base.AddDate(0, 0, 10), Duration{Value: 10, Unit: UnitDay}.AddTo(base))
	assert.Equal(t, base.AddDate(0, 3, 0), Duration{Value: 3, Unit: UnitMonth}.AddTo(base))
	assert.Equal(t, base.AddDate(1, 0, 0), Duration{Value: 1, Unit: UnitYear}.AddTo(base))
}

func TestString_Canonical(t *testing.T) {
	d, err := Parse("12 Month")
	require.NoError(t, err)
	assert.Equal(t, "12 Month", d.String())
}
