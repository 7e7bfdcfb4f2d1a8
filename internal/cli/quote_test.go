package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePositive(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr string
	}{
		{name: "plain integer", value: "12345", want: 12345},
		{name: "empty", value: "", wantErr: "--amount is required"},
		{name: "not a number", value: "12x", wantErr: "not a decimal integer"},
		{name: "zero", value: "0", wantErr: "must be positive"},
		{name: "negative", value: "-3", wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := parsePositive("amount", tt.value)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Int64())
		})
	}
}
