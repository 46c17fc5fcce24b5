package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Task{
		{Start: 0, Count: 1},
		{Start: 100, Count: 32},
		{Start: MaxTaskSpan, Count: 1},
		{Start: 0, Count: MaxTaskSpan},
	}
	for _, tc := range cases {
		word := tc.Encode()
		got := DecodeTask(word)
		assert.Equal(t, tc, got)
	}
}

func TestTaskEncodeNeverProducesZeroForNonEmpty(t *testing.T) {
	task := Task{Start: 0, Count: 5}
	assert.NotEqual(t, uint32(0), task.Encode())
}

func TestTaskValidate(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
	}{
		{"ok", Task{Start: 0, Count: 32}, false},
		{"zero count", Task{Start: 0, Count: 0}, true},
		{"ends at top of range", Task{Start: 1, Count: MaxTaskSpan}, false},
		{"overflows", Task{Start: MaxTaskSpan, Count: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
