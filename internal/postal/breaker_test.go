package postal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewBreaker(2, time.Minute)
	b.now = func() time.Time { return now }

	boom := errors.New("upstream down")
	fail := func() error { return boom }
	ok := func() error { return nil }

	require.ErrorIs(t, b.Call(fail), boom)
	assert.Equal(t, StateClosed, b.State())
	require.ErrorIs(t, b.Call(fail), boom)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Call(func() error { called = true; return nil })
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	// After the reset timeout one trial goes through; a failure reopens.
	now = now.Add(2 * time.Minute)
	require.ErrorIs(t, b.Call(fail), boom)
	assert.Equal(t, StateOpen, b.State())

	now = now.Add(2 * time.Minute)
	require.NoError(t, b.Call(ok))
	assert.Equal(t, StateClosed, b.State())

	// A success resets the consecutive failure count.
	require.Error(t, b.Call(fail))
	require.NoError(t, b.Call(ok))
	require.Error(t, b.Call(fail))
	assert.Equal(t, StateClosed, b.State())
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "01310100", want: "01310100"},
		{in: "01310-100", want: "01310100"},
		{in: " 01.310-100 ", want: "01310100"},
		{in: "123", wantErr: true},
		{in: "0131010a", wantErr: true},
		{in: "013101000", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCEP)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
