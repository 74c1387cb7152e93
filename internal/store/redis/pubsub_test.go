package redis_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	redisstore "github.com/gosuda/gabinete/internal/store/redis"
)

func TestChannelNames(t *testing.T) {
	t.Parallel()

	id := uuid.MustParse("aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	tests := []struct {
		name string
		fn   func(uuid.UUID) string
		want string
	}{
		{name: "board", fn: redisstore.BoardChannel, want: "board:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"},
		{name: "notifications", fn: redisstore.NotificationChannel, want: "notifications:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"},
		{name: "preferences", fn: redisstore.PreferencesChannel, want: "prefs:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"},
		{name: "tenant", fn: redisstore.TenantChannel, want: "tenant:aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.fn(id))
		})
	}
}

func TestChannelNames_Distinct(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	names := map[string]struct{}{
		redisstore.BoardChannel(id):        {},
		redisstore.NotificationChannel(id): {},
		redisstore.PreferencesChannel(id):  {},
		redisstore.TenantChannel(id):       {},
	}
	assert.Len(t, names, 4)
}
