package middleware

import (
	"testing"

	"github.com/mymmrac/telego"
	"github.com/stretchr/testify/require"
)

func TestIsAdmin(t *testing.T) {
	testCases := []struct {
		name   string
		update telego.Update
		want   bool
	}{
		{
			name:   "admin message",
			update: telego.Update{Message: &telego.Message{From: &telego.User{ID: 10}}},
			want:   true,
		},
		{
			name:   "second admin",
			update: telego.Update{Message: &telego.Message{From: &telego.User{ID: 20}}},
			want:   true,
		},
		{
			name:   "stranger",
			update: telego.Update{Message: &telego.Message{From: &telego.User{ID: 30}}},
			want:   false,
		},
		{
			name:   "channel post without sender",
			update: telego.Update{Message: &telego.Message{}},
			want:   false,
		},
		{
			name:   "admin callback",
			update: telego.Update{CallbackQuery: &telego.CallbackQuery{From: telego.User{ID: 10}}},
			want:   true,
		},
		{
			name:   "empty update",
			update: telego.Update{},
			want:   false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsAdmin(tc.update, []int64{10, 20}))
		})
	}
}
