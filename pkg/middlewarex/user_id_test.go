package middlewarex_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"agromarket/pkg/contextx"
	"agromarket/pkg/middlewarex"
)

func TestUserID(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		header string
		want   contextx.UserID
		found  bool
	}{
		{name: "Valid identity", header: "7", want: 7, found: true},
		{name: "Missing identity", header: ""},
		{name: "Invalid identity", header: "seven"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			var (
				got   contextx.UserID
				found bool
			)

			h := middlewarex.UserID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				userID, err := contextx.UserIDFromContext(r.Context())
				got, found = userID, err == nil
			}))

			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tc.header != "" {
				req.Header.Set(middlewarex.HeaderNameUserID, tc.header)
			}

			h.ServeHTTP(httptest.NewRecorder(), req)

			rq.Equal(tc.found, found)
			rq.Equal(tc.want, got)
		})
	}
}
