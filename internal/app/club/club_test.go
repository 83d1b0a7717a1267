package club

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClub_Permits(t *testing.T) {
	c := Club{ID: "c1", AdminID: "admin", MemberIDs: []string{"m1", "m2"}}

	tests := []struct {
		name   string
		userID string
		want   bool
	}{
		{name: "admin", userID: "admin", want: true},
		{name: "member", userID: "m2", want: true},
		{name: "outsider", userID: "v", want: false},
		{name: "empty id", userID: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, c.Permits(tt.userID))
		})
	}
}

func TestClub_PermitsWithoutAdmin(t *testing.T) {
	req := require.New(t)

	c := Club{ID: "c1", MemberIDs: []string{"m1"}}

	req.False(c.Permits(""))
	req.True(c.Permits("m1"))
}
