/*
Package club describes the slice of a club that the chat server needs: who administers
it and who belongs to it. Clubs are created and edited elsewhere; chat only reads them.
*/
package club

//go:generate go run go.uber.org/mock/mockgen -source=club.go -destination=../../mocks/mock_club_directory.go -package=mocks

import (
	"context"
	"errors"
	"slices"
)

// ErrNotFound is returned by a Directory when no club has the requested id.
var ErrNotFound = errors.New("club not found")

// Club is the membership view of a club. Its id doubles as the chat room id.
type Club struct {
	ID        string
	AdminID   string
	MemberIDs []string
}

// Permits reports whether userID may join the club's chat: the admin or any member.
func (c Club) Permits(userID string) bool {
	if userID == "" {
		return false
	}
	return c.AdminID == userID || slices.Contains(c.MemberIDs, userID)
}

// Directory is the source of truth for club membership.
type Directory interface {
	GetClub(ctx context.Context, clubID string) (Club, error)
}
