/*
Package user holds the identity information the chat server shows next to a message.
Profiles are edited elsewhere; chat reads display info fresh on every send.
*/
package user

//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../../mocks/mock_user_directory.go -package=mocks -mock_names=Directory=MockUserDirectory

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Directory when the user does not exist.
var ErrNotFound = errors.New("user not found")

// DisplayInfo is what other members see for a sender.
type DisplayInfo struct {
	// Name is the user's display name.
	Name string `json:"name"`

	// PhotoURL is a fetchable avatar URL, empty when the user has none.
	PhotoURL string `json:"photo,omitempty"`
}

// Directory resolves user ids to display info.
type Directory interface {
	GetDisplayInfo(ctx context.Context, userID string) (DisplayInfo, error)
}
