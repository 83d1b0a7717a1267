package db

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"clubchat/internal/app/user"
	"clubchat/internal/pkg/logx"
)

const getDisplayInfoSQL = `SELECT name, COALESCE(photo, '') FROM users WHERE id = $1`

// PhotoResolver turns a stored photo reference into a URL clients can fetch.
type PhotoResolver interface {
	ResolvePhoto(ctx context.Context, ref string) (string, error)
}

// UserDirectory reads display names and photos.
type UserDirectory struct {
	q      Querier
	photos PhotoResolver
	logger zerolog.Logger
}

// NewUserDirectory returns a user.Directory backed by q. photos may be nil, in
// which case stored references are returned unchanged.
func NewUserDirectory(q Querier, photos PhotoResolver) *UserDirectory {
	return &UserDirectory{
		q:      q,
		photos: photos,
		logger: logx.Component("user_directory"),
	}
}

// GetDisplayInfo implements user.Directory.
func (d *UserDirectory) GetDisplayInfo(ctx context.Context, userID string) (user.DisplayInfo, error) {
	ids, ok := parseIDs(userID)
	if !ok {
		return user.DisplayInfo{}, user.ErrNotFound
	}

	var info user.DisplayInfo
	var photoRef string
	err := d.q.QueryRow(ctx, getDisplayInfoSQL, ids[0]).Scan(&info.Name, &photoRef)
	if IsNoRows(err) {
		return user.DisplayInfo{}, user.ErrNotFound
	}
	if err != nil {
		return user.DisplayInfo{}, fmt.Errorf("query user %s: %w", userID, err)
	}

	info.PhotoURL = d.resolvePhoto(ctx, userID, photoRef)
	return info, nil
}

// resolvePhoto never fails the lookup; an unresolvable photo is shown as none.
func (d *UserDirectory) resolvePhoto(ctx context.Context, userID, ref string) string {
	if ref == "" || d.photos == nil {
		return ref
	}

	url, err := d.photos.ResolvePhoto(ctx, ref)
	if err != nil {
		d.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to resolve photo reference")
		return ""
	}
	return url
}
