package db

import (
	"context"
	"fmt"

	"clubchat/internal/app/club"
)

const getClubSQL = `
SELECT c.id::text,
       c.admin_id::text,
       COALESCE(array_agg(m.user_id::text ORDER BY m.joined_at) FILTER (WHERE m.user_id IS NOT NULL), '{}')
FROM clubs c
LEFT JOIN club_members m ON m.club_id = c.id
WHERE c.id = $1
GROUP BY c.id`

// ClubDirectory reads club admin and member sets.
type ClubDirectory struct {
	q Querier
}

// NewClubDirectory returns a club.Directory backed by q.
func NewClubDirectory(q Querier) *ClubDirectory {
	return &ClubDirectory{q: q}
}

// GetClub implements club.Directory.
func (d *ClubDirectory) GetClub(ctx context.Context, clubID string) (club.Club, error) {
	ids, ok := parseIDs(clubID)
	if !ok {
		return club.Club{}, club.ErrNotFound
	}

	var c club.Club
	err := d.q.QueryRow(ctx, getClubSQL, ids[0]).Scan(&c.ID, &c.AdminID, &c.MemberIDs)
	if IsNoRows(err) {
		return club.Club{}, club.ErrNotFound
	}
	if err != nil {
		return club.Club{}, fmt.Errorf("query club %s: %w", clubID, err)
	}

	return c, nil
}
