package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"clubchat/internal/app/club"
	"clubchat/internal/app/message"
	"clubchat/internal/app/user"
	"clubchat/internal/pkg/auth/jwt"
	"clubchat/internal/pkg/errs"
	"clubchat/internal/pkg/logx"
	"clubchat/internal/pkg/resp"
)

// HistorySender is the author of a history entry as currently shown.
type HistorySender struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Photo *string `json:"photo"`
}

// HistoryMessage is one entry of GET /api/clubs/{clubID}/messages.
type HistoryMessage struct {
	ID        string        `json:"id"`
	ClubID    string        `json:"clubId"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
	Sender    HistorySender `json:"sender"`
}

// HistoryResponse is the data of a history reply.
type HistoryResponse struct {
	ClubID   string           `json:"clubId"`
	Messages []HistoryMessage `json:"messages"`
}

// HandleGetHistory returns a club's messages oldest first. With ?since=RFC3339 it
// returns messages after that instant, otherwise the most recent ones. Only the
// club's admin and members may read it.
func HandleGetHistory(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		payload := jwt.GetPayloadFromContext(r)
		clubID := strings.TrimSpace(chi.URLParam(r, "clubID"))

		since, err := parseSince(r.URL.Query().Get("since"))
		if err != nil || clubID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		c, err := deps.Clubs.GetClub(ctx, clubID)
		if errors.Is(err, club.ErrNotFound) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
			return
		}
		if err != nil {
			logx.Error(err, "Club lookup failed for history", "club_id", clubID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if !c.Permits(payload.ID) {
			logx.Warn("History request rejected: not a club member", "club_id", clubID, "user_id", payload.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrNotClubMember))
			return
		}

		msgs, err := deps.Messages.ListByRoom(ctx, clubID, since, deps.Config.HistoryLimit)
		if err != nil {
			logx.Error(err, "Failed to list club messages", "club_id", clubID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		senders := resolveSenders(ctx, deps.Users, msgs)

		resp.RespondSuccess(w, r, HistoryResponse{
			ClubID: clubID,
			Messages: lo.Map(msgs, func(m message.Message, _ int) HistoryMessage {
				return HistoryMessage{
					ID:        m.ID,
					ClubID:    m.RoomID,
					Content:   m.Content,
					Timestamp: m.Timestamp,
					Sender:    senders[m.SenderID],
				}
			}),
		})
	}
}

func parseSince(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// resolveSenders looks each distinct sender up once. Unknown senders keep their id
// with an empty name.
func resolveSenders(ctx context.Context, users user.Directory, msgs []message.Message) map[string]HistorySender {
	ids := lo.Uniq(lo.Map(msgs, func(m message.Message, _ int) string { return m.SenderID }))

	out := make(map[string]HistorySender, len(ids))
	for _, id := range ids {
		sender := HistorySender{ID: id}

		info, err := users.GetDisplayInfo(ctx, id)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				logx.Warn("Display info lookup failed for history", "user_id", id, "error", err.Error())
			}
			out[id] = sender
			continue
		}

		sender.Name = info.Name
		if info.PhotoURL != "" {
			sender.Photo = lo.ToPtr(info.PhotoURL)
		}
		out[id] = sender
	}
	return out
}
