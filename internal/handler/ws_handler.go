package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"clubchat/internal/app/chat"
	"clubchat/internal/pkg/auth/jwt"
	"clubchat/internal/pkg/errs"
	"clubchat/internal/pkg/logx"
	"clubchat/internal/pkg/randx"
	"clubchat/internal/pkg/resp"
)

// HandleWebSocket upgrades the request and serves the connection until it closes.
// Outside development a valid identity token is required; its subject must then
// match the user id the client joins with.
func HandleWebSocket(upgrader websocket.Upgrader, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var authUserID string
		if payload := jwt.GetPayloadFromContext(r); payload != nil {
			authUserID = payload.ID
		} else if !deps.Config.IsDevelopment() {
			logx.Warn("WebSocket connection rejected: missing identity token.", "remote_ip", logx.AnonymizeIP(r.RemoteAddr))
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		connID := randx.ConnectionID()
		logx.Info("WebSocket connection established", "conn_id", connID, "auth_user_id", authUserID)

		client := chat.NewClient(connID, conn, deps.Broker, chat.ClientOptions{
			AuthUserID: authUserID,
			ChatRate:   rate.Limit(deps.Config.ChatRate),
			ChatBurst:  deps.Config.ChatBurst,
		})

		client.Run(deps.ServerCtx)

		logx.Info("WebSocket connection finished", "conn_id", connID)
	}
}
