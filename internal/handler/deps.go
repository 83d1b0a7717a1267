package handler

import (
	"context"

	"clubchat/internal/app/chat"
	"clubchat/internal/app/club"
	"clubchat/internal/app/message"
	"clubchat/internal/app/user"
	"clubchat/internal/configs"
)

// AppDeps is everything the HTTP layer needs.
type AppDeps struct {
	Config   *configs.AppConfig
	Broker   *chat.Broker
	Clubs    club.Directory
	Users    user.Directory
	Messages message.Store

	// ServerCtx is cancelled when the server starts shutting down. Live
	// WebSocket connections and background sweepers stop with it.
	ServerCtx context.Context
}
