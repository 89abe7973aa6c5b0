package controllers

import (
	"github.com/resor-app/resor/pkg/ctx"
	"github.com/resor-app/resor/pkg/logger"
	"github.com/resor-app/resor/pkg/ws"
)

// FeedController upgrades staff connections to the live order feed.
type FeedController struct {
	hub *ws.Hub
}

func NewFeedController(hub *ws.Hub) *FeedController {
	return &FeedController{hub: hub}
}

func (c *FeedController) Orders(x *ctx.Context) {
	if err := c.hub.Serve(x.W, x.R); err != nil {
		logger.WithCtx(x.Context()).Warn("order feed upgrade failed", "error", err)
	}
}
