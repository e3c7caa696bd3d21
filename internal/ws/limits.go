package ws

import (
    "golang.org/x/time/rate"

    "github.com/kiliankoe/sketchdash/internal/config"
)

// limits throttles the chatty inbound events of one connection.
type limits struct {
    chat *rate.Limiter
    draw *rate.Limiter
}

func newLimits(cfg config.Config) *limits {
    return &limits{
        chat: newLimiter(cfg.ChatRate, cfg.ChatBurst),
        draw: newLimiter(cfg.DrawRate, cfg.DrawBurst),
    }
}

// newLimiter returns nil, meaning unlimited, when rate or burst is unset.
func newLimiter(perSecond float64, burst int) *rate.Limiter {
    if perSecond <= 0 || burst <= 0 {
        return nil
    }
    return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func (l *limits) allowChat() bool { return allow(l.chat) }
func (l *limits) allowDraw() bool { return allow(l.draw) }

func allow(l *rate.Limiter) bool {
    return l == nil || l.Allow()
}
