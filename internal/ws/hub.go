package ws

import (
    "sync"

    "github.com/rs/zerolog/log"

    "github.com/kiliankoe/sketchdash/internal/game"
)

// emitter is the part of a socket.io connection the hub needs.
type emitter interface {
    ID() string
    Emit(event string, v ...interface{})
    Join(room string)
    Leave(room string)
}

// hub implements game.Hub over live connections. Room membership is mirrored
// into socket.io rooms and tracked here so broadcasts can skip the sender.
type hub struct {
    mu      sync.RWMutex
    conns   map[string]emitter
    members map[string]map[string]emitter // roomID -> connID -> conn
}

func newHub() *hub {
    return &hub{conns: make(map[string]emitter), members: make(map[string]map[string]emitter)}
}

func (h *hub) add(c emitter) {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.conns[c.ID()] = c
}

func (h *hub) remove(connID string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    delete(h.conns, connID)
    for roomID, m := range h.members {
        delete(m, connID)
        if len(m) == 0 {
            delete(h.members, roomID)
        }
    }
}

func (h *hub) Notify(connID string, kind game.EventKind, payload any) {
    h.mu.RLock()
    c, ok := h.conns[connID]
    h.mu.RUnlock()
    if !ok {
        log.Debug().Str("sid", connID).Str("event", string(kind)).Msg("notify to unknown connection")
        return
    }
    c.Emit(string(kind), payload)
}

func (h *hub) Broadcast(roomID string, kind game.EventKind, payload any, exclude string) {
    h.mu.RLock()
    defer h.mu.RUnlock()
    for id, c := range h.members[roomID] {
        if id == exclude {
            continue
        }
        c.Emit(string(kind), payload)
    }
}

func (h *hub) BroadcastAll(roomID string, kind game.EventKind, payload any) {
    h.Broadcast(roomID, kind, payload, "")
}

func (h *hub) Join(connID, roomID string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    c, ok := h.conns[connID]
    if !ok {
        return
    }
    if h.members[roomID] == nil {
        h.members[roomID] = make(map[string]emitter)
    }
    h.members[roomID][connID] = c
    c.Join(roomID)
}

func (h *hub) Leave(connID, roomID string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    m := h.members[roomID]
    if c, ok := m[connID]; ok {
        c.Leave(roomID)
        delete(m, connID)
    }
    if len(m) == 0 {
        delete(h.members, roomID)
    }
}

func (h *hub) Close(roomID string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    for _, c := range h.members[roomID] {
        c.Leave(roomID)
    }
    delete(h.members, roomID)
}
