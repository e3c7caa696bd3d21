package game

import (
    "math/rand"
    "time"

    "github.com/rs/zerolog/log"
)

// WordProvider hands out the candidates offered to a drawer.
type WordProvider interface {
    Offer() []string
}

type Options struct {
    Clock           Clock
    Words           WordProvider
    DefaultSettings Settings
    // RevealDelay is how long the revealed word stays up before the next turn.
    RevealDelay time.Duration
    // ChooseTimeout auto-picks the first offered word; zero disables it.
    ChooseTimeout time.Duration
    MaxPlayers    int
    // OnGameEnd receives the final standings of every finished game.
    OnGameEnd func(Result)
    // Intn picks the first drawer. Defaults to math/rand.
    Intn func(n int) int
}

func (o Options) withDefaults() Options {
    if o.Clock == nil {
        o.Clock = SystemClock()
    }
    if o.DefaultSettings == (Settings{}) {
        o.DefaultSettings = Settings{TotalRounds: 4, RoundTime: 60}
    }
    if o.RevealDelay <= 0 {
        o.RevealDelay = 5 * time.Second
    }
    if o.MaxPlayers <= 0 {
        o.MaxPlayers = 12
    }
    if o.Intn == nil {
        o.Intn = rand.Intn
    }
    return o
}

// core is the state shared by the lifecycle and round services.
type core struct {
    reg  *Registry
    hub  Hub
    opts Options
}

func newCore(reg *Registry, hub Hub, opts Options) *core {
    return &core{reg: reg, hub: hub, opts: opts.withDefaults()}
}

func (c *core) now() time.Time { return c.opts.Clock.Now() }

// lockMember resolves connID to its player and room and returns the room
// locked. The caller must unlock it.
func (c *core) lockMember(connID string) (*Player, *Room, error) {
    p, ok := c.reg.Player(connID)
    if !ok {
        return nil, nil, ErrPlayerNotFound
    }
    room, ok := c.reg.Room(p.RoomID)
    if !ok {
        return p, nil, ErrRoomNotFound
    }
    room.mu.Lock()
    if room.closed {
        room.mu.Unlock()
        return p, nil, ErrRoomNotFound
    }
    if !room.has(p.ID) {
        room.mu.Unlock()
        return p, nil, ErrNotRoomMember
    }
    return p, room, nil
}

func requireCreator(p *Player) error {
    if p.Role != RoleCreator {
        return ErrUnauthorizedRole
    }
    return nil
}

// roster returns the member views in turn order. mu must be held.
func (c *core) roster(room *Room) []Player {
    out := make([]Player, 0, len(room.players))
    for _, id := range room.players {
        if p, ok := c.reg.Player(id); ok {
            out = append(out, p.view())
        }
    }
    return out
}

// schedule arms the room's single pending timer. When it fires, fn runs
// with the room locked, but only if the room is still on the same turn and
// in the expected phase. mu must be held.
func (c *core) schedule(room *Room, d time.Duration, expect Phase, what string, fn func(*Room)) {
    c.cancelTimer(room)
    tag := room.tag()
    room.timer = c.opts.Clock.AfterFunc(d, func() {
        room.mu.Lock()
        defer c.release(room)
        if room.closed || room.tag() != tag || room.phase != expect {
            log.Debug().Str("room", room.ID).Str("timer", what).Int("round", tag.Round).Int("turn", tag.Turn).Msg("stale timer dropped")
            return
        }
        room.timer = nil
        fn(room)
    })
}

// release unlocks the room and then hands a result finished during the
// locked section to OnGameEnd, so the hook never runs under mu.
func (c *core) release(room *Room) {
    res := room.finished
    room.finished = nil
    room.mu.Unlock()
    if res != nil && c.opts.OnGameEnd != nil {
        c.opts.OnGameEnd(*res)
    }
}

func (c *core) cancelTimer(room *Room) {
    if room.timer != nil {
        room.timer.Stop()
        room.timer = nil
    }
}

// fail sends a private error notice to the requester and returns err.
func (c *core) fail(connID string, err error) error {
    c.hub.Notify(connID, EventError, ErrorNotice{Code: Code(err), Message: err.Error()})
    return err
}
