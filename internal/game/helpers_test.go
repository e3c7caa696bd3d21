package game

import (
    "sort"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/require"
)

type sentEvent struct {
    to      string // connection id, or "room:<id>"
    exclude string
    kind    EventKind
    payload any
}

// recordingHub captures every outbound event and tracks room membership the
// way a socket layer would.
type recordingHub struct {
    mu      sync.Mutex
    events  []sentEvent
    members map[string]map[string]bool
    closed  []string
}

func newRecordingHub() *recordingHub {
    return &recordingHub{members: make(map[string]map[string]bool)}
}

func (h *recordingHub) Notify(connID string, kind EventKind, payload any) {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.events = append(h.events, sentEvent{to: connID, kind: kind, payload: payload})
}

func (h *recordingHub) Broadcast(roomID string, kind EventKind, payload any, exclude string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.events = append(h.events, sentEvent{to: "room:" + roomID, exclude: exclude, kind: kind, payload: payload})
}

func (h *recordingHub) BroadcastAll(roomID string, kind EventKind, payload any) {
    h.Broadcast(roomID, kind, payload, "")
}

func (h *recordingHub) Join(connID, roomID string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    if h.members[roomID] == nil {
        h.members[roomID] = make(map[string]bool)
    }
    h.members[roomID][connID] = true
}

func (h *recordingHub) Leave(connID, roomID string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    delete(h.members[roomID], connID)
}

func (h *recordingHub) Close(roomID string) {
    h.mu.Lock()
    defer h.mu.Unlock()
    delete(h.members, roomID)
    h.closed = append(h.closed, roomID)
}

func (h *recordingHub) reset() {
    h.mu.Lock()
    defer h.mu.Unlock()
    h.events = nil
}

// received returns the payloads of kind that reached connID, directly or
// through a room broadcast it was not excluded from.
func (h *recordingHub) received(connID, roomID string, kind EventKind) []any {
    h.mu.Lock()
    defer h.mu.Unlock()
    var out []any
    for _, e := range h.events {
        if e.kind != kind {
            continue
        }
        if e.to == connID || (e.to == "room:"+roomID && e.exclude != connID) {
            out = append(out, e.payload)
        }
    }
    return out
}

func (h *recordingHub) ofKind(kind EventKind) []sentEvent {
    h.mu.Lock()
    defer h.mu.Unlock()
    var out []sentEvent
    for _, e := range h.events {
        if e.kind == kind {
            out = append(out, e)
        }
    }
    return out
}

// manualClock only moves when told to; due callbacks run synchronously in
// Advance.
type manualClock struct {
    mu     sync.Mutex
    now    time.Time
    timers []*manualTimer
}

type manualTimer struct {
    clock   *manualClock
    at      time.Time
    f       func()
    stopped bool
    fired   bool
}

func newManualClock() *manualClock {
    return &manualClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *manualClock) Now() time.Time {
    c.mu.Lock()
    defer c.mu.Unlock()
    return c.now
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
    c.mu.Lock()
    defer c.mu.Unlock()
    t := &manualTimer{clock: c, at: c.now.Add(d), f: f}
    c.timers = append(c.timers, t)
    return t
}

func (t *manualTimer) Stop() bool {
    t.clock.mu.Lock()
    defer t.clock.mu.Unlock()
    if t.stopped || t.fired {
        return false
    }
    t.stopped = true
    return true
}

// Advance moves time forward by d, firing due timers in order.
func (c *manualClock) Advance(d time.Duration) {
    c.mu.Lock()
    target := c.now.Add(d)
    c.mu.Unlock()
    for {
        c.mu.Lock()
        var due []*manualTimer
        for _, t := range c.timers {
            if !t.stopped && !t.fired && !t.at.After(target) {
                due = append(due, t)
            }
        }
        if len(due) == 0 {
            c.now = target
            c.mu.Unlock()
            return
        }
        sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
        next := due[0]
        next.fired = true
        c.now = next.at
        c.mu.Unlock()
        next.f()
    }
}

func (c *manualClock) pending() int {
    c.mu.Lock()
    defer c.mu.Unlock()
    n := 0
    for _, t := range c.timers {
        if !t.stopped && !t.fired {
            n++
        }
    }
    return n
}

type fixedWords []string

func (w fixedWords) Offer() []string { return append([]string(nil), w...) }

type fixture struct {
    t      *testing.T
    reg    *Registry
    hub    *recordingHub
    clock  *manualClock
    rounds *RoundService
    life   *LifecycleService
    ended  []Result
    pick   int
}

func newFixture(t *testing.T, tweak ...func(*Options)) *fixture {
    t.Helper()
    f := &fixture{t: t, reg: NewRegistry(), hub: newRecordingHub(), clock: newManualClock()}
    opts := Options{
        Clock:           f.clock,
        Words:           fixedWords{"APPLE", "BANANA", "CHERRY"},
        DefaultSettings: Settings{TotalRounds: 2, RoundTime: 60},
        RevealDelay:     5 * time.Second,
        OnGameEnd:       func(r Result) { f.ended = append(f.ended, r) },
        Intn:            func(n int) int { return f.pick % n },
    }
    for _, fn := range tweak {
        fn(&opts)
    }
    f.rounds = NewRoundService(f.reg, f.hub, opts)
    f.life = NewLifecycleService(f.rounds)
    return f
}

// lobby creates a room owned by the first id and joins the rest.
func (f *fixture) lobby(ids ...string) *Room {
    f.t.Helper()
    room, err := f.life.CreateRoom(ids[0], Profile{Name: "name-" + ids[0], Avatar: "a"})
    require.NoError(f.t, err)
    for _, id := range ids[1:] {
        _, err := f.life.JoinRoom(id, Profile{Name: "name-" + id, Avatar: "a"}, room.ID)
        require.NoError(f.t, err)
    }
    return room
}

// started builds a lobby and starts the game with the drawer at index pick.
func (f *fixture) started(pick int, ids ...string) *Room {
    f.t.Helper()
    room := f.lobby(ids...)
    f.pick = pick
    require.NoError(f.t, f.life.StartGame(ids[0]))
    return room
}

func (f *fixture) player(id string) *Player {
    f.t.Helper()
    p, ok := f.reg.Player(id)
    require.True(f.t, ok, "player %s should be registered", id)
    return p
}

// checkInvariants asserts the structural room invariants.
func checkInvariants(t *testing.T, room *Room) {
    t.Helper()
    room.mu.Lock()
    defer room.mu.Unlock()
    for id := range room.scores {
        require.True(t, room.has(id), "score key %s must be a member", id)
    }
    for id := range room.guessed {
        require.True(t, room.has(id), "guessed %s must be a member", id)
        require.NotEqual(t, room.drawerID, id, "drawer cannot be in the guessed set")
    }
    if room.active() {
        require.GreaterOrEqual(t, room.indexOf(room.drawerID), 0, "drawer must be a member")
    }
    if room.phase == PhaseEnd {
        require.LessOrEqual(t, room.round, room.settings.TotalRounds)
    }
}
