package game

import (
    "sync"
    "time"
    "unicode/utf8"
)

// Room is one game session. Every mutation happens with mu held; the
// services take the lock for the whole handling of one event so that
// transitions on a room never interleave.
type Room struct {
    ID        string
    CreatedAt time.Time

    mu sync.Mutex

    players  []string // join order, defines turn order
    scores   map[string]int
    round    int
    chance   int
    drawerID string
    word     string
    offered  []string
    guessed  map[string]bool

    turnStart time.Time
    turn      int
    phase     Phase
    started   bool
    settings  Settings
    matchID   string

    timer    Timer
    closed   bool
    finished *Result // set by endGame, delivered once mu is released
}

func newRoom(id string, settings Settings, now time.Time) *Room {
    return &Room{
        ID:        id,
        CreatedAt: now,
        players:   []string{},
        scores:    make(map[string]int),
        round:     1,
        chance:    1,
        guessed:   make(map[string]bool),
        turnStart: now,
        phase:     PhaseLobby,
        settings:  settings,
    }
}

// --- locked accessors ---

func (r *Room) Players() []string {
    r.mu.Lock()
    defer r.mu.Unlock()
    return append([]string(nil), r.players...)
}

func (r *Room) Scores() map[string]int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.scoresCopy()
}

func (r *Room) CurrentRound() int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.round
}

func (r *Room) ChanceCount() int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.chance
}

func (r *Room) DrawerID() string {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.drawerID
}

// CurrentPlayerIndex is the drawer's position in the membership, or -1
// when no drawer is set.
func (r *Room) CurrentPlayerIndex() int {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.indexOf(r.drawerID)
}

func (r *Room) CurrentWord() string {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.word
}

func (r *Room) GuessedPlayers() []string {
    r.mu.Lock()
    defer r.mu.Unlock()
    out := make([]string, 0, len(r.guessed))
    for _, id := range r.players {
        if r.guessed[id] {
            out = append(out, id)
        }
    }
    return out
}

func (r *Room) Phase() Phase {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.phase
}

func (r *Room) GameStarted() bool {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.started
}

func (r *Room) Settings() Settings {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.settings
}

func (r *Room) Tag() TurnTag {
    r.mu.Lock()
    defer r.mu.Unlock()
    return r.tag()
}

// Summary is a read-only view used by the HTTP API.
type Summary struct {
    RoomID    string    `json:"roomId"`
    Players   int       `json:"players"`
    Started   bool      `json:"started"`
    Phase     Phase     `json:"phase"`
    Settings  Settings  `json:"settings"`
    CreatedAt time.Time `json:"createdAt"`
}

func (r *Room) Summary() Summary {
    r.mu.Lock()
    defer r.mu.Unlock()
    return Summary{RoomID: r.ID, Players: len(r.players), Started: r.started, Phase: r.phase, Settings: r.settings, CreatedAt: r.CreatedAt}
}

// --- helpers below require mu held ---

func (r *Room) tag() TurnTag { return TurnTag{Round: r.round, Turn: r.turn} }

func (r *Room) scoresCopy() map[string]int {
    out := make(map[string]int, len(r.scores))
    for k, v := range r.scores {
        out[k] = v
    }
    return out
}

func (r *Room) indexOf(id string) int {
    if id == "" {
        return -1
    }
    for i, p := range r.players {
        if p == id {
            return i
        }
    }
    return -1
}

func (r *Room) has(id string) bool { return r.indexOf(id) >= 0 }

func (r *Room) addPlayer(id string) {
    if r.has(id) {
        return
    }
    r.players = append(r.players, id)
    r.scores[id] = 0
}

// removePlayer drops id from the membership keeping the order of everyone
// else, and from scores and the guessed set.
func (r *Room) removePlayer(id string) bool {
    i := r.indexOf(id)
    if i < 0 {
        return false
    }
    r.players = append(r.players[:i], r.players[i+1:]...)
    delete(r.scores, id)
    delete(r.guessed, id)
    if r.chance > len(r.players) && len(r.players) > 0 {
        r.chance = len(r.players)
    }
    return true
}

// successor returns the member after id in turn order, wrapping around.
func (r *Room) successor(id string) string {
    if len(r.players) == 0 {
        return ""
    }
    i := r.indexOf(id)
    if i < 0 {
        return r.players[0]
    }
    return r.players[(i+1)%len(r.players)]
}

func (r *Room) resetScores() {
    r.scores = make(map[string]int, len(r.players))
    for _, id := range r.players {
        r.scores[id] = 0
    }
}

func (r *Room) resetTurnClock(now time.Time) {
    r.turnStart = now
    r.guessed = make(map[string]bool)
}

func (r *Room) elapsedSeconds(now time.Time) int {
    return int(now.Sub(r.turnStart) / time.Second)
}

func (r *Room) timeLeft(now time.Time) int {
    return r.settings.RoundTime - r.elapsedSeconds(now)
}

func (r *Room) guessedCount() int { return len(r.guessed) }

// allGuessed reports whether every non-drawer has guessed this turn.
func (r *Room) allGuessed() bool {
    return len(r.players) > 1 && r.guessedCount() >= len(r.players)-1
}

func (r *Room) active() bool {
    switch r.phase {
    case PhaseChoosing, PhaseDrawing, PhaseReveal:
        return true
    }
    return false
}

// finalTurn reports whether the current turn is the last one of the last round.
func (r *Room) finalTurn() bool {
    return r.round >= r.settings.TotalRounds && r.chance >= len(r.players)
}

func (r *Room) begin(drawerID, matchID string, now time.Time) {
    r.started = true
    r.phase = PhaseChoosing
    r.round = 1
    r.chance = 1
    r.drawerID = drawerID
    r.word = ""
    r.offered = nil
    r.matchID = matchID
    r.turn++
    r.resetScores()
    r.resetTurnClock(now)
}

// rotate hands the turn to next. chance counts drawers within the round;
// once every member has drawn the round advances.
func (r *Room) rotate(next string, now time.Time) {
    if r.chance >= len(r.players) {
        r.round++
        r.chance = 1
    } else {
        r.chance++
    }
    r.drawerID = next
    r.word = ""
    r.offered = nil
    r.phase = PhaseChoosing
    r.turn++
    r.resetTurnClock(now)
}

func (r *Room) setWord(word string, now time.Time) {
    r.word = word
    r.offered = nil
    r.phase = PhaseDrawing
    r.resetTurnClock(now)
}

func (r *Room) backToLobby(now time.Time) {
    r.started = false
    r.phase = PhaseLobby
    r.word = ""
    r.offered = nil
    r.drawerID = ""
    r.round = 1
    r.chance = 1
    r.turn++
    r.resetScores()
    r.resetTurnClock(now)
}

func wordLength(w string) int { return utf8.RuneCountInString(w) }
