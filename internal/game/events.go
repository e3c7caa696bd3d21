package game

// Hub is the connection/session boundary. Implementations deliver events to
// one connection, to a room, and track which connections sit in which room.
type Hub interface {
    Notify(connID string, kind EventKind, payload any)
    // Broadcast sends to every connection in the room except exclude.
    Broadcast(roomID string, kind EventKind, payload any, exclude string)
    BroadcastAll(roomID string, kind EventKind, payload any)
    Join(connID, roomID string)
    Leave(connID, roomID string)
    Close(roomID string)
}

type EventKind string

const (
    EventRoomSync       EventKind = "room:sync"
    EventSettings       EventKind = "room:settings"
    EventRoundSync      EventKind = "round:sync"
    EventWordChoices    EventKind = "round:words"
    EventDrawingStarted EventKind = "round:drawing"
    EventGuessed        EventKind = "round:guessed"
    EventWordReveal     EventKind = "round:reveal"
    EventChat           EventKind = "chat"
    EventDraw           EventKind = "draw"
    EventError          EventKind = "error"
    EventGameEnd        EventKind = "game:end"
)

// ClearCanvas is the draw command that wipes every client's canvas.
var ClearCanvas = [][]float64{{2}}

// LobbySync is sent privately to a player entering a room.
type LobbySync struct {
    RoomID       string       `json:"room_id"`
    GameState    GameState    `json:"game_state"`
    Me           string       `json:"me"`
    Player       *Player      `json:"player,omitempty"`
    Players      []Player     `json:"players,omitempty"`
    Settings     Settings     `json:"settings"`
    PlayerStatus PlayerStatus `json:"player_status"`
}

// MemberUpdate tells the room that a player joined, left or was promoted.
type MemberUpdate struct {
    Player       Player       `json:"player"`
    Settings     *Settings    `json:"settings,omitempty"`
    PlayerStatus PlayerStatus `json:"player_status"`
}

type SettingsSync struct {
    Settings Settings `json:"settings"`
}

type LobbyState struct {
    GameState GameState      `json:"game_state"`
    Scores    map[string]int `json:"scores"`
    Settings  Settings       `json:"settings"`
}

// TurnSync announces a drawer's turn.
type TurnSync struct {
    GameState    GameState      `json:"game_state,omitempty"`
    Scores       map[string]int `json:"scores"`
    TurnPlayerID string         `json:"turn_player_id"`
    Round        int            `json:"round"`
    Choosing     bool           `json:"choosing"`
    RoundChange  bool           `json:"round_change"`
    TimeLeft     int            `json:"time_left"`
}

type WordOffer struct {
    WordList []string `json:"word_list"`
    TimeLeft int      `json:"time_left"`
}

// DrawingStarted carries the word length only, never the word.
type DrawingStarted struct {
    Choosing   bool `json:"choosing"`
    RoundStart bool `json:"round_start"`
    WordLength int  `json:"wordLength"`
    TimeLeft   int  `json:"time_left"`
}

type GuessResult struct {
    Scores          map[string]int `json:"scores"`
    GuessedPlayerID string         `json:"guessed_player_id"`
    TimeLeft        int            `json:"timeLeft"`
}

type WordReveal struct {
    Word       string `json:"word"`
    RoundStart bool   `json:"round_start"`
}

type ChatMessage struct {
    ID      string `json:"id"`
    Name    string `json:"name"`
    Message string `json:"message"`
}

type DrawCommands struct {
    Commands [][]float64 `json:"commands"`
}

type ErrorNotice struct {
    Code    string `json:"code"`
    Message string `json:"message"`
}

type GameEnd struct {
    GameState GameState      `json:"game_state"`
    Scores    map[string]int `json:"scores"`
}
