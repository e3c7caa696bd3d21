package game

import (
    "fmt"
    "time"
)

type Role string

const (
    RoleCreator Role = "CREATOR"
    RoleJoiner  Role = "JOINER"
)

// Phase is the room state machine position.
type Phase string

const (
    PhaseLobby    Phase = "LOBBY"
    PhaseChoosing Phase = "CHOOSING"
    PhaseDrawing  Phase = "DRAWING"
    PhaseReveal   Phase = "REVEAL"
    PhaseEnd      Phase = "GAME_END"
    // PhaseStalled marks a room whose next drawer could not be resolved.
    // Only restart, close or leave are accepted afterwards.
    PhaseStalled Phase = "STALLED"
)

// GameState is the coarse state sent to clients.
type GameState string

const (
    StateLobby GameState = "LOBBY"
    StateStart GameState = "START"
    StateEnd   GameState = "END"
)

type PlayerStatus int

const (
    StatusJoined PlayerStatus = iota
    StatusLeft
    StatusPromoted
)

const (
    MinRounds    = 1
    MaxRounds    = 20
    MinRoundTime = 10  // seconds
    MaxRoundTime = 300 // seconds
)

type Settings struct {
    TotalRounds int `json:"total_rounds"`
    RoundTime   int `json:"round_time"` // seconds
}

func (s Settings) Validate() error {
    if s.TotalRounds < MinRounds || s.TotalRounds > MaxRounds {
        return fmt.Errorf("%w: total_rounds must be between %d and %d", ErrInvalidSettings, MinRounds, MaxRounds)
    }
    if s.RoundTime < MinRoundTime || s.RoundTime > MaxRoundTime {
        return fmt.Errorf("%w: round_time must be between %d and %d", ErrInvalidSettings, MinRoundTime, MaxRoundTime)
    }
    return nil
}

// Profile is what a connection supplies when creating or joining a room.
type Profile struct {
    Name   string `json:"name"`
    Avatar string `json:"avatar"`
}

// Player is one connected participant. ID equals the connection id.
// Role and RoomID are only changed while the owning room is locked.
type Player struct {
    ID       string    `json:"id"`
    Name     string    `json:"name"`
    Avatar   string    `json:"avatar"`
    Role     Role      `json:"role"`
    RoomID   string    `json:"-"`
    JoinedAt time.Time `json:"joined_at"`
}

func (p *Player) view() Player {
    return Player{ID: p.ID, Name: p.Name, Avatar: p.Avatar, Role: p.Role, JoinedAt: p.JoinedAt}
}

// TurnTag identifies one drawer's turn. Scheduled callbacks carry the tag
// they were created under and are dropped when it no longer matches.
type TurnTag struct {
    Round int
    Turn  int
}
