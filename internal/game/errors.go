package game

import "errors"

var (
    ErrRoomNotFound        = errors.New("room not found")
    ErrPlayerNotFound      = errors.New("player not found")
    ErrNotRoomMember       = errors.New("player does not belong to the room")
    ErrUnauthorizedRole    = errors.New("unauthorized access")
    ErrGameAlreadyStarted  = errors.New("game already started")
    ErrInsufficientPlayers = errors.New("not enough players")
    ErrRoomFull            = errors.New("room full")
    ErrInvalidPhase        = errors.New("invalid phase for action")
    ErrNotDrawer           = errors.New("not the current drawer")
    ErrEmptyWord           = errors.New("empty word")
    ErrInvalidSettings     = errors.New("invalid settings")
    ErrDrawerUnresolved    = errors.New("next drawer does not exist")
)

// Code maps an error to the stable code sent to clients.
func Code(err error) string {
    switch {
    case errors.Is(err, ErrRoomNotFound):
        return "room_not_found"
    case errors.Is(err, ErrPlayerNotFound):
        return "player_not_found"
    case errors.Is(err, ErrNotRoomMember):
        return "not_room_member"
    case errors.Is(err, ErrUnauthorizedRole):
        return "unauthorized"
    case errors.Is(err, ErrGameAlreadyStarted):
        return "game_already_started"
    case errors.Is(err, ErrInsufficientPlayers):
        return "insufficient_players"
    case errors.Is(err, ErrRoomFull):
        return "room_full"
    case errors.Is(err, ErrInvalidPhase):
        return "invalid_phase"
    case errors.Is(err, ErrNotDrawer):
        return "not_drawer"
    case errors.Is(err, ErrEmptyWord):
        return "empty_word"
    case errors.Is(err, ErrInvalidSettings):
        return "invalid_settings"
    case errors.Is(err, ErrDrawerUnresolved):
        return "server_error"
    default:
        return "bad_request"
    }
}
