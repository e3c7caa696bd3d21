package game

import (
    "github.com/google/uuid"
    "github.com/rs/zerolog/log"
)

// LifecycleService admits and evicts players, starts and restarts games and
// recovers rooms from disconnects.
type LifecycleService struct {
    *core
    rounds *RoundService
}

func NewLifecycleService(rounds *RoundService) *LifecycleService {
    return &LifecycleService{core: rounds.core, rounds: rounds}
}

// CreateRoom opens a lobby with the requester as its creator.
func (ls *LifecycleService) CreateRoom(connID string, profile Profile) (*Room, error) {
    ls.leaveIfMember(connID)

    now := ls.now()
    room := newRoom(randomCode(roomCodeLength), ls.opts.DefaultSettings, now)
    room.mu.Lock()
    defer ls.release(room)
    for !ls.reg.AddRoom(room) {
        room.ID = randomCode(roomCodeLength)
    }

    p := &Player{ID: connID, Name: profile.Name, Avatar: profile.Avatar, Role: RoleCreator, RoomID: room.ID, JoinedAt: now}
    room.addPlayer(p.ID)
    ls.reg.SetPlayer(p)
    ls.hub.Join(p.ID, room.ID)
    log.Info().Str("room", room.ID).Str("player", p.ID).Msg("room:create")

    view := p.view()
    ls.hub.Notify(p.ID, EventRoomSync, LobbySync{
        RoomID:       room.ID,
        GameState:    StateLobby,
        Me:           p.ID,
        Player:       &view,
        Settings:     room.settings,
        PlayerStatus: StatusJoined,
    })
    return room, nil
}

// JoinRoom admits the requester to a lobby. A rejected join leaves the
// requester wherever they were.
func (ls *LifecycleService) JoinRoom(connID string, profile Profile, roomID string) (*Room, error) {
    room, ok := ls.reg.Room(roomID)
    if !ok {
        log.Info().Str("room", roomID).Str("player", connID).Msg("invalid room id")
        return nil, ls.fail(connID, ErrRoomNotFound)
    }
    if err := ls.joinable(room, connID); err != nil {
        return nil, ls.fail(connID, err)
    }
    // never holds two room locks at once
    if p, ok := ls.reg.Player(connID); ok && p.RoomID != roomID {
        ls.leaveIfMember(connID)
    }

    room.mu.Lock()
    defer ls.release(room)
    if room.closed {
        return nil, ls.fail(connID, ErrRoomNotFound)
    }
    if room.has(connID) {
        ls.hub.Notify(connID, EventRoomSync, ls.lobbySync(room, connID))
        return room, nil
    }
    if room.started {
        return nil, ls.fail(connID, ErrGameAlreadyStarted)
    }
    if len(room.players) >= ls.opts.MaxPlayers {
        return nil, ls.fail(connID, ErrRoomFull)
    }

    p := &Player{ID: connID, Name: profile.Name, Avatar: profile.Avatar, Role: RoleJoiner, RoomID: room.ID, JoinedAt: ls.now()}
    room.addPlayer(p.ID)
    ls.reg.SetPlayer(p)
    ls.hub.Join(p.ID, room.ID)
    log.Info().Str("room", room.ID).Str("player", p.ID).Int("players", len(room.players)).Msg("room:join")

    ls.hub.Notify(p.ID, EventRoomSync, ls.lobbySync(room, p.ID))
    settings := room.settings
    ls.hub.Broadcast(room.ID, EventRoomSync, MemberUpdate{Player: p.view(), Settings: &settings, PlayerStatus: StatusJoined}, p.ID)
    return room, nil
}

// joinable reports why connID could not join room right now, if at all.
func (ls *LifecycleService) joinable(room *Room, connID string) error {
    room.mu.Lock()
    defer room.mu.Unlock()
    switch {
    case room.closed:
        return ErrRoomNotFound
    case room.has(connID):
        return nil
    case room.started:
        return ErrGameAlreadyStarted
    case len(room.players) >= ls.opts.MaxPlayers:
        return ErrRoomFull
    }
    return nil
}

// UpdateSettings replaces the room settings. Creator only, lobby only.
func (ls *LifecycleService) UpdateSettings(connID string, settings Settings) error {
    if err := settings.Validate(); err != nil {
        return ls.fail(connID, err)
    }
    p, room, err := ls.lockMember(connID)
    if err != nil {
        return ls.fail(connID, err)
    }
    defer ls.release(room)
    if err := requireCreator(p); err != nil {
        return ls.fail(connID, err)
    }
    if room.started {
        return ls.fail(connID, ErrGameAlreadyStarted)
    }
    room.settings = settings
    log.Info().Str("room", room.ID).Int("rounds", settings.TotalRounds).Int("roundTime", settings.RoundTime).Msg("room:settings")
    ls.hub.BroadcastAll(room.ID, EventSettings, SettingsSync{Settings: settings})
    return nil
}

// StartGame picks a random first drawer and opens the first turn.
func (ls *LifecycleService) StartGame(connID string) error {
    p, room, err := ls.lockMember(connID)
    if err != nil {
        return ls.fail(connID, err)
    }
    defer ls.release(room)
    if err := requireCreator(p); err != nil {
        return ls.fail(connID, err)
    }
    if room.started {
        return ls.fail(connID, ErrGameAlreadyStarted)
    }
    if len(room.players) < 2 {
        log.Info().Str("room", room.ID).Int("players", len(room.players)).Msg("not enough players")
        return ls.fail(connID, ErrInsufficientPlayers)
    }

    drawer := room.players[ls.opts.Intn(len(room.players))]
    room.begin(drawer, uuid.NewString(), ls.now())
    log.Info().Str("room", room.ID).Str("match", room.matchID).Str("drawer", drawer).Int("players", len(room.players)).Msg("game:start")
    ls.rounds.announceTurn(room, TurnSync{GameState: StateStart})
    return nil
}

// RestartGame returns a room to the lobby.
func (ls *LifecycleService) RestartGame(connID string) error {
    p, room, err := ls.lockMember(connID)
    if err != nil {
        return ls.fail(connID, err)
    }
    defer ls.release(room)
    if err := requireCreator(p); err != nil {
        return ls.fail(connID, err)
    }
    ls.cancelTimer(room)
    room.backToLobby(ls.now())
    log.Info().Str("room", room.ID).Msg("game:restart")
    ls.hub.BroadcastAll(room.ID, EventRoomSync, LobbyState{GameState: StateLobby, Scores: room.scoresCopy(), Settings: room.settings})
    return nil
}

// CloseRoom dissolves the room on the creator's request.
func (ls *LifecycleService) CloseRoom(connID string) error {
    p, room, err := ls.lockMember(connID)
    if err != nil {
        return ls.fail(connID, err)
    }
    defer ls.release(room)
    if err := requireCreator(p); err != nil {
        return ls.fail(connID, err)
    }
    ls.dissolve(room, "room closed by creator")
    return nil
}

// LeaveRoom removes a departing connection and repairs the room: dissolve
// it when too few players remain, hand the turn on when the drawer left,
// and promote a new creator when the creator left.
func (ls *LifecycleService) LeaveRoom(connID string) error {
    p, ok := ls.reg.Player(connID)
    if !ok {
        return nil
    }
    room, ok := ls.reg.Room(p.RoomID)
    if !ok {
        ls.reg.RemovePlayer(p.ID)
        return nil
    }
    room.mu.Lock()
    defer ls.release(room)
    if room.closed || !room.has(p.ID) {
        ls.reg.RemovePlayer(p.ID)
        return nil
    }

    wasDrawer := room.active() && room.drawerID == p.ID
    wasCreator := p.Role == RoleCreator
    next := ""
    if wasDrawer {
        next = room.successor(p.ID)
    }
    leaver := p.view()

    room.removePlayer(p.ID)
    ls.reg.RemovePlayer(p.ID)
    ls.hub.Leave(p.ID, room.ID)
    p.RoomID = ""
    log.Info().Str("room", room.ID).Str("player", p.ID).Bool("drawer", wasDrawer).Bool("creator", wasCreator).Int("remaining", len(room.players)).Msg("room:leave")

    if len(room.players) < minViablePlayers(room) {
        ls.dissolve(room, "not enough players")
        return nil
    }

    switch {
    case wasDrawer:
        ls.cancelTimer(room)
        ls.rounds.finishTurn(room, next)
    case room.phase == PhaseDrawing && room.allGuessed():
        ls.rounds.revealWord(room)
    }

    if wasCreator {
        if heir, ok := ls.reg.Player(room.players[0]); ok {
            heir.Role = RoleCreator
            log.Info().Str("room", room.ID).Str("player", heir.ID).Msg("creator migrated")
            ls.hub.BroadcastAll(room.ID, EventRoomSync, MemberUpdate{Player: heir.view(), PlayerStatus: StatusPromoted})
        }
    }
    ls.hub.BroadcastAll(room.ID, EventRoomSync, MemberUpdate{Player: leaver, PlayerStatus: StatusLeft})
    return nil
}

// minViablePlayers is the membership below which a room is dissolved: a
// running game needs two players, a lobby only needs someone in it.
func minViablePlayers(room *Room) int {
    if room.started {
        return 2
    }
    return 1
}

// dissolve evicts the room and all remaining members. mu must be held.
func (ls *LifecycleService) dissolve(room *Room, reason string) {
    ls.cancelTimer(room)
    room.closed = true
    ls.reg.RemoveRoom(room.ID)
    ls.hub.BroadcastAll(room.ID, EventError, ErrorNotice{Code: "room_closed", Message: reason})
    for _, id := range room.players {
        if p, ok := ls.reg.Player(id); ok && p.RoomID == room.ID {
            ls.reg.RemovePlayer(id)
            p.RoomID = ""
        }
    }
    ls.hub.Close(room.ID)
    log.Info().Str("room", room.ID).Str("reason", reason).Int("remaining", len(room.players)).Msg("room dissolved")
}

func (ls *LifecycleService) lobbySync(room *Room, me string) LobbySync {
    state := StateLobby
    switch {
    case room.phase == PhaseEnd:
        state = StateEnd
    case room.started:
        state = StateStart
    }
    return LobbySync{
        RoomID:       room.ID,
        GameState:    state,
        Me:           me,
        Players:      ls.roster(room),
        Settings:     room.settings,
        PlayerStatus: StatusJoined,
    }
}

func (ls *LifecycleService) leaveIfMember(connID string) {
    if _, ok := ls.reg.Player(connID); ok {
        _ = ls.LeaveRoom(connID)
    }
}
