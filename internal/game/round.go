package game

import (
    "strings"
    "time"

    "github.com/rs/zerolog/log"
)

const (
    guesserMultiplier = 5
    drawerMultiplier  = 2
)

// RoundService drives the per-turn cycle: word offer, word choice, guesses,
// scoring, reveal and turn/round advancement.
type RoundService struct {
    *core
}

func NewRoundService(reg *Registry, hub Hub, opts Options) *RoundService {
    return &RoundService{core: newCore(reg, hub, opts)}
}

// OfferWords returns the candidates for the next drawer.
func (rs *RoundService) OfferWords() []string {
    if rs.opts.Words == nil {
        return []string{}
    }
    return rs.opts.Words.Offer()
}

// ChooseWord starts the drawing window for the current drawer.
func (rs *RoundService) ChooseWord(connID, word string) error {
    p, room, err := rs.lockMember(connID)
    if err != nil {
        return rs.fail(connID, err)
    }
    defer rs.release(room)
    if room.phase != PhaseChoosing {
        return rs.fail(connID, ErrInvalidPhase)
    }
    if room.drawerID != p.ID {
        return rs.fail(connID, ErrNotDrawer)
    }
    word = strings.TrimSpace(word)
    if word == "" {
        return rs.fail(connID, ErrEmptyWord)
    }
    rs.applyWord(room, word)
    return nil
}

// AdvanceRound is the dual entry point of the turn cycle: with a word it
// behaves like ChooseWord, without one it moves on if the turn is over.
func (rs *RoundService) AdvanceRound(connID, chosenWord string) error {
    if strings.TrimSpace(chosenWord) != "" {
        return rs.ChooseWord(connID, chosenWord)
    }
    _, room, err := rs.lockMember(connID)
    if err != nil {
        return rs.fail(connID, err)
    }
    defer rs.release(room)
    if !room.active() {
        return rs.fail(connID, ErrInvalidPhase)
    }
    rs.advance(room, false)
    return nil
}

// EvaluateGuess treats text from a guesser as either a correct guess or chat.
func (rs *RoundService) EvaluateGuess(connID, message string) error {
    p, room, err := rs.lockMember(connID)
    if err != nil {
        return rs.fail(connID, err)
    }
    defer rs.release(room)

    if room.active() && room.drawerID == p.ID {
        return nil
    }
    text := strings.TrimSpace(message)
    if text == "" {
        return nil
    }
    if room.word == "" || text != room.word {
        rs.hub.Broadcast(room.ID, EventChat, ChatMessage{ID: p.ID, Name: p.Name, Message: message}, p.ID)
        return nil
    }

    // A matching message is never relayed as chat.
    if room.phase != PhaseDrawing || room.guessed[p.ID] {
        return nil
    }
    timeLeft := room.timeLeft(rs.now())
    room.guessed[p.ID] = true
    if timeLeft > 0 {
        room.scores[p.ID] += timeLeft * guesserMultiplier
        room.scores[room.drawerID] += timeLeft * drawerMultiplier
        rs.hub.BroadcastAll(room.ID, EventGuessed, GuessResult{
            Scores:          room.scoresCopy(),
            GuessedPlayerID: p.ID,
            TimeLeft:        timeLeft,
        })
    }
    log.Info().Str("room", room.ID).Str("player", p.ID).Int("timeLeft", timeLeft).Int("guessed", room.guessedCount()).Msg("correct guess")

    if room.allGuessed() {
        rs.revealWord(room)
    }
    return nil
}

// RevealWord shows the current word to the room and schedules the next turn.
func (rs *RoundService) RevealWord(roomID string) error {
    room, ok := rs.reg.Room(roomID)
    if !ok {
        return ErrRoomNotFound
    }
    room.mu.Lock()
    defer rs.release(room)
    if room.closed {
        return ErrRoomNotFound
    }
    if room.phase != PhaseDrawing {
        return ErrInvalidPhase
    }
    rs.revealWord(room)
    return nil
}

// ForwardDraw relays stroke commands from the drawer to the rest of the room.
func (rs *RoundService) ForwardDraw(connID string, commands [][]float64) error {
    p, room, err := rs.lockMember(connID)
    if err != nil {
        return err
    }
    defer rs.release(room)
    if !room.active() || room.drawerID != p.ID {
        return ErrNotDrawer
    }
    rs.hub.Broadcast(room.ID, EventDraw, DrawCommands{Commands: commands}, p.ID)
    return nil
}

// --- the helpers below require room.mu held ---

func (rs *RoundService) applyWord(room *Room, word string) {
    room.setWord(word, rs.now())
    log.Info().Str("room", room.ID).Str("drawer", room.drawerID).Int("round", room.round).Int("wordLength", wordLength(word)).Msg("word chosen")
    rs.hub.BroadcastAll(room.ID, EventDrawingStarted, DrawingStarted{
        Choosing:   false,
        RoundStart: true,
        WordLength: wordLength(word),
        TimeLeft:   room.settings.RoundTime,
    })
    rs.schedule(room, time.Duration(room.settings.RoundTime)*time.Second, PhaseDrawing, "drawing", rs.revealWord)
}

func (rs *RoundService) revealWord(room *Room) {
    room.phase = PhaseReveal
    rs.hub.BroadcastAll(room.ID, EventWordReveal, WordReveal{Word: room.word, RoundStart: false})
    log.Info().Str("room", room.ID).Int("round", room.round).Int("guessed", room.guessedCount()).Msg("word revealed")
    rs.schedule(room, rs.opts.RevealDelay, PhaseReveal, "reveal", func(r *Room) { rs.advance(r, true) })
}

// advance moves to the next turn once the current one is over: forced, out
// of time, or every non-drawer has guessed. Otherwise it does nothing.
func (rs *RoundService) advance(room *Room, forced bool) {
    if !forced && room.timeLeft(rs.now()) > 0 && !room.allGuessed() {
        return
    }
    rs.finishTurn(room, room.successor(room.drawerID))
}

// finishTurn ends the game after the last turn of the last round, otherwise
// hands the turn to next.
func (rs *RoundService) finishTurn(room *Room, next string) {
    if room.finalTurn() {
        rs.endGame(room)
        return
    }
    room.rotate(next, rs.now())
    log.Info().Str("room", room.ID).Str("drawer", room.drawerID).Int("round", room.round).Int("chance", room.chance).Msg("turn advanced")
    rs.announceTurn(room, TurnSync{RoundChange: true})
}

// announceTurn broadcasts the turn, clears canvases and privately offers
// words to the drawer.
func (rs *RoundService) announceTurn(room *Room, sync TurnSync) {
    sync.Scores = room.scoresCopy()
    sync.TurnPlayerID = room.drawerID
    sync.Round = room.round
    sync.Choosing = true
    sync.TimeLeft = room.settings.RoundTime
    rs.hub.BroadcastAll(room.ID, EventRoundSync, sync)
    rs.hub.BroadcastAll(room.ID, EventDraw, DrawCommands{Commands: ClearCanvas})
    rs.offerTo(room)
}

func (rs *RoundService) offerTo(room *Room) {
    drawer, ok := rs.reg.Player(room.drawerID)
    if !ok || drawer.RoomID != room.ID {
        rs.stall(room)
        return
    }
    room.offered = rs.OfferWords()
    timeLeft := 0
    if rs.opts.ChooseTimeout > 0 {
        timeLeft = int(rs.opts.ChooseTimeout / time.Second)
    }
    rs.hub.Notify(drawer.ID, EventWordChoices, WordOffer{WordList: room.offered, TimeLeft: timeLeft})
    if rs.opts.ChooseTimeout > 0 {
        rs.schedule(room, rs.opts.ChooseTimeout, PhaseChoosing, "choose", rs.autoChoose)
    } else {
        rs.cancelTimer(room)
    }
}

func (rs *RoundService) autoChoose(room *Room) {
    if len(room.offered) == 0 {
        log.Warn().Str("room", room.ID).Msg("choose timeout with no offered words")
        return
    }
    log.Info().Str("room", room.ID).Str("drawer", room.drawerID).Msg("choose timeout, picking first word")
    rs.applyWord(room, room.offered[0])
}

func (rs *RoundService) endGame(room *Room) {
    rs.cancelTimer(room)
    room.phase = PhaseEnd
    room.word = ""
    scores := room.scoresCopy()
    log.Info().Str("room", room.ID).Str("match", room.matchID).Int("round", room.round).Msg("game ended")
    rs.hub.BroadcastAll(room.ID, EventGameEnd, GameEnd{GameState: StateEnd, Scores: scores})
    res := rs.result(room)
    room.finished = &res
}

// stall parks a room whose next drawer cannot be resolved.
func (rs *RoundService) stall(room *Room) {
    rs.cancelTimer(room)
    room.phase = PhaseStalled
    log.Error().Str("room", room.ID).Str("drawer", room.drawerID).Msg("next drawer does not exist")
    rs.hub.BroadcastAll(room.ID, EventError, ErrorNotice{Code: Code(ErrDrawerUnresolved), Message: "Server Error"})
}
