package ws

import (
    "net/http"
    "slices"

    "github.com/gin-gonic/gin"
    socketio "github.com/googollee/go-socket.io"
    "github.com/googollee/go-socket.io/engineio"
    "github.com/googollee/go-socket.io/engineio/transport"
    "github.com/googollee/go-socket.io/engineio/transport/polling"
    "github.com/googollee/go-socket.io/engineio/transport/websocket"
    "github.com/rs/zerolog/log"

    "github.com/kiliankoe/sketchdash/internal/config"
    "github.com/kiliankoe/sketchdash/internal/game"
)

type ConnCtx struct {
    limits *limits
}

type Server struct {
    *hub
    io     *socketio.Server
    life   *game.LifecycleService
    rounds *game.RoundService
    config config.Config
}

func New(cfg config.Config) *Server {
    checkOrigin := originChecker(cfg.AllowedOrigins)
    io := socketio.NewServer(&engineio.Options{
        Transports: []transport.Transport{
            &polling.Transport{Client: &http.Client{}, CheckOrigin: checkOrigin},
            &websocket.Transport{CheckOrigin: checkOrigin},
        },
    })
    return &Server{hub: newHub(), io: io, config: cfg}
}

// SetServices wires the game services. They need the server as their Hub, so
// this happens after New and before Mount.
func (srv *Server) SetServices(life *game.LifecycleService, rounds *game.RoundService) {
    srv.life = life
    srv.rounds = rounds
}

type profilePayload struct {
    RoomID string `json:"roomId"`
    Name   string `json:"name"`
    Avatar string `json:"avatar"`
}

type wordPayload struct {
    Word string `json:"word"`
}

type chatPayload struct {
    Message string `json:"message"`
}

type drawPayload struct {
    Commands [][]float64 `json:"commands"`
}

// Mount attaches the Socket.IO server with its handlers to the given Gin engine.
func (srv *Server) Mount(r *gin.Engine) *socketio.Server {
    io := srv.io

    io.OnConnect("/", func(s socketio.Conn) error {
        s.SetContext(&ConnCtx{limits: newLimits(srv.config)})
        srv.add(s)
        log.Info().Str("sid", s.ID()).Msg("socket connected")
        return nil
    })

    io.OnEvent("/", "room:create", func(s socketio.Conn, p profilePayload) map[string]any {
        defer srv.guard(s, "room:create")
        return srv.createRoom(s.ID(), p)
    })

    io.OnEvent("/", "room:join", func(s socketio.Conn, p profilePayload) map[string]any {
        defer srv.guard(s, "room:join")
        return srv.joinRoom(s.ID(), p)
    })

    io.OnEvent("/", "room:settings", func(s socketio.Conn, p game.Settings) map[string]any {
        defer srv.guard(s, "room:settings")
        return ack(srv.life.UpdateSettings(s.ID(), p))
    })

    io.OnEvent("/", "game:start", func(s socketio.Conn) map[string]any {
        defer srv.guard(s, "game:start")
        return ack(srv.life.StartGame(s.ID()))
    })

    io.OnEvent("/", "game:restart", func(s socketio.Conn) map[string]any {
        defer srv.guard(s, "game:restart")
        return ack(srv.life.RestartGame(s.ID()))
    })

    io.OnEvent("/", "room:leave", func(s socketio.Conn) map[string]any {
        defer srv.guard(s, "room:leave")
        return ack(srv.life.LeaveRoom(s.ID()))
    })

    io.OnEvent("/", "room:close", func(s socketio.Conn) map[string]any {
        defer srv.guard(s, "room:close")
        return ack(srv.life.CloseRoom(s.ID()))
    })

    io.OnEvent("/", "round:choose", func(s socketio.Conn, p wordPayload) map[string]any {
        defer srv.guard(s, "round:choose")
        return ack(srv.rounds.ChooseWord(s.ID(), p.Word))
    })

    io.OnEvent("/", "round:sync", func(s socketio.Conn, p wordPayload) map[string]any {
        defer srv.guard(s, "round:sync")
        return ack(srv.rounds.AdvanceRound(s.ID(), p.Word))
    })

    io.OnEvent("/", "chat", func(s socketio.Conn, p chatPayload) {
        defer srv.guard(s, "chat")
        if !connLimits(s).allowChat() {
            log.Debug().Str("sid", s.ID()).Msg("chat rate limited")
            return
        }
        _ = srv.rounds.EvaluateGuess(s.ID(), p.Message)
    })

    io.OnEvent("/", "draw", func(s socketio.Conn, p drawPayload) {
        defer srv.guard(s, "draw")
        if !connLimits(s).allowDraw() {
            return
        }
        _ = srv.rounds.ForwardDraw(s.ID(), p.Commands)
    })

    io.OnError("/", func(s socketio.Conn, e error) {
        if s == nil {
            log.Error().Err(e).Msg("socket error")
            return
        }
        log.Error().Str("sid", s.ID()).Err(e).Msg("socket error")
    })
    io.OnDisconnect("/", func(s socketio.Conn, reason string) {
        defer srv.guard(s, "disconnect")
        srv.disconnect(s.ID())
        log.Info().Str("sid", s.ID()).Str("reason", reason).Msg("socket disconnected")
    })

    go func() {
        if err := io.Serve(); err != nil {
            log.Error().Err(err).Msg("socket.io serve failed")
        }
    }()

    r.GET("/socket.io/*any", gin.WrapH(io))
    r.POST("/socket.io/*any", gin.WrapH(io))

    return io
}

func (srv *Server) createRoom(connID string, p profilePayload) map[string]any {
    room, err := srv.life.CreateRoom(connID, game.Profile{Name: p.Name, Avatar: p.Avatar})
    if err != nil {
        return ack(err)
    }
    return map[string]any{"roomId": room.ID}
}

func (srv *Server) joinRoom(connID string, p profilePayload) map[string]any {
    room, err := srv.life.JoinRoom(connID, game.Profile{Name: p.Name, Avatar: p.Avatar}, p.RoomID)
    if err != nil {
        return ack(err)
    }
    return map[string]any{"roomId": room.ID}
}

func (srv *Server) disconnect(connID string) {
    if srv.life != nil {
        if err := srv.life.LeaveRoom(connID); err != nil {
            log.Warn().Str("sid", connID).Err(err).Msg("leave on disconnect failed")
        }
    }
    srv.remove(connID)
}

// guard keeps a panicking handler from taking the server down.
func (srv *Server) guard(s socketio.Conn, event string) {
    if r := recover(); r != nil {
        log.Error().Str("sid", s.ID()).Str("event", event).Interface("panic", r).Msg("handler panicked")
        srv.Notify(s.ID(), game.EventError, game.ErrorNotice{Code: "server_error", Message: "Server Error"})
    }
}

// ack is the acknowledgement for a handled event. The services already sent
// the requester a private error event.
func ack(err error) map[string]any {
    if err != nil {
        return map[string]any{"error": err.Error()}
    }
    return map[string]any{"ok": true}
}

func connLimits(s socketio.Conn) *limits {
    if ctx, ok := s.Context().(*ConnCtx); ok && ctx.limits != nil {
        return ctx.limits
    }
    return &limits{}
}

func originChecker(allowed []string) func(*http.Request) bool {
    return func(r *http.Request) bool {
        origin := r.Header.Get("Origin")
        return origin == "" || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
    }
}
