package main

import (
    "flag"
    "fmt"
    "net/http"
    "os"
    "strings"
    "time"

    "github.com/gin-contrib/cors"
    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
    "github.com/rs/zerolog/log"

    "github.com/kiliankoe/sketchdash/internal/config"
    "github.com/kiliankoe/sketchdash/internal/game"
    "github.com/kiliankoe/sketchdash/internal/words"
    "github.com/kiliankoe/sketchdash/internal/ws"
)

const version = "v0.3.0-dev"

func main() {
    var (
        showHelp    = flag.Bool("help", false, "Show help message")
        showVersion = flag.Bool("version", false, "Show version information")
        portFlag    = flag.String("port", "", "Port to listen on (overrides PORT env var)")
        envFile     = flag.String("env", ".env", "Optional .env file to load")
    )
    flag.BoolVar(showHelp, "h", false, "Show help message (shorthand)")
    flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
    flag.Parse()

    if *showHelp {
        fmt.Printf(`Sketchdash - Real-time draw and guess game server

Usage: %s [options]

Options:
  -h, --help      Show this help message
  -v, --version   Show version information
  --port PORT     Port to listen on (default: 8080 or PORT env var)
  --env FILE      .env file to load (default: .env)

Environment Variables:
  PORT                Port to listen on (default: 8080)
  ALLOWED_ORIGINS     Comma separated CORS origins (default: http://localhost:3000)
  LOG_LEVEL           debug, info, warn or error (default: info)
  WORDS_FILE          Word list replacing the built-in one (optional)
  DEFAULT_ROUNDS      Rounds per game for new rooms (default: 4)
  DEFAULT_ROUND_TIME  Seconds per drawing turn for new rooms (default: 60)
  REVEAL_DELAY        Seconds the word stays revealed (default: 5)
  CHOOSE_TIMEOUT      Seconds before a word is picked for the drawer, 0 disables (default: 15)
  MAX_PLAYERS         Players per room (default: 12)
  CHAT_RATE           Chat messages per second per connection (default: 2)
  CHAT_BURST          Chat burst size (default: 5)
  DRAW_RATE           Draw events per second per connection (default: 60)
  DRAW_BURST          Draw burst size (default: 120)
  EXPORT_ENABLED      Append final standings to a file (default: false)
  EXPORT_FILE         Path for exported standings (default: ./results.txt)

Examples:
  %s                  Start server with default settings
  %s --port 3000      Start server on port 3000
`, os.Args[0], os.Args[0], os.Args[0])
        return
    }

    if *showVersion {
        fmt.Printf("Sketchdash %s\n", version)
        return
    }

    // zerolog setup (human-friendly console)
    zerolog.TimeFieldFormat = time.RFC3339
    cw := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
    log.Logger = log.Output(cw)

    if err := config.LoadDotEnv(*envFile); err != nil {
        log.Warn().Err(err).Str("file", *envFile).Msg("could not load env file")
    }
    cfg := config.FromEnv()
    if *portFlag != "" {
        cfg.Port = *portFlag
    }
    level, err := zerolog.ParseLevel(cfg.LogLevel)
    if err != nil {
        level = zerolog.InfoLevel
    }
    zerolog.SetGlobalLevel(level)

    corpus, err := words.Load(cfg.WordsFile)
    if err != nil {
        log.Fatal().Err(err).Str("file", cfg.WordsFile).Msg("failed to load words")
    }
    log.Info().Int("words", corpus.Len()).Msg("word corpus loaded")

    // Socket server + game services
    reg := game.NewRegistry()
    sock := ws.New(cfg)
    rounds := game.NewRoundService(reg, sock, gameOptions(cfg, corpus))
    sock.SetServices(game.NewLifecycleService(rounds), rounds)

    r := newRouter(cfg, reg)
    io := sock.Mount(r)
    defer io.Close()

    log.Info().Str("port", cfg.Port).Strs("origins", cfg.AllowedOrigins).Msg("listening")
    if err := r.Run(":" + cfg.Port); err != nil {
        log.Fatal().Err(err).Msg("server stopped")
    }
}

func gameOptions(cfg config.Config, corpus *words.Corpus) game.Options {
    opts := game.Options{
        Words:           corpus,
        DefaultSettings: game.Settings{TotalRounds: cfg.DefaultRounds, RoundTime: cfg.DefaultRoundTime},
        RevealDelay:     time.Duration(cfg.RevealDelay) * time.Second,
        ChooseTimeout:   time.Duration(cfg.ChooseTimeout) * time.Second,
        MaxPlayers:      cfg.MaxPlayers,
    }
    if err := opts.DefaultSettings.Validate(); err != nil {
        log.Warn().Err(err).Msg("default room settings out of range, using built-in defaults")
        opts.DefaultSettings = game.Settings{}
    }
    if cfg.ExportEnabled {
        opts.OnGameEnd = func(res game.Result) {
            if err := game.ExportResult(res, cfg.ExportFile); err != nil {
                log.Error().Err(err).Str("room", res.RoomID).Msg("failed to export game data")
                return
            }
            log.Info().Str("room", res.RoomID).Str("file", cfg.ExportFile).Msg("exported game data")
        }
    }
    return opts
}

func newRouter(cfg config.Config, reg *game.Registry) *gin.Engine {
    // Gin setup with custom logger (skip /socket.io noise)
    gin.SetMode(gin.ReleaseMode)
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context) {
        start := time.Now()
        c.Next()
        path := c.Request.URL.Path
        if strings.HasPrefix(path, "/socket.io") {
            return
        }
        log.Info().Str("method", c.Request.Method).Str("path", path).Int("status", c.Writer.Status()).Dur("dur", time.Since(start)).Msg("http")
    })
    r.Use(cors.New(cors.Config{
        AllowOrigins:     cfg.AllowedOrigins,
        AllowCredentials: true,
        AllowMethods:     []string{"GET", "POST", "OPTIONS"},
        AllowHeaders:     []string{"Content-Type", "Origin"},
    }))

    r.GET("/health", func(c *gin.Context) {
        players, rooms := reg.Counts()
        c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC(), "rooms": rooms, "players": players})
    })

    // Lets share links be checked before opening a socket
    r.GET("/api/rooms/:id", func(c *gin.Context) {
        room, ok := reg.Room(c.Param("id"))
        if !ok {
            c.JSON(http.StatusNotFound, gin.H{"error": game.Code(game.ErrRoomNotFound)})
            return
        }
        c.JSON(http.StatusOK, room.Summary())
    })

    return r
}
