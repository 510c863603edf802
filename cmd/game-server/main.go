package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"tricktable/internal/claim"
	"tricktable/internal/config"
	"tricktable/internal/lifecycle"
	"tricktable/internal/logging"
	"tricktable/internal/rules"
	"tricktable/internal/session"
	"tricktable/internal/store"
	"tricktable/internal/ws"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatal().Err(err).Msg("load server config failed")
	}

	st, err := store.New(cfg.PostgresDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("store init failed")
	}
	if err := st.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("db ping failed")
	}
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("ensure schema failed")
	}

	sessions := session.NewManager(st)
	locker := newLocker(cfg)

	// The trick-taking rule engine links in here; the session layer itself
	// never inspects cards or bets.
	var engine rules.Engine = rules.NopEngine{}

	coord := lifecycle.NewCoordinator(lifecycleConfig(cfg), sessions, st, locker, engine, nil)
	hub := ws.NewServer(coord)
	coord.SetBroadcaster(hub)
	go coord.RunJanitor(context.Background(), time.Minute, 2*time.Hour)

	r := newRouter(st, coord, hub)
	logRoutes(r)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Msg("http listening")
	log.Fatal().Err(server.ListenAndServe()).Msg("server stopped")
}

func lifecycleConfig(cfg config.ServerConfig) lifecycle.Config {
	return lifecycle.Config{
		DisconnectGrace: time.Duration(cfg.DisconnectGraceSec) * time.Second,
		TurnTimeout:     time.Duration(cfg.TurnTimeoutSec) * time.Second,
		AbandonedDelete: time.Duration(cfg.AbandonedDeleteMins) * time.Minute,
		SoloDelete:      time.Duration(cfg.SoloDeleteMins) * time.Minute,
		CountdownTick:   time.Second,
	}
}

// newLocker picks the seat-claim lock backend: redis when configured, the
// in-process lease locker otherwise.
func newLocker(cfg config.ServerConfig) claim.Locker {
	ttl := time.Duration(cfg.SeatClaimTTLSec) * time.Second
	if cfg.RedisAddr == "" {
		return claim.NewMemoryLocker(ttl)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	log.Info().Str("addr", cfg.RedisAddr).Msg("seat claims via redis")
	return claim.NewRedisLocker(client, ttl)
}

func newRouter(st *store.Store, coord *lifecycle.Coordinator, hub *ws.Server) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.With(apiLogMiddleware()).Get("/healthz", healthHandler(st))
	r.Get("/ws", hub.HandleWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(apiLogMiddleware())
		r.Post("/matches", createMatchHandler(coord))
		r.Get("/matches/{match_id}", getMatchHandler(coord))
		r.Post("/matches/{match_id}/claim", claimSeatHandler(coord))
		r.Post("/matches/{match_id}/takeover", takeoverHandler(coord))
		r.Post("/matches/{match_id}/bot-replace", botReplaceHandler(coord))
		r.Post("/matches/{match_id}/kick", kickHandler(coord))
	})
	return r
}

func apiLogMiddleware() func(http.Handler) http.Handler {
	return httplog.RequestLogger(
		slog.New(slog.NewJSONHandler(logging.Writer(), &slog.HandlerOptions{})),
		&httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.Schema{ResponseStatus: "status", ResponseDuration: "duration_ms"},
			LogExtraAttrs: func(req *http.Request, _ string, _ int) []slog.Attr {
				rc := chi.RouteContext(req.Context())
				route := req.URL.Path
				if rc != nil && rc.RoutePattern() != "" {
					route = rc.RoutePattern()
				}
				return []slog.Attr{
					slog.String("request_id", chimw.GetReqID(req.Context())),
					slog.String("method", req.Method),
					slog.String("route", route),
					slog.String("path", req.URL.Path),
				}
			},
		},
	)
}

func logRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
