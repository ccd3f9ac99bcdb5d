// Command relay starts the Parchis relay server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing the REST API,
//     the WebSocket endpoint, and an /mcp HTTP endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal
//     HTTP API if none is available
//
// Configuration comes from the environment (plus a .env file when present);
// flags override the listen address, debug logging, and ngrok tunneling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
	"golang.org/x/sync/errgroup"

	"github.com/parchis-live/relay/api"
	"github.com/parchis-live/relay/config"
	"github.com/parchis-live/relay/game/room"
	"github.com/parchis-live/relay/game/service"
	"github.com/parchis-live/relay/transport/mcp"
	"github.com/parchis-live/relay/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Parchis Relay Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
		}
	}

	cmd := &cli.Command{
		Name:    "relay",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "HTTP server host (overrides HOST)"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port (overrides PORT)"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging (overrides DEBUG)"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel (overrides NGROK_ENABLED)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server with REST API, WebSocket, and MCP endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runServe(ctx, loadConfig(cmd))
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run an MCP stdio server, starting an internal HTTP API if needed",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runStdioMCP(ctx, loadConfig(cmd))
				},
			},
		},
		// Bare invocation serves.
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return runServe(ctx, loadConfig(cmd))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("relay exited")
	}
}

// loadConfig reads the environment configuration and applies flag overrides.
// A config that fails to parse is fatal; there is nothing sensible to serve.
func loadConfig(cmd *cli.Command) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cmd.IsSet("host") {
		cfg.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		cfg.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("debug") {
		cfg.Debug = cmd.Bool("debug")
	}
	if cmd.IsSet("ngrok") {
		cfg.NgrokEnabled = cmd.Bool("ngrok")
	}

	setupLogging(cfg.Debug)
	return cfg
}

func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// buildRelay wires the store, service, registry and hub.
func buildRelay() (service.RelayService, *room.Store, *websocket.Hub) {
	store := room.NewStore()
	svc := service.NewRelayService(store)
	hub := websocket.NewHub(svc, websocket.NewRegistry())
	return svc, store, hub
}

// buildRouter combines the API server with the /mcp HTTP endpoint.
func buildRouter(apiServer *api.Server, mcpClient *mcp.Client) http.Handler {
	router := http.NewServeMux()
	router.Handle("/", apiServer)

	router.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		data, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(data)
	})

	return router
}

// runServe runs the relay's HTTP surface until a shutdown signal arrives.
func runServe(ctx context.Context, cfg *config.Config) error {
	log.Info().Str("version", Version).Str("addr", cfg.Addr()).Msg("starting relay server")

	svc, store, hub := buildRelay()
	apiServer := api.NewServer(svc, hub)
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", cfg.Addr()))
	router := buildRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		log.Info().Msgf("REST API: http://%s/api", cfg.Addr())
		log.Info().Msgf("WebSocket: ws://%s/ws", cfg.Addr())
		log.Info().Msgf("MCP endpoint: http://%s/mcp", cfg.Addr())

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		roomSweepRoutine(ctx, store, cfg.SweepInterval, cfg.RoomTTL)
		return nil
	})

	g.Go(func() error {
		statsRoutine(ctx, svc, hub, cfg.StatsInterval)
		return nil
	})

	if cfg.NgrokEnabled {
		g.Go(func() error {
			runNgrokTunnel(ctx, cfg, router)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

// roomSweepRoutine periodically removes empty rooms older than maxAge.
func roomSweepRoutine(ctx context.Context, store *room.Store, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := store.CleanupExpiredRooms(maxAge); removed > 0 {
				log.Info().Int("removed", removed).Msg("swept expired rooms")
			}
		}
	}
}

// statsRoutine periodically logs room and connection counts.
func statsRoutine(ctx context.Context, svc service.RelayService, hub *websocket.Hub, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			log.Info().
				Int("rooms", svc.RoomCount(ctx)).
				Int("players", hub.ConnectionCount()).
				Msg("server stats")
		}
	}
}

// runNgrokTunnel exposes the router through a public ngrok endpoint. Tunnel
// failures are logged, never fatal; the local server keeps serving.
func runNgrokTunnel(ctx context.Context, cfg *config.Config, handler http.Handler) {
	if cfg.NgrokAuthToken == "" {
		log.Warn().Msg("ngrok enabled but NGROK_AUTHTOKEN is not set")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info().Str("domain", cfg.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.NgrokAuthToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer tun.Close()

	log.Info().Str("url", tun.URL()).Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an external relay API at
// the configured address when one is running; otherwise it starts a minimal
// internal HTTP API on a random loopback port and targets that.
func runStdioMCP(ctx context.Context, cfg *config.Config) error {
	externalURL := fmt.Sprintf("http://%s", cfg.Addr())

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("using external relay for MCP")
	} else {
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("no loopback port available: %w", err)
		}

		svc, _, hub := buildRelay()
		go hub.Run(ctx)

		internalServer := &http.Server{Handler: api.NewServer(svc, hub)}
		go func() {
			if err := internalServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		// Give the listener a beat before the first proxied call.
		time.Sleep(100 * time.Millisecond)

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		log.Info().Str("url", baseURL).Msg("started internal relay for MCP")
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Msg("MCP stdio server ready")

	return mcpserver.ServeStdio(mcpClient.GetMCPServer())
}
