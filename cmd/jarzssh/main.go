// Package main implements the SSH server that serves the POS TUI.
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"
	gossh "golang.org/x/crypto/ssh"

	"github.com/poparab/jarz-pos-terminal/internal/auth"
	"github.com/poparab/jarz-pos-terminal/internal/cache"
	"github.com/poparab/jarz-pos-terminal/internal/config"
	"github.com/poparab/jarz-pos-terminal/internal/customer"
	"github.com/poparab/jarz-pos-terminal/internal/erp"
	"github.com/poparab/jarz-pos-terminal/internal/money"
	"github.com/poparab/jarz-pos-terminal/internal/offline"
	"github.com/poparab/jarz-pos-terminal/internal/push"
	"github.com/poparab/jarz-pos-terminal/internal/session"
	"github.com/poparab/jarz-pos-terminal/internal/tui"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "jarzssh",
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}

	if err := ensureHostKey(logger, cfg.SSHHostKeyPath); err != nil {
		logger.Fatal("failed to ensure host key", "err", err)
	}

	var allowlist []gossh.PublicKey
	if cfg.SSHAuthMode == config.AuthModeAllowlist {
		allowlist, err = auth.LoadAllowlist(cfg.AllowlistPath)
		if err != nil {
			if errors.Is(err, auth.ErrAllowlistNotFound) {
				logger.Info("creating empty allowlist", "path", cfg.AllowlistPath)
				if err := auth.CreateEmptyAllowlist(cfg.AllowlistPath); err != nil {
					logger.Fatal("failed to create allowlist", "err", err)
				}
				logger.Info("add your SSH public key to the allowlist and restart")
				os.Exit(1)
			}
			logger.Fatal("failed to load allowlist", "err", err)
		}
		if len(allowlist) == 0 {
			logger.Warn("allowlist is empty, no connections will be accepted", "path", cfg.AllowlistPath)
		}
		logger.Info("loaded allowlist", "keys", len(allowlist))
	} else {
		logger.Warn("running in PUBLIC mode, anyone can connect")
	}

	tokens, err := session.Open(cfg.SessionTokenPath)
	if err != nil {
		logger.Fatal("failed to open session token store", "err", err)
	}

	clientOpts := []erp.ClientOption{}
	switch cfg.ERPAuthMethod {
	case config.ERPAuthAPIKey:
		clientOpts = append(clientOpts, erp.WithAPIKey(cfg.ERPAPIKey, cfg.ERPAPISecret))
	case config.ERPAuthSession:
		clientOpts = append(clientOpts,
			erp.WithSessionToken(tokens.Token),
			erp.WithForbiddenHook(func() {
				logger.Warn("backend rejected session token, clearing")
				if err := tokens.Clear(); err != nil {
					logger.Error("failed to clear session token", "err", err)
				}
			}),
		)
	}
	client := erp.NewClient(cfg.ERPBaseURL, clientOpts...)

	// Shared across sessions: the catalog cache and the durable queue.
	catalogCache := cache.New[string, tui.CatalogPayload](cfg.CacheTTL)
	queue := offline.Open(cfg.QueuePath)
	formatter := money.NewFormatter(cfg.Currency, cfg.Locale)

	opts := []ssh.Option{
		wish.WithAddress(cfg.SSHAddr),
		wish.WithHostKeyPath(cfg.SSHHostKeyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
				// Per-session: customer cache and push subscription.
				searcher := customer.NewSearcher(customer.NewCache(customer.DefaultQueryCacheSize, cfg.CacheTTL), client)

				listener := push.NewListener(cfg.ERPBaseURL, logger,
					push.TopicNewInvoice, push.TopicInvoicePaid)
				go listener.Run(s.Context())

				model := tui.NewModel(tui.Options{
					Client:       client,
					Searcher:     searcher,
					Queue:        queue,
					Money:        formatter,
					CatalogCache: catalogCache,
					CacheTTL:     cfg.CacheTTL,
					Debounce:     cfg.SearchDebounce,
					PushEvents:   listener.Events(),
				})
				return model, []tea.ProgramOption{tea.WithAltScreen()}
			}),
		),
	}

	if cfg.SSHAuthMode == config.AuthModeAllowlist {
		opts = append(opts, wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			return auth.IsKeyAllowed(key, allowlist)
		}))
	} else {
		opts = append(opts, wish.WithPublicKeyAuth(func(ctx ssh.Context, key ssh.PublicKey) bool {
			return true
		}))
	}

	opts = append(opts, wish.WithPasswordAuth(func(ctx ssh.Context, password string) bool {
		return false
	}))

	server, err := wish.NewServer(opts...)
	if err != nil {
		logger.Fatal("failed to create SSH server", "err", err)
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("starting SSH server",
		"addr", cfg.SSHAddr,
		"backend", cfg.ERPBaseURL,
		"auth", cfg.SSHAuthMode)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			logger.Fatal("server error", "err", err)
		}
	}()

	<-done
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("shutdown error", "err", err)
	}
}

// ensureHostKey generates an ED25519 host key if it doesn't exist.
func ensureHostKey(logger *log.Logger, path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	logger.Info("generating new ED25519 host key", "path", path)

	pubKey, privKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generating key: %w", err)
	}

	sshPrivKey, err := gossh.MarshalPrivateKey(privKey, "")
	if err != nil {
		return fmt.Errorf("marshaling private key: %w", err)
	}

	if err := os.WriteFile(path, pem.EncodeToMemory(sshPrivKey), 0600); err != nil {
		return fmt.Errorf("writing private key: %w", err)
	}

	sshPubKey, err := gossh.NewPublicKey(pubKey)
	if err != nil {
		return fmt.Errorf("creating public key: %w", err)
	}

	pubKeyBytes := gossh.MarshalAuthorizedKey(sshPubKey)
	if err := os.WriteFile(path+".pub", pubKeyBytes, 0644); err != nil {
		return fmt.Errorf("writing public key: %w", err)
	}

	return nil
}
