// Package cli implements the tag-hints CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/rcliao/tag-hints/internal/config"
	"github.com/rcliao/tag-hints/internal/hints"
	"github.com/rcliao/tag-hints/internal/observability"
	"github.com/rcliao/tag-hints/internal/store"
	"github.com/spf13/cobra"
)

// Version is set via -ldflags at build time.
var Version = "dev"

const closeTimeout = 10 * time.Second

var (
	dbPath     string
	configPath string
	modeFlag   string
	formatFlag string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:     "tag-hints",
	Short:   "Recently used hashtag suggestions",
	Long:    "Remembers the hashtags you use, ranks them by recency and suggests them by prefix. SQLite-backed, one namespace per mode.",
	Version: Version,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $TAG_HINTS_DB, config db, or ~/.tag-hints/hints.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: $TAG_HINTS_CONFIG or ~/.config/tag-hints/config.toml)")
	RootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "", "Hint namespace (default: config mode)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

// session is everything a command needs, opened from config and flags.
type session struct {
	cfg    config.Config
	store  *store.SQLiteStore
	hints  *hints.Manager
	logger *slog.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DB = dbPath
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		return nil, err
	}
	timeout, err := cfg.LoadTimeoutDuration()
	if err != nil {
		return nil, err
	}

	s, err := store.NewSQLiteStore(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	mgr := hints.NewManager(cmd.Context(), s, hints.Options{
		SnapshotSize: cfg.SnapshotSize,
		LoadTimeout:  timeout,
		Observer:     observability.NewSlogObserver(logger),
	})

	return &session{cfg: cfg, store: s, hints: mgr, logger: logger}, nil
}

func (s *session) mode() string {
	if modeFlag != "" {
		return modeFlag
	}
	return s.cfg.Mode
}

// readyCache returns the cache for mode once its history has loaded, so
// that usages recorded by a command are not dropped.
func (s *session) readyCache(ctx context.Context, mode string) (*hints.Cache, error) {
	c, err := s.hints.Cache(mode)
	if err != nil {
		return nil, err
	}
	if err := c.WaitReady(ctx); err != nil {
		return nil, fmt.Errorf("load %s: %w", mode, err)
	}
	return c, nil
}

// storedModes lists the modes that have a snapshot in the store.
func (s *session) storedModes(ctx context.Context) ([]string, error) {
	keys, err := s.store.Keys(ctx, hints.KeyPrefix)
	if err != nil {
		return nil, err
	}
	modes := make([]string, 0, len(keys))
	for _, k := range keys {
		if mode, ok := hints.ModeFromKey(k); ok {
			modes = append(modes, mode)
		}
	}
	return modes, nil
}

// Close flushes pending snapshots, then closes the store.
func (s *session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	return errors.Join(s.hints.Close(ctx), s.store.Close())
}

func printJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
