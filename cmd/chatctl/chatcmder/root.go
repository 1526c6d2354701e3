// Package chatcmder implements the chatctl commands. Each command maps to one
// chat client operation; history reads the local invocation journal.
package chatcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatbridge/pkg/bridge"
	"github.com/papercomputeco/chatbridge/pkg/bridge/httpbridge"
	"github.com/papercomputeco/chatbridge/pkg/chat"
	"github.com/papercomputeco/chatbridge/pkg/config"
	"github.com/papercomputeco/chatbridge/pkg/journal"
	"github.com/papercomputeco/chatbridge/pkg/logger"
)

const rootLongDesc string = `chatctl talks to a chat host over its HTTP bridge.

Every subcommand invokes exactly one host procedure and prints what the
host returned. When a journal path is configured, each invocation is also
recorded in a local SQLite journal (see "chatctl history").

Conversation ids are sent the way the host issued them: a numeric argument
such as 0 is sent as a number, anything else as a string. Quote an id in
JSON ('"42"') to send a numeric-looking string.

Configuration is read from $XDG_CONFIG_HOME/chatbridge/config.toml and
CHATBRIDGE_* environment variables; flags override both.`

const rootShortDesc string = "Chat host command-line client"

type rootCommander struct {
	configPath  string
	url         string
	journalPath string
	debug       bool
}

// session is the per-command wiring from configuration to a chat client.
type session struct {
	config config.Config
	logger *zap.Logger
	client *chat.Client
	storer journal.Storer
}

func (s *session) Close() {
	if s.storer != nil {
		if err := s.storer.Close(); err != nil {
			s.logger.Warn("could not close journal", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

func NewRootCmd() *cobra.Command {
	root := &rootCommander{}

	cmd := &cobra.Command{
		Use:           "chatctl",
		Short:         rootShortDesc,
		Long:          rootLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&root.configPath, "config", "c", "", "Path to config file")
	flags.StringVar(&root.url, "url", "", "Base URL of the chat host")
	flags.StringVar(&root.journalPath, "journal", "", "Path to SQLite invocation journal")
	flags.BoolVar(&root.debug, "debug", false, "Enable debug logging")

	cmd.AddCommand(
		newCompleteCmd(root),
		newStartCmd(root),
		newListCmd(root),
		newShowCmd(root),
		newTitleCmd(root),
		newPromptsCmd(root),
		newImageCmd(root),
		newHistoryCmd(root),
	)

	return cmd
}

// loadConfig resolves configuration with flag overrides applied.
func (r *rootCommander) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(r.configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Bridge.URL = r.url
	}
	if flags.Changed("journal") {
		cfg.Journal.Path = r.journalPath
	}
	if flags.Changed("debug") {
		cfg.Debug = r.debug
	}
	return cfg, nil
}

// open builds the client: HTTP bridge, optional journal, then logging.
func (r *rootCommander) open(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := r.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	s := &session{
		config: cfg,
		logger: logger.NewLogger(cfg.Debug),
	}

	httpBridge, err := httpbridge.New(httpbridge.Config{
		BaseURL:   cfg.Bridge.URL,
		Timeout:   cfg.Bridge.Timeout,
		UserAgent: cfg.Bridge.UserAgent,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("could not create bridge: %w", err)
	}

	var b bridge.Bridge = httpBridge
	if cfg.Journal.Path != "" {
		s.storer, err = journal.NewSQLiteStorer(cfg.Journal.Path)
		if err != nil {
			return nil, fmt.Errorf("could not open journal %s: %w", cfg.Journal.Path, err)
		}

		b, err = journal.NewRecorder(ctx, b, s.storer, s.logger)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("could not read journal %s: %w", cfg.Journal.Path, err)
		}
	}

	s.client = chat.New(bridge.WithLogger(b, s.logger))
	return s, nil
}

// withClient runs fn with a freshly opened session.
func (r *rootCommander) withClient(cmd *cobra.Command, fn func(ctx context.Context, client *chat.Client) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := r.open(ctx, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(ctx, s.client)
}
