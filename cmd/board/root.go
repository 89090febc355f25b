package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/client"
	"github.com/fastygo/taskboard/internal/clientstate"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/localstore"
	"github.com/fastygo/taskboard/internal/notify"
	"github.com/fastygo/taskboard/pkg/logger"
	"github.com/fastygo/taskboard/usecase/board"
)

// app is the state shared by every subcommand for one invocation.
type app struct {
	apiURL    string
	statePath string
	timeout   time.Duration
	debug     bool

	clientOpts []client.Option

	out    io.Writer
	logger *zap.Logger
	store  *localstore.Store
	creds  *clientstate.Credentials
	prefs  *clientstate.Preferences
	api    *client.Client
}

// execute runs one CLI invocation. The state file is closed even when the
// command fails.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...client.Option) error {
	a := &app{clientOpts: opts}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	defer a.close()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "board",
		Short:         "Terminal client for the taskboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.apiURL, "api", "", "task API base URL (default from TASKBOARD_API_URL)")
	cmd.PersistentFlags().StringVar(&a.statePath, "state", "", "local state file (default from TASKBOARD_STATE_PATH)")
	cmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "per-request timeout")
	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		loginCmd(a),
		registerCmd(a),
		logoutCmd(a),
		profileCmd(a),
		passwordCmd(a),
		showCmd(a),
		addCmd(a),
		moveCmd(a),
		editCmd(a),
		deleteCmd(a),
		subtaskCmd(a),
		trackCmd(a),
		calendarCmd(a),
		statsCmd(a),
		prefsCmd(a),
	)
	return cmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.apiURL == "" {
		a.apiURL = cfg.Client.APIURL
	}
	if a.statePath == "" {
		a.statePath = cfg.Client.StatePath
	}
	if a.timeout <= 0 {
		a.timeout = cfg.Client.RequestTimeout
	}

	level := "warn"
	if a.debug {
		level = "debug"
	}
	a.out = cmd.OutOrStdout()
	a.logger, err = logger.New(logger.Config{Level: level, Encoding: "console", Output: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}

	a.store, err = localstore.Open(a.statePath)
	if err != nil {
		return err
	}
	a.creds, err = clientstate.LoadCredentials(a.store)
	if err != nil {
		return err
	}
	a.prefs, err = clientstate.LoadPreferences(a.store)
	if err != nil {
		return err
	}

	opts := []client.Option{
		client.WithTimeout(a.timeout),
		client.WithLogger(a.logger),
		client.WithLogoutHook(func() {
			a.notifier().Notify(board.Notification{
				Title:       "Signed out",
				Description: "Your session has expired. Run `board login` again.",
				Variant:     board.VariantDestructive,
			})
		}),
	}
	a.api = client.New(a.apiURL, a.creds, append(opts, a.clientOpts...)...)
	return nil
}

func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	_ = a.store.Close()
}

func (a *app) notifier() board.Notifier {
	return notify.Fanout{notify.NewConsole(a.out), notify.NewLog(a.logger)}
}

// board builds a board wired to the API. Callers decide whether to Load it.
func (a *app) board() *board.Board {
	return board.New(a.api, board.WithNotifier(a.notifier()), board.WithLogger(a.logger))
}

func (a *app) loadBoard(ctx context.Context) (*board.Board, error) {
	b := a.board()
	if err := b.Load(ctx); err != nil {
		return nil, err
	}
	return b, nil
}
