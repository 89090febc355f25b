package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
	"github.com/fastygo/taskboard/usecase/board"
	"github.com/fastygo/taskboard/usecase/tracker"
)

func trackCmd(a *app) *cobra.Command {
	var limit time.Duration

	cmd := &cobra.Command{
		Use:   "track <task-id>",
		Short: "Run the time tracker for a task until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.TaskID(args[0])
			b, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			task, ok := b.Find(id)
			if !ok {
				return domain.ErrTaskNotFound
			}

			t := tracker.New(b,
				tracker.WithLogger(a.logger),
				tracker.WithTickHook(func(_ domain.TaskID, spent float64) {
					fmt.Fprintf(a.out, "\r%s  %s   ", task.Title, tracker.FormatDuration(spent))
				}),
			)

			manager := lifecycle.New(5*time.Second, a.logger)
			ctx, stop := manager.Listen(cmd.Context())
			defer stop()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}
			manager.Register("tracker", func(context.Context) error {
				t.Close()
				return nil
			})

			// A task already running on the server is resumed, not toggled off.
			if task.TimeTracking != nil && task.TimeTracking.IsRunning {
				t.Start(id, task.TimeTracking.TimeSpent)
			} else {
				t.Toggle(task)
			}
			if err := a.persistTracking(cmd.Context(), b, id); err != nil {
				t.Close()
				return err
			}

			<-ctx.Done()
			if err := manager.Shutdown(context.Background()); err != nil {
				return err
			}
			fmt.Fprintln(a.out)

			final, _ := b.Find(id)
			if err := a.persistTracking(context.Background(), b, id); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Tracked %s on %q\n", tracker.FormatDuration(final.TimeTracking.TimeSpent), final.Title)
			return nil
		},
	}
	cmd.Flags().DurationVar(&limit, "for", 0, "stop automatically after this long")
	return cmd
}

// persistTracking sends the board's current tracking record to the API.
func (a *app) persistTracking(ctx context.Context, b *board.Board, id domain.TaskID) error {
	task, ok := b.Find(id)
	if !ok || task.TimeTracking == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	_, err := a.api.UpdateTask(ctx, id, map[string]interface{}{"timeTracking": task.TimeTracking})
	return err
}
