package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/api/transport"
	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/notify"
	"github.com/fastygo/taskboard/usecase/board"
)

func showCmd(a *app) *cobra.Command {
	var filter board.Filter

	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"ls"},
		Short:   "Show the board, optionally filtered",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			renderColumns(a.out, b.Visible(filter), a.prefs.Get())
			if a.prefs.Get().ShowSidePanel {
				renderSidePanel(a.out, b)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "title substring, case-insensitive")
	cmd.Flags().StringSliceVarP(&filter.Tags, "tag", "t", nil, "show tasks with any of these tags")
	cmd.Flags().StringVar(&filter.Priority, "priority", board.FilterAll, "Low, Medium, High, Urgent or all")
	cmd.Flags().StringVar(&filter.Category, "category", board.FilterAll, "category name or all")
	return cmd
}

func addCmd(a *app) *cobra.Command {
	var (
		draft    domain.Task
		status   string
		priority string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			draft.Title = strings.Join(args, " ")
			if status != "" {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				draft.Status = s
			}
			draft.Priority = domain.Priority(priority)

			// Validation and defaults happen on the board first, so a
			// missing title never reaches the API. Errors print at once;
			// "Task Created" waits until the server has the task.
			notes := notify.NewDeferred(a.notifier())
			b := board.New(a.api, board.WithNotifier(notes), board.WithLogger(a.logger))
			local, err := b.AddTask(draft)
			if err != nil {
				return err
			}
			local.ID = ""
			created, err := a.api.CreateTask(cmd.Context(), local)
			if err != nil {
				notes.Discard()
				return err
			}
			notes.Flush()
			fmt.Fprintf(a.out, "%s  %s [%s]\n", created.ID, created.Title, created.Status)
			return nil
		},
	}
	cmd.Flags().StringVarP(&draft.Description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&status, "status", "", "initial column (default Draft)")
	cmd.Flags().StringVar(&priority, "priority", "", "Low, Medium, High or Urgent (default Medium)")
	cmd.Flags().StringVar(&draft.Category, "category", "", "category")
	cmd.Flags().StringSliceVarP(&draft.Tags, "tag", "t", nil, "tags")
	cmd.Flags().StringVar(&draft.DueDate, "due", "", "due date, YYYY-MM-DD")
	return cmd
}

func moveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "move <task-id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest, err := domain.ParseStatus(args[1])
			if err != nil {
				return err
			}
			b, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			id := domain.TaskID(args[0])
			if !b.MoveTask(id, dest) {
				a.logger.Debug("move ignored, task not on board")
				return nil
			}
			_, err = a.api.UpdateTask(cmd.Context(), id, map[string]interface{}{"status": dest})
			return err
		},
	}
}

func editCmd(a *app) *cobra.Command {
	var (
		title, description, priority, category, due, status string
		progress                                            int
		tags                                                []string
		starred                                             bool
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := map[string]interface{}{}
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch["title"] = title
			}
			if flags.Changed("description") {
				patch["description"] = description
			}
			if flags.Changed("priority") {
				patch["priority"] = priority
			}
			if flags.Changed("category") {
				patch["category"] = category
			}
			if flags.Changed("due") {
				patch["dueDate"] = due
			}
			if flags.Changed("progress") {
				patch["progress"] = progress
			}
			if flags.Changed("tag") {
				patch["tags"] = tags
			}
			if flags.Changed("starred") {
				patch["starred"] = starred
			}
			if flags.Changed("status") {
				s, err := domain.ParseStatus(status)
				if err != nil {
					return err
				}
				patch["status"] = s
			}
			if len(patch) == 0 {
				return errors.New("nothing to change")
			}

			b, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			updated, err := a.api.UpdateTask(cmd.Context(), domain.TaskID(args[0]), patch)
			if err != nil {
				return err
			}
			b.EditTask(*updated)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVar(&priority, "priority", "", "Low, Medium, High or Urgent")
	cmd.Flags().StringVar(&category, "category", "", "category")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&status, "status", "", "column")
	cmd.Flags().IntVar(&progress, "progress", 0, "progress 0-100")
	cmd.Flags().StringSliceVarP(&tags, "tag", "t", nil, "replace tags")
	cmd.Flags().BoolVar(&starred, "starred", false, "star the task")
	return cmd
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <task-id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			id := domain.TaskID(args[0])
			if err := a.api.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			if !b.RemoveTask(id) {
				a.logger.Debug("deleted task was not on the loaded board", zap.String("task_id", string(id)))
			}
			fmt.Fprintf(a.out, "Deleted %s, %d tasks left\n", id, len(b.All()))
			return nil
		},
	}
}

func subtaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtask",
		Short: "Manage subtasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <task-id> <text>",
		Short: "Add a subtask",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.api.AddSubtask(cmd.Context(), domain.TaskID(args[0]), strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			renderSubtasks(a.out, task)
			return nil
		},
	})

	var undo bool
	done := &cobra.Command{
		Use:   "done <task-id> <subtask-id>",
		Short: "Mark a subtask completed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			completed := !undo
			task, err := a.api.UpdateSubtask(cmd.Context(), domain.TaskID(args[0]), domain.TaskID(args[1]),
				transport.SubtaskUpdateRequest{Completed: &completed})
			if err != nil {
				return err
			}
			renderSubtasks(a.out, task)
			return nil
		},
	}
	done.Flags().BoolVar(&undo, "undo", false, "mark as not completed")
	cmd.AddCommand(done)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm <task-id> <subtask-id>",
		Short: "Delete a subtask",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := a.api.DeleteSubtask(cmd.Context(), domain.TaskID(args[0]), domain.TaskID(args[1]))
			if err != nil {
				return err
			}
			renderSubtasks(a.out, task)
			return nil
		},
	})
	return cmd
}
