package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase/board"
	"github.com/fastygo/taskboard/usecase/tracker"
)

func renderColumns(w io.Writer, columns map[domain.Status][]domain.Task, prefs domain.Preferences) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, status := range domain.Statuses {
		tasks := columns[status]
		heading := fmt.Sprintf("%s (%d)", status, len(tasks))
		if prefs.DarkMode {
			heading = "\x1b[1;97m" + heading + "\x1b[0m"
		}
		fmt.Fprintln(tw, heading)
		for _, task := range tasks {
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n",
				task.ID,
				starred(task)+task.Title,
				task.Priority,
				strings.Join(task.Tags, ","),
				trackedTime(task),
			)
		}
	}
}

func renderSidePanel(w io.Writer, b *board.Board) {
	s := b.Summary()
	fmt.Fprintf(w, "\nTotal %d, done %.0f%%, tracked %s, running %d\n",
		s.Total, s.CompletionRate*100, tracker.FormatDuration(s.TrackedMinutes), s.Running)
	if categories := b.Categories(); len(categories) > 0 {
		fmt.Fprintf(w, "Categories: %s\n", strings.Join(categories, ", "))
	}
	if tags := b.Tags(); len(tags) > 0 {
		fmt.Fprintf(w, "Tags: %s\n", strings.Join(tags, ", "))
	}
}

func renderSubtasks(w io.Writer, task *domain.Task) {
	fmt.Fprintf(w, "%s  %s\n", task.ID, task.Title)
	for _, sub := range task.Subtasks {
		mark := " "
		if sub.Completed {
			mark = "x"
		}
		fmt.Fprintf(w, "  [%s] %s  %s\n", mark, sub.ID, sub.Text)
	}
}

func starred(task domain.Task) string {
	if task.Starred {
		return "* "
	}
	return ""
}

func trackedTime(task domain.Task) string {
	if task.TimeTracking == nil || (task.TimeTracking.TimeSpent == 0 && !task.TimeTracking.IsRunning) {
		return ""
	}
	out := tracker.FormatDuration(task.TimeTracking.TimeSpent)
	if task.TimeTracking.IsRunning {
		out += " (running)"
	}
	return out
}

func calendarCmd(a *app) *cobra.Command {
	var day string

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List due dates, or the tasks due on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}

			if day == "" {
				for _, d := range b.DueDates() {
					fmt.Fprintf(a.out, "%s  %d\n", d.Format(domain.DateLayout), len(b.TasksDueOn(d)))
				}
				return nil
			}

			date, err := time.Parse(domain.DateLayout, day)
			if err != nil {
				return domain.WrapError(domain.ErrCodeInvalid, "invalid date", err)
			}
			for _, task := range b.TasksDueOn(date) {
				fmt.Fprintf(a.out, "%s  %s [%s]\n", task.ID, task.Title, task.Status)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "date", "", "day to list, YYYY-MM-DD")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show board analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := a.loadBoard(cmd.Context())
			if err != nil {
				return err
			}
			s := b.Summary()
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			for _, status := range domain.Statuses {
				fmt.Fprintf(tw, "%s\t%d\n", status, s.Counts[status])
			}
			fmt.Fprintf(tw, "Total\t%d\n", s.Total)
			fmt.Fprintf(tw, "Completion\t%.0f%%\n", s.CompletionRate*100)
			fmt.Fprintf(tw, "Tracked\t%s\n", tracker.FormatDuration(s.TrackedMinutes))
			fmt.Fprintf(tw, "Running\t%d\n", s.Running)
			return tw.Flush()
		},
	}
}
