package main

import (
	"fmt"
	"strings"
	"time"

	"clearTask/internal/models/task"
	"clearTask/internal/service"
	"clearTask/internal/view"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

func addCmd(e *env) *cobra.Command {
	var (
		description string
		priority    string
		due         string
		pinned      bool
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireSession(); err != nil {
				return err
			}

			p, err := task.ParsePriority(priority)
			if err != nil {
				return err
			}
			draft := task.Draft{
				Title:    strings.Join(args, " "),
				Priority: p,
				Pinned:   pinned,
			}
			if description != "" {
				draft.Description = task.StringPtr(description)
			}
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				draft.DueDate = &d
			}

			created, err := e.store.Create(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTask(created, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "desc", "d", "", "description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "due date (2006-01-02, 2006-01-02T15:04 or RFC3339)")
	cmd.Flags().BoolVar(&pinned, "pin", false, "pin the task")
	return cmd
}

func listCmd(e *env) *cobra.Command {
	var search, filter, sortBy, lang string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireSession(); err != nil {
				return err
			}

			f, err := view.ParseFilter(filter)
			if err != nil {
				return err
			}
			s, err := view.ParseSort(sortBy)
			if err != nil {
				return err
			}
			tag := language.Und
			if lang != "" {
				if tag, err = language.Parse(lang); err != nil {
					return fmt.Errorf("неизвестный язык %q: %w", lang, err)
				}
			}

			tasks := view.Project(e.store.Tasks(), view.Query{
				Search: search,
				Filter: f,
				Sort:   s,
				Locale: tag,
			})
			fmt.Fprint(cmd.OutOrStdout(), renderList(tasks, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive text in title or description")
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "all, pending or completed")
	cmd.Flags().StringVar(&sortBy, "sort", "", "date, priority or title")
	cmd.Flags().StringVar(&lang, "lang", "", "BCP 47 tag used to sort titles")
	return cmd
}

// toggleCmd builds the commands that take a single task id.
func toggleCmd(e *env, use, short string, op func(e *env, cmd *cobra.Command, id string) (task.Task, bool)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireSession(); err != nil {
				return err
			}
			id, err := e.resolveID(args[0])
			if err != nil {
				return err
			}
			t, ok := op(e, cmd, id)
			if !ok {
				return service.NewNotFound("task", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTask(t, time.Now()))
			return nil
		},
	}
}

func doneCmd(e *env) *cobra.Command {
	return toggleCmd(e, "done", "Toggle completion", func(e *env, cmd *cobra.Command, id string) (task.Task, bool) {
		return e.store.ToggleComplete(cmd.Context(), id)
	})
}

func pinCmd(e *env) *cobra.Command {
	return toggleCmd(e, "pin", "Toggle pin", func(e *env, cmd *cobra.Command, id string) (task.Task, bool) {
		return e.store.TogglePin(cmd.Context(), id)
	})
}

func dupCmd(e *env) *cobra.Command {
	return toggleCmd(e, "dup", "Duplicate a task", func(e *env, cmd *cobra.Command, id string) (task.Task, bool) {
		return e.store.Duplicate(cmd.Context(), id)
	})
}

func editCmd(e *env) *cobra.Command {
	var title, description, priority, due string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit task fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireSession(); err != nil {
				return err
			}
			id, err := e.resolveID(args[0])
			if err != nil {
				return err
			}

			var opts []task.TaskOption
			flags := cmd.Flags()
			if flags.Changed("title") {
				opts = append(opts, task.WithTitle(title))
			}
			if flags.Changed("desc") {
				opts = append(opts, task.WithDescription(description))
			}
			if flags.Changed("priority") {
				p, err := task.ParsePriority(priority)
				if err != nil {
					return err
				}
				opts = append(opts, task.WithPriority(p))
			}
			if flags.Changed("due") {
				var d time.Time
				if due != "" {
					if d, err = parseDue(due); err != nil {
						return err
					}
				}
				opts = append(opts, task.WithDueDate(d))
			}
			if len(opts) == 0 {
				return fmt.Errorf("не указано ни одного поля для изменения")
			}

			updated, ok, err := e.store.Update(cmd.Context(), id, opts...)
			if err != nil {
				return err
			}
			if !ok {
				return service.NewNotFound("task", id)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTask(updated, time.Now()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "desc", "d", "", "new description, empty clears it")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	cmd.Flags().StringVar(&due, "due", "", "due date, empty clears it")
	return cmd
}

func rmCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireSession(); err != nil {
				return err
			}
			id, err := e.resolveID(args[0])
			if err != nil {
				return err
			}
			if !e.store.Delete(cmd.Context(), id) {
				return service.NewNotFound("task", id)
			}
			return nil
		},
	}
}

func statsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.requireSession(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderStats(e.store.Stats()))
			return nil
		},
	}
}

func loginCmd(e *env) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Start a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := e.session.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", labelStyle.Render(u.Name), mutedStyle.Render(u.Email))
			return nil
		},
	}

	cmd.Flags().StringVarP(&password, "password", "P", "", "account password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func logoutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session, tasks are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.session.Logout(cmd.Context())
		},
	}
}

func wipeCmd(e *env) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete the account and every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("удаление необратимо, подтвердите флагом --yes")
			}
			if err := e.requireSession(); err != nil {
				return err
			}
			return e.session.Delete(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm")
	return cmd
}

// resolveID accepts a full id or an unambiguous prefix of one.
func (e *env) resolveID(arg string) (string, error) {
	if _, ok := e.store.Get(arg); ok {
		return arg, nil
	}

	var match string
	for _, t := range e.store.Tasks() {
		if !strings.HasPrefix(t.ID, arg) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("префикс %q подходит к нескольким задачам", arg)
		}
		match = t.ID
	}
	if match == "" {
		return "", service.NewNotFound("task", arg)
	}
	return match, nil
}

func parseDue(s string) (time.Time, error) {
	d, err := task.ParseDueDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("ожидается дата %s, %sT15:04 или RFC3339: %q", dateLayout, dateLayout, s)
	}
	return d, nil
}
