package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"notedesk/internal/client/app"
	"notedesk/internal/client/domain/entities"
	"notedesk/internal/client/ports/presenter"
	pkgconfig "notedesk/pkg/config"
	"notedesk/pkg/logger"
)

const ErrorFailedClose = "failed to close session store"

type root struct {
	build   BuildFunc
	version string
	flags   GlobalFlags
}

// session - все, что нужно одной команде.
type session struct {
	deps  *Deps
	term  *Terminal
	front *app.Frontend
}

// reportedError уже показан пользователю.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// NewRootCommand собирает дерево команд notedesk.
func NewRootCommand(build BuildFunc, version string) *cobra.Command {
	r := &root{build: build, version: version}

	cmd := &cobra.Command{
		Use:   "notedesk",
		Short: "Terminal client for a remote note-storage service",
		Long: `notedesk keeps the server url and access password locally and talks
to the note-storage service over HTTP. Run "notedesk login <server-url>" first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&r.flags.Verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&r.flags.Ephemeral, "ephemeral", false, "Keep the session in memory only")
	cmd.PersistentFlags().StringVar(&r.flags.EnvFile, "env-file", pkgconfig.DefaultDotEnv, "Optional .env file with NOTEDESK_* settings")

	cmd.AddCommand(
		r.loginCmd(),
		r.statusCmd(),
		r.listCmd(),
		r.showCmd(),
		r.saveCmd(),
		r.deleteCmd(),
		r.passwdCmd(),
		r.logoutCmd(),
		r.versionCmd(),
	)
	return cmd
}

// Execute запускает команду и возвращает код выхода процесса.
func Execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var reported *reportedError
	if !errors.As(err, &reported) {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
	}
	return 1
}

func (r *root) loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <server-url>",
		Short: "Connect to a server and remember it",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, s *session, args []string) error {
			if password == "" {
				var err error
				if password, err = s.term.Prompt("password", true); err != nil {
					return s.fail(ctx, app.ActionConnect, err)
				}
			}
			return s.front.SubmitConfig(ctx, args[0], password)
		}),
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "Access password (prompted when omitted)")
	return cmd
}

func (r *root) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the remembered server without contacting it",
		Args:  cobra.NoArgs,
		RunE: r.run(func(_ context.Context, s *session, _ []string) error {
			if s.deps.Controller.State() != entities.StateAuthenticated {
				_, err := fmt.Fprintln(s.term.out, entities.StateUnconfigured)
				return err
			}
			_, err := fmt.Fprintf(s.term.out, "%s %s\n", entities.StateAuthenticated, s.deps.Controller.Session().Endpoint)
			return err
		}),
	}
}

func (r *root) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes, newest first",
		Args:    cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, s *session, _ []string) error {
			return s.front.Refresh(ctx)
		}),
	}
}

func (r *root) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, s *session, args []string) error {
			return s.front.OpenNote(ctx, entities.NoteID(args[0]))
		}),
	}
}

func (r *root) saveCmd() *cobra.Command {
	var title, content, file string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a note (always stored as a new note)",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, s *session, _ []string) error {
			if file != "" {
				body, err := readSource(file, s.term)
				if err != nil {
					return s.fail(ctx, app.ActionSave, err)
				}
				content = body
			}
			return s.front.Save(ctx, title, content)
		}),
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Note title")
	cmd.Flags().StringVarP(&content, "content", "c", "", "Note content")
	cmd.Flags().StringVarP(&file, "file", "f", "", `Read content from a file ("-" for stdin)`)
	cmd.MarkFlagsMutuallyExclusive("content", "file")
	return cmd
}

func (r *root) deleteCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Mark a note as deleted",
		Long: `The service has no delete operation. delete stores a new note titled
"[deleted]"; the original note stays on the server.`,
		Args: cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, s *session, args []string) error {
			if _, err := s.deps.Controller.ListNotes(ctx); err != nil {
				return s.fail(ctx, app.ActionDelete, err)
			}
			note, err := s.deps.Controller.OpenNote(ctx, entities.NoteID(args[0]))
			if err != nil {
				return s.fail(ctx, app.ActionDelete, err)
			}

			s.term.AssumeYes(yes)
			return s.front.RequestDelete(ctx, note.ID, note.Title)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (r *root) passwdCmd() *cobra.Command {
	var oldPassword, newPassword, confirm string

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the service access password",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, s *session, _ []string) error {
			prompts := []struct {
				value *string
				label string
			}{
				{&oldPassword, "old password"},
				{&newPassword, "new password"},
				{&confirm, "confirm new password"},
			}
			for _, p := range prompts {
				if *p.value != "" {
					continue
				}
				v, err := s.term.Prompt(p.label, true)
				if err != nil {
					return s.fail(ctx, app.ActionChangePassword, err)
				}
				*p.value = v
			}
			return s.front.ChangePassword(ctx, oldPassword, newPassword, confirm)
		}),
	}
	cmd.Flags().StringVar(&oldPassword, "old", "", "Current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "New password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "New password again")
	return cmd
}

func (r *root) logoutCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the server url and password",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, s *session, _ []string) error {
			s.term.AssumeYes(yes)
			return s.front.RequestLogout(ctx)
		}),
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (r *root) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "notedesk %s\n", r.version)
		},
	}
}

// run собирает зависимости, восстанавливает сессию и вызывает fn.
func (r *root) run(fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		deps, err := r.build(ctx, r.flags)
		if err != nil {
			return err
		}
		ctx = logger.NewContext(ctx, deps.Logger)
		defer func() {
			if closeErr := deps.Close(); closeErr != nil {
				deps.Logger.Warn(ctx, ErrorFailedClose, zap.Error(closeErr))
			}
		}()

		term := NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		s := &session{
			deps:  deps,
			term:  term,
			front: app.NewFrontend(deps.Controller, term),
		}

		if _, err := deps.Controller.Restore(ctx); err != nil {
			return s.fail(ctx, app.ActionLoad, err)
		}

		if err := fn(ctx, s, args); err != nil {
			return &reportedError{err: err}
		}
		return nil
	}
}

// fail показывает ошибку, не прошедшую через Frontend.
func (s *session) fail(ctx context.Context, action string, err error) error {
	_ = s.term.Notify(ctx, presenter.Notice{
		Level:   presenter.NoticeError,
		Message: app.UserMessage(action, err),
		Err:     err,
	})
	return &reportedError{err: err}
}

func readSource(path string, t *Terminal) (string, error) {
	if path == "-" {
		body, err := io.ReadAll(t.in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(body), nil
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(body), nil
}
