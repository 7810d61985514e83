// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"molt-cli/internal/catalog"
	"molt-cli/internal/config"
	"molt-cli/internal/history"
	"molt-cli/internal/hostmod"
	"molt-cli/internal/hostout"
	"molt-cli/internal/invoke"
	"molt-cli/internal/issue"
	"molt-cli/internal/loadctx"
	"molt-cli/internal/modimage"
	"molt-cli/internal/session"
	"molt-cli/internal/tui"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// runLast repeats the recorded invocation instead of prompting.
	runLast bool

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Load the command library and invoke a command",
		Long: `Load the command library into a fresh isolated context, pick one of
its commands, invoke it, and unload the library again.

Because every run starts from the module file on disk, rebuilding the
library between runs is enough to pick up new or changed commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(runLast)
		},
	}
)

func init() {
	runCmd.Flags().BoolVar(&runLast, "last", false, "repeat the most recent invocation without prompting")
	rootCmd.AddCommand(runCmd)
}

// consoleChannel surfaces host notifications from commands and the session
// directly on the terminal, independent of the log level.
type consoleChannel struct{}

func (consoleChannel) Infof(format string, args ...any) {
	fmt.Println(SuccessStyle.Render(fmt.Sprintf(format, args...)))
}

func (consoleChannel) Errorf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render(fmt.Sprintf(format, args...)))
}

// outputChannelFor picks the host output sink: styled terminal output when
// stdout is a terminal, the structured logger otherwise (pipes, CI). The
// log-backed channel gets its own info-level sublogger so notifications
// are not filtered out with the quiet default log level.
func outputChannelFor(terminal bool, logger *log.Logger) hostout.Channel {
	if terminal {
		return consoleChannel{}
	}
	sub := logger.With()
	sub.SetLevel(log.InfoLevel)
	return hostout.NewLogChannel(sub)
}

// tablePicker adapts the tui table component to the session's Picker.
type tablePicker struct{}

func (tablePicker) Pick(cat catalog.Catalog) (catalog.Descriptor, bool, error) {
	headers := catalog.Headers()
	columns := make([]tui.TableColumn, len(headers))
	for i, h := range headers {
		columns[i] = tui.TableColumn{Title: h}
	}

	idx, _, err := tui.Table(tui.TableOptions{
		Title:   "Select a command",
		Columns: columns,
		Rows:    cat.Rows(),
	})
	if err != nil {
		return catalog.Descriptor{}, false, fmt.Errorf("command selection failed: %w", err)
	}
	if idx < 0 || idx >= len(cat) {
		return catalog.Descriptor{}, false, nil
	}
	return cat[idx], true, nil
}

// newSession wires the production session collaborators.
func newSession() (*session.Session, *history.Store, error) {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger()
	out := outputChannelFor(isatty.IsTerminal(os.Stdout.Fd()), logger)
	store := history.NewStore(cfgDir)

	sess := session.New(
		session.NewModuleLoader(hostmod.Builtin(out)),
		tablePicker{},
		session.NewCoordinator(logger),
		store,
		out,
		logger,
	)
	return sess, store, nil
}

// runSession executes one interactive or replayed session.
func runSession(last bool) error {
	sess, store, err := newSession()
	if err != nil {
		return err
	}

	if last {
		rec, err := store.Last()
		if err != nil {
			if errors.Is(err, history.ErrNoHistory) {
				return &ExitError{Code: 1, Err: issue.NewErrorContext().
					WithOperation("repeat last invocation").
					WithSuggestion("Run 'molt run' at least once first").
					Wrap(err).
					BuildError()}
			}
			return err
		}
		return describeSessionError(rec.ModulePath, sess.RunLast(rec))
	}

	path, err := config.ResolveLibraryPath(loadedCfg, libraryFile)
	if err != nil {
		return err
	}
	return describeSessionError(path, sess.Run(path))
}

// describeSessionError translates the session's error taxonomy into
// actionable CLI errors with a non-zero exit code.
func describeSessionError(path string, err error) error {
	if err == nil {
		return nil
	}

	var (
		malformed *modimage.MalformedError
		target    *invoke.TargetError
		dispatch  *invoke.DispatchError
		ctor      *invoke.ConstructionError
	)

	switch {
	case errors.Is(err, modimage.ErrModuleNotFound):
		err = issue.NewErrorContext().
			WithOperation("load command library").
			WithResource(path).
			WithSuggestion("Build your command library to that path").
			WithSuggestion("Set library_path in config.toml, or pass --library").
			WithSuggestion(fmt.Sprintf("The %s environment variable also overrides the path", config.LibraryEnvVar)).
			Wrap(err).
			BuildError()
	case errors.As(err, &malformed):
		err = issue.NewErrorContext().
			WithOperation("load command library").
			WithResource(malformed.Path).
			WithSuggestion("Rebuild the module; the file is not a valid WebAssembly module").
			WithSuggestion("Check that the build completed and was not truncated").
			Wrap(err).
			BuildError()
	case errors.As(err, &target):
		err = issue.NewErrorContext().
			WithOperation(fmt.Sprintf("invoke %s.%s", target.TypeName, target.MemberName)).
			WithResource(path).
			WithSuggestion("The command itself failed; check its own output above").
			Wrap(err).
			BuildError()
	case errors.As(err, &dispatch), errors.As(err, &ctor):
		err = issue.NewErrorContext().
			WithOperation("dispatch command").
			WithResource(path).
			WithSuggestion("Rebuild the library; its metadata no longer matches its exports").
			Wrap(err).
			BuildError()
	case errors.Is(err, loadctx.ErrContextUnloaded):
		// Internal lifecycle bug surfaced to the operator as-is.
	}

	return &ExitError{Code: 1, Err: err}
}
