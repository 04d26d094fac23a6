// Package cli implements the pantry command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/logger"
	"github.com/mesh-intelligence/pantry/internal/paths"
	"github.com/mesh-intelligence/pantry/internal/render"
	"github.com/mesh-intelligence/pantry/internal/store"
	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	backend   string
	jsonMode  bool
	debug     bool
}

// app is the state one command invocation shares between the root and its
// subcommands. PersistentPreRunE fills in the resolved settings.
type app struct {
	flags rootFlags

	configDir string
	dataDir   string
	backend   string
}

// NewRootCmd creates the top-level "pantry" command with global flags and
// all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "pantry",
		Short: "Keep small personal lists on local storage",
		Long: `Pantry keeps five personal collections on local storage: a movie diary,
a planner of shared ideas, a wishlist, a weather-mood calendar, and a
grocery list. Each collection is loaded whole, filtered and sorted in
memory, and saved whole after every change.`,
		Version:       pantry.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsSetup(cmd) {
				return nil
			}
			return a.setup()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.pantry)")
	pf.StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.pantry-db)")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: jsonl or sqlite (default from config.yaml)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVar(&a.flags.debug, "debug", false, "log debug output to stderr")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newCollectionsCmd(a),
		newAddCmd(a),
		newNewCmd(a),
		newEditCmd(a),
		newGetCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newToggleCmd(a),
		newListCmd(a),
		newDaysCmd(a),
		newCalendarCmd(a),
		newWatchCmd(a),
		newExportCmd(a),
		newImportCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns its exit code.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// Flag and argument errors come from cobra itself.
	return exitUserError
}

// needsSetup reports whether cmd reads configuration. Version, help and
// completion do not, so they leave no files behind.
func needsSetup(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	return !cmd.HasParent() || cmd.Parent().Name() != "completion"
}

// setup resolves directories, reads config.yaml, and starts the logger.
func (a *app) setup() error {
	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	cfg, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	if err := logger.Init(logger.Config{
		Debug:     a.flags.debug,
		Level:     cfg.GetString(cfgKeyLogLevel),
		ConfigDir: configDir,
	}); err != nil {
		return sysError(fmt.Errorf("init logger: %w", err))
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, cfg.GetString(cfgKeyDataDir), configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}

	backend := a.flags.backend
	if backend == "" {
		backend = cfg.GetString(cfgKeyBackend)
	}
	if err := (types.Config{Backend: backend, DataDir: dataDir}).Validate(); err != nil {
		return userError(fmt.Errorf("backend %q: %w", backend, err))
	}

	a.configDir, a.dataDir, a.backend = configDir, dataDir, backend
	logger.Debug("configuration resolved", "config_dir", configDir, "data_dir", dataDir, "backend", backend)
	return nil
}

// openBackend attaches the configured backend. The caller must Detach it.
func (a *app) openBackend() (types.Backend, error) {
	b, err := pantry.Open(types.Config{Backend: a.backend, DataDir: a.dataDir})
	if err != nil {
		return nil, fail(err)
	}
	return b, nil
}

// withCollection opens the backend, loads the named collection, and calls fn.
func (a *app) withCollection(name string, fn func(types.Backend, store.Collection) error) error {
	b, err := a.openBackend()
	if err != nil {
		return err
	}
	defer b.Detach()

	c, err := store.Load(b, name)
	if err != nil {
		return fail(err)
	}
	return fn(b, c)
}

func (a *app) printer(cmd *cobra.Command) *render.Printer {
	return render.NewPrinter(cmd.OutOrStdout(), a.flags.jsonMode)
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error { return &exitError{code: exitUserError, err: err} }
func sysError(err error) error  { return &exitError{code: exitSysError, err: err} }

// userErrors are the failures caused by what the user asked for rather than
// by the system.
var userErrors = []error{
	types.ErrInvalidData,
	types.ErrNotFound,
	types.ErrTableNotFound,
	types.ErrInvalidID,
	types.ErrDuplicateID,
	types.ErrInvalidField,
	types.ErrInvalidFilter,
	types.ErrNotToggleable,
	types.ErrNotSupported,
	types.ErrBackendEmpty,
	types.ErrBackendUnknown,
	huh.ErrUserAborted,
	context.Canceled,
}

// fail classifies err into a user or system error. Nil stays nil.
func fail(err error) error {
	if err == nil {
		return nil
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return err
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return userError(err)
		}
	}
	return sysError(err)
}
