package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"instant-desktop/src/clipboard"
	"instant-desktop/src/config"
	"instant-desktop/src/connection"
	"instant-desktop/src/logutil"
	"instant-desktop/src/monitor"
	"instant-desktop/src/notification"
	"instant-desktop/src/overlay"
	"instant-desktop/src/picker"
	"instant-desktop/src/singleinstance"
	"instant-desktop/src/tui"
)

const appTitle = "Instant Desktop"

type mainOptions struct {
	configDir  string
	verbose    bool
	useTUI     bool
	fullscreen bool
	edit       bool
	basePath   string

	// list
	copyList bool
	jsonList bool
	dialog   bool

	// patch
	monitors string
	outPath  string
	launch   bool

	stdout io.Writer
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(os.Args)
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"instant-desktop"}
	}

	opts := &mainOptions{stdout: os.Stdout}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "instant-desktop",
		Short:         "Pick the monitors for a Remote Desktop session and launch it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPicker(cmd, *opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configDir, "config-dir", "", "Directory holding config.yaml and custom.rdp")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	pf.StringVar(&opts.basePath, "base", "", "Base .rdp profile (overrides base_config_path)")

	cmd.Flags().BoolVar(&opts.useTUI, "tui", false, "Pick monitors in the terminal instead of overlay windows")
	cmd.Flags().BoolVar(&opts.fullscreen, "fullscreen", true, "Cover full monitor bounds instead of the work area")
	cmd.Flags().BoolVar(&opts.edit, "edit", true, "Open the connection dialog instead of connecting directly")

	cmd.AddCommand(newListCmd(opts), newPatchCmd(opts))
	return cmd
}

func newListCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the monitors and the ids the picker assigns to them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, *opts)
		},
	}
	cmd.Flags().BoolVar(&opts.copyList, "copy", false, "Also copy the listing to the clipboard")
	cmd.Flags().BoolVar(&opts.jsonList, "json", false, "Output the monitors as JSON")
	cmd.Flags().BoolVar(&opts.dialog, "dialog", false, "Show the listing in a message box")
	return cmd
}

func newPatchCmd(opts *mainOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch [BASE]",
		Short: "Write a derived .rdp profile restricted to the given monitors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o := *opts
			if len(args) == 1 {
				o.basePath = args[0]
			}
			return runPatch(cmd, o)
		},
	}
	cmd.Flags().StringVarP(&opts.monitors, "monitors", "m", "", "Comma separated monitor ids, e.g. 0,2")
	cmd.Flags().StringVarP(&opts.outPath, "out", "o", "", "Derived profile path (default <config-dir>/custom.rdp)")
	cmd.Flags().BoolVar(&opts.launch, "launch", false, "Start the Remote Desktop client on the result")
	cmd.Flags().BoolVar(&opts.edit, "edit", true, "With --launch, open the connection dialog")
	_ = cmd.MarkFlagRequired("monitors")
	return cmd
}

// loadConfig applies only the flags the user actually set on top of the
// file and environment configuration.
func loadConfig(cmd *cobra.Command, opts mainOptions) (*config.Config, error) {
	lo := config.LoadOptions{
		ConfigDir:              opts.configDir,
		BaseConfigPathOverride: opts.basePath,
	}
	if f := cmd.Flags().Lookup("fullscreen"); f != nil && f.Changed {
		v := opts.fullscreen
		lo.FullscreenOverride = &v
	}
	if f := cmd.Flags().Lookup("edit"); f != nil && f.Changed {
		v := opts.edit
		lo.EditOverride = &v
	}
	cfg, err := config.LoadWithOptions(lo)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func setupLogging(opts mainOptions, cfg *config.Config) {
	if opts.verbose {
		logutil.SetupStderr()
		return
	}
	if path := logutil.Setup(cfg.EnableFileLogging, cfg.ConfigDir); path != "" {
		log.Printf("Logging to %s", path)
	}
}

func runPicker(cmd *cobra.Command, opts mainOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	setupLogging(opts, cfg)

	// Ensure DPI awareness before creating any windows or querying metrics
	monitor.EnableDPIAwareness()
	logMonitorConfiguration()

	keys, err := overlay.NewKeyMap(cfg.CommitKeys, cfg.CancelKeys)
	if err != nil {
		return fmt.Errorf("invalid key configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lock, err := singleinstance.Acquire(ctx)
	if err != nil {
		if errors.Is(err, singleinstance.ErrAlreadyRunning) {
			log.Printf("Another picker is already open")
		}
		return err
	}
	defer lock.Release()
	log.Printf("Picker lock held on port %d", lock.Port())

	useTUI := opts.useTUI || runtime.GOOS != "windows"
	presenter := overlay.NewPresenter()
	if useTUI {
		if !isTerminal(os.Stdin.Fd()) {
			return errors.New("the terminal picker needs an interactive terminal")
		}
		presenter = tui.NewPresenter()
	}

	res, err := picker.Run(ctx, picker.Options{
		Platform:    monitor.NewPlatform(),
		Presenter:   presenter,
		Launcher:    connection.ClientLauncher{},
		Overlay:     overlay.Options{Fullscreen: cfg.Fullscreen, Keys: keys},
		BasePath:    cfg.BaseConfigPath,
		DerivedPath: cfg.DerivedConfigPath,
		Edit:        cfg.EditConnection,
		FocusLast:   cfg.PrimaryWindow == config.PrimaryWindowLast,
	})
	switch {
	case errors.Is(err, picker.ErrCancelled):
		return nil
	case err != nil:
		log.Printf("Picker failed: %v", err)
		if !useTUI {
			notification.ShowBlockingError(appTitle, failureMessage(err, cfg))
		}
		return err
	}

	log.Printf("Launched session on monitors [%s]", connection.FormatMonitorList(res.Selected))
	return nil
}

func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// failureMessage turns picker errors into text for the error dialog.
func failureMessage(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, monitor.ErrPlatformEnumeration), errors.Is(err, picker.ErrNoMonitors):
		return fmt.Sprintf("Could not enumerate displays.\n\n%v", err)
	case errors.Is(err, connection.ErrConfigRead):
		return fmt.Sprintf("Could not read the base connection file:\n%s\n\nSave a connection from Remote Desktop there, or set base_config_path in\n%s.", cfg.BaseConfigPath, cfg.PreferencesPath)
	case errors.Is(err, connection.ErrConfigWrite):
		return fmt.Sprintf("Could not write the connection file:\n%s\n\n%v", cfg.DerivedConfigPath, err)
	default:
		return err.Error()
	}
}

type monitorJSON struct {
	ID     uint32 `json:"id"`
	Device string `json:"device"`
	X      int32  `json:"x"`
	Y      int32  `json:"y"`
	Width  int32  `json:"width"`
	Height int32  `json:"height"`
	WorkX  int32  `json:"work_x"`
	WorkY  int32  `json:"work_y"`
	WorkW  int32  `json:"work_width"`
	WorkH  int32  `json:"work_height"`
}

func runList(cmd *cobra.Command, opts mainOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	setupLogging(opts, cfg)
	monitor.EnableDPIAwareness()

	set, err := monitor.Resolve(monitor.NewPlatform())
	if err != nil {
		return err
	}
	return writeListing(opts, set)
}

func writeListing(opts mainOptions, set *monitor.MonitorSet) error {
	var lines []string
	for _, m := range set.Monitors() {
		lines = append(lines, m.Info())
	}
	text := strings.Join(lines, "\n")

	if opts.jsonList {
		out := make([]monitorJSON, 0, set.Len())
		for _, m := range set.Monitors() {
			out = append(out, monitorJSON{
				ID: m.ID, Device: m.Device,
				X: m.Bounds.Left, Y: m.Bounds.Top, Width: m.Bounds.Width(), Height: m.Bounds.Height(),
				WorkX: m.Work.Left, WorkY: m.Work.Top, WorkW: m.Work.Width(), WorkH: m.Work.Height(),
			})
		}
		enc := json.NewEncoder(opts.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(opts.stdout, text)
	}

	if opts.copyList {
		if err := clipboard.Write(text); err != nil {
			return err
		}
	}
	if opts.dialog {
		notification.ShowInfo(appTitle+" - monitors", text)
	}
	return nil
}

func runPatch(cmd *cobra.Command, opts mainOptions) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	setupLogging(opts, cfg)

	ids, err := connection.ParseMonitorList(opts.monitors)
	if err != nil {
		return err
	}
	out := opts.outPath
	if out == "" {
		out = cfg.DerivedConfigPath
	}

	req := connection.Request{
		BasePath:    cfg.BaseConfigPath,
		DerivedPath: out,
		Selected:    ids,
		Edit:        cfg.EditConnection,
	}
	if opts.launch {
		err = connection.Launch(req, connection.ClientLauncher{})
	} else {
		err = connection.WriteDerived(req.BasePath, req.DerivedPath, req.Selected)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(opts.stdout, out)
	return nil
}
