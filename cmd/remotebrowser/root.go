package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/config"
	"github.com/GriffinCanCode/RemoteBrowser/internal/infrastructure/logging"
)

// app holds what every command needs after flags are parsed.
type app struct {
	cfg    *config.Config
	logger *logging.Logger
}

// flags are overlaid on the environment configuration. Only flags the user
// set take effect.
type flags struct {
	browser       string
	browserArgs   string
	xdotool       string
	grace         time.Duration
	releaseDelay  time.Duration
	closeKeys     string
	lircSocket    string
	lircConfig    string
	noLirc        bool
	mixer         string
	inhibitDPMS   bool
	suspendParent bool
	host          string
	port          string
	logLevel      string
	dev           bool
}

func newRootCommand(a *app) *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "remotebrowser",
		Short:         "Drive a web browser with a LIRC remote control",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			logCfg := logging.DefaultConfig()
			if cfg.Logging.Development {
				logCfg = logging.DevelopmentConfig()
			}
			if cfg.Logging.Level != "" {
				logCfg.Level = cfg.Logging.Level
			}
			logger, err := logging.New(logCfg)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	f.register(root)
	root.AddCommand(newDriveCommand(a), newServeCommand(a))
	return root
}

// register adds the flags to cmd and its subcommands.
func (f *flags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.browser, "browser", "", "Browser executable (BROWSER_PATH)")
	pf.StringVar(&f.browserArgs, "browser-args", "", "Extra browser arguments, shell quoted (BROWSER_ARGS)")
	pf.StringVar(&f.xdotool, "xdotool", "", "xdotool executable (XDOTOOL_PATH)")
	pf.DurationVar(&f.grace, "grace", 0, "Time the browser gets to exit before it is killed (BROWSER_GRACE_PERIOD)")
	pf.DurationVar(&f.releaseDelay, "release-delay", 0, "Multi-tap release delay (MULTITAP_RELEASE_DELAY)")
	pf.StringVar(&f.closeKeys, "exit-keys", "", "Keys typed by the exit button, empty for none (EXIT_CLOSE_KEYS)")
	pf.StringVar(&f.lircSocket, "lirc-socket", "", "lircd socket (LIRC_SOCKET)")
	pf.StringVar(&f.lircConfig, "lirc-config", "", "Keymap file, lircrc, YAML or TOML (LIRC_CONFIG)")
	pf.BoolVar(&f.noLirc, "no-lirc", false, "Do not read the remote control")
	pf.StringVar(&f.mixer, "mixer", "", "Volume backend: none, alsa, pulse or kodi (MIXER)")
	pf.BoolVar(&f.inhibitDPMS, "inhibit-dpms", false, "Keep the screen on while the browser runs (INHIBIT_DPMS)")
	pf.BoolVar(&f.suspendParent, "suspend-parent", false, "Stop the parent process while the browser runs (SUSPEND_PARENT)")
	pf.StringVar(&f.host, "host", "", "Linkcast listen host (LINKCAST_HOST)")
	pf.StringVar(&f.port, "port", "", "Linkcast listen port (LINKCAST_PORT)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn or error (LOG_LEVEL)")
	pf.BoolVar(&f.dev, "dev", false, "Colored console logs (LOG_DEV)")
}

// apply copies the flags the user set onto cfg.
func (f *flags) apply(cmd *cobra.Command, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("browser") {
		cfg.Browser.Path = f.browser
	}
	if changed("browser-args") {
		cfg.Browser.Args = f.browserArgs
	}
	if changed("xdotool") {
		cfg.Browser.XdotoolPath = f.xdotool
	}
	if changed("grace") {
		cfg.Browser.GracePeriod = f.grace
	}
	if changed("release-delay") {
		cfg.Browser.ReleaseDelay = f.releaseDelay
	}
	if changed("exit-keys") {
		cfg.Browser.CloseKeys = f.closeKeys
	}
	if changed("lirc-socket") {
		cfg.Lirc.Socket = f.lircSocket
	}
	if changed("lirc-config") {
		cfg.Lirc.Keymap = f.lircConfig
	}
	if changed("no-lirc") {
		cfg.Lirc.Enabled = !f.noLirc
	}
	if changed("mixer") {
		cfg.Mixer.Backend = f.mixer
	}
	if changed("inhibit-dpms") {
		cfg.Browser.InhibitDPMS = f.inhibitDPMS
	}
	if changed("suspend-parent") {
		cfg.Browser.SuspendParent = f.suspendParent
	}
	if changed("host") {
		cfg.Linkcast.Host = f.host
	}
	if changed("port") {
		cfg.Linkcast.Port = f.port
	}
	if changed("log-level") {
		cfg.Logging.Level = f.logLevel
	}
	if changed("dev") {
		cfg.Logging.Development = f.dev
	}
}

// Execute runs the CLI and returns the process exit status.
func Execute() int {
	a := &app{}
	root := newRootCommand(a)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
