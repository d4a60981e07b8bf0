package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags.
	cfgPath string
	verbose bool

	// Transport flags; they override the config file when set.
	flagPort    string
	flagBaud    int
	flagOffline bool

	cfg    Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "noruart",
	Short: "Edit console NOR dumps and read error codes over the debug UART",
	Long: `noruart edits firmware dump images from the console's NOR flash
(serial number, edition flags, MAC addresses) and talks to the debug
UART to retrieve and decode hardware error codes.

Examples:
  noruart nor info dump.bin
  noruart nor set serial dump.bin AB12345678901234
  noruart errors read --port /dev/ttyUSB0 --resolve
  noruart db refresh`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = initLogger(verbose)

		var err error
		cfg, err = loadConfig(cfgPath)
		if err != nil {
			return err
		}
		flags := cmd.Root().PersistentFlags()
		if flags.Changed("port") {
			cfg.Port = flagPort
		}
		if flags.Changed("baud") {
			cfg.Baud = flagBaud
		}
		if flags.Changed("offline") {
			cfg.Offline = flagOffline
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func initLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(output).Level(level).With().Timestamp().Str("app", "noruart").Logger()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&flagPort, "port", "", "serial port name or path")
	rootCmd.PersistentFlags().IntVar(&flagBaud, "baud", 0, "serial baud rate")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "never consult the remote code database")

	rootCmd.AddCommand(norCmd, errorsCmd, dbCmd)
}
