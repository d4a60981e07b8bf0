package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/console-repair-tools/noruart/pkg/errcode"
	"github.com/console-repair-tools/noruart/pkg/errdb"
	"github.com/console-repair-tools/noruart/pkg/uart"
)

var flagResolve bool

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Read or clear the console's stored error codes over UART",
}

var errorsReadCmd = &cobra.Command{
	Use:   "read",
	Short: "Read stored error codes",
	RunE:  runErrorsRead,
}

var errorsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear stored error codes",
	RunE:  runErrorsClear,
}

func openClient() (*uart.Client, *uart.Transport, error) {
	if cfg.Port == "" {
		return nil, nil, fmt.Errorf("no serial port configured (use --port or the config file)")
	}
	tr, err := uart.Dial(cfg.Port, cfg.Baud,
		uart.WithTimeout(cfg.CommandTimeout),
		uart.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug().Str("port", cfg.Port).Int("baud", cfg.Baud).Msg("serial port open")
	return uart.NewClient(tr), tr, nil
}

// openDatabase loads the local knowledge base; a missing file is the
// first-run state and yields an empty database rather than an error.
func openDatabase() (*errdb.DB, error) {
	db, err := errdb.Load(cfg.DatabasePath)
	if err == nil {
		return db, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info().Str("path", cfg.DatabasePath).Msg("no local error code database yet; run 'noruart db refresh' to download it")
		return errdb.New(), nil
	}
	return nil, err
}

func newResolver(db *errdb.DB) *errcode.Resolver {
	opts := []errcode.ResolverOption{errcode.WithResolverLogger(logger)}
	if !cfg.Offline {
		remote := errdb.NewClient(cfg.RemoteURL, errdb.WithClientLogger(logger))
		opts = append(opts, errcode.WithRemote(remote, cfg.DatabasePath))
	}
	return errcode.NewResolver(db, opts...)
}

func runErrorsRead(cmd *cobra.Command, args []string) error {
	client, tr, err := openClient()
	if err != nil {
		return err
	}
	defer tr.Close()

	codes, err := client.ReadErrorCodes()
	if err != nil {
		return err
	}
	if len(codes) == 0 {
		fmt.Println("No error codes stored.")
		return nil
	}

	if !flagResolve {
		for _, c := range codes {
			fmt.Println(c.Raw)
		}
		return nil
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	resolver := newResolver(db)
	for _, res := range resolver.ResolveAll(cmd.Context(), codes) {
		fmt.Printf("%-12s %s\n", res.Code, res.Description)
	}
	return nil
}

func runErrorsClear(cmd *cobra.Command, args []string) error {
	client, tr, err := openClient()
	if err != nil {
		return err
	}
	defer tr.Close()

	if err := client.ClearErrorCodes(); err != nil {
		return err
	}
	logger.Info().Msg("error codes cleared")
	return nil
}

func init() {
	errorsReadCmd.Flags().BoolVar(&flagResolve, "resolve", false, "resolve codes against the knowledge base")
	errorsCmd.AddCommand(errorsReadCmd, errorsClearCmd)
}
