package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/console-repair-tools/noruart/pkg/errdb"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the local error code knowledge base",
}

var dbRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Download the full remote database and persist it locally",
	RunE:  runDBRefresh,
}

var dbLookupCmd = &cobra.Command{
	Use:   "lookup <code>",
	Short: "Resolve a single error code",
	Args:  cobra.ExactArgs(1),
	RunE:  runDBLookup,
}

func runDBRefresh(cmd *cobra.Command, args []string) error {
	remote := errdb.NewClient(cfg.RemoteURL, errdb.WithClientLogger(logger))
	entries, err := remote.FetchAll(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	db.Merge(entries)
	if err := db.Persist(cfg.DatabasePath); err != nil {
		return err
	}
	logger.Info().Int("entries", db.Len()).Str("path", cfg.DatabasePath).Msg("error code database refreshed")
	return nil
}

func runDBLookup(cmd *cobra.Command, args []string) error {
	db, err := openDatabase()
	if err != nil {
		return err
	}
	res := newResolver(db).Resolve(cmd.Context(), args[0])
	fmt.Printf("%-12s %s\n", res.Code, res.Description)
	if !res.Known {
		logger.Warn().Str("code", res.Code).Msg("code not found locally or remotely")
	}
	return nil
}

func init() {
	dbCmd.AddCommand(dbRefreshCmd, dbLookupCmd)
}
