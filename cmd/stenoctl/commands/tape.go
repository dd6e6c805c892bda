package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stenod/internal/config"
	"stenod/internal/tape"
)

func newTapeCmd(loadConfig func() (*config.Config, error)) *cobra.Command {
	var (
		dbPath    string
		limit     int
		sessionID string
		asJSON    bool
		sessions  bool
	)

	cmd := &cobra.Command{
		Use:   "tape",
		Short: "Show strokes recorded by stenod",
		Long: `Show strokes recorded on the stroke tape.

By default the most recent strokes of every session are listed, oldest
first. Use --session to list one whole session in order, or --sessions to
summarize every recorded session.

Examples:
  stenoctl tape --limit 20
  stenoctl tape --sessions
  stenoctl tape --session 0f8e4c2a-... --json | jq '.[].steno'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := loadConfig()
				if err != nil {
					return fail(cmd, "Failed to load configuration", err.Error())
				}
				dbPath = cfg.Tape.Path
			}

			if _, err := os.Stat(dbPath); os.IsNotExist(err) {
				return fail(cmd, "No stroke tape found",
					fmt.Sprintf("Nothing has been recorded at %s.", dbPath),
					"Start stenod with the tape enabled, or pass --db.")
			}

			store, err := tape.Open(dbPath)
			if err != nil {
				return fail(cmd, "Failed to open stroke tape", err.Error())
			}
			defer store.Close()

			if sessions {
				summaries, err := store.Sessions()
				if err != nil {
					return fail(cmd, "Failed to read stroke tape", err.Error())
				}
				newPrinter(cmd).Sessions(summaries)
				return nil
			}

			var entries []tape.Entry
			if sessionID != "" {
				entries, err = store.Session(sessionID)
			} else {
				entries, err = store.Recent(limit)
			}
			if err != nil {
				return fail(cmd, "Failed to read stroke tape", err.Error())
			}

			if asJSON {
				return tape.WriteJSON(cmd.OutOrStdout(), entries)
			}
			newPrinter(cmd).Entries(entries)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Tape database (default from config)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Number of recent strokes to show")
	cmd.Flags().StringVar(&sessionID, "session", "", "Show every stroke of one session")
	cmd.Flags().BoolVar(&sessions, "sessions", false, "Summarize recorded sessions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write entries as a JSON array")
	return cmd
}
