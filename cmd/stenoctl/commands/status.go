package commands

import (
	"time"

	"github.com/spf13/cobra"

	"stenod/internal/config"
	"stenod/internal/daemon"
)

func newStatusCmd() *cobra.Command {
	var stop bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether stenod is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr := daemon.NewManager(config.StenodDir())
			p := newPrinter(cmd)

			status := mgr.Status()
			if !status.Running {
				p.Warning("stenod is not running\n")
				return nil
			}

			if stop {
				if err := mgr.SignalStop(); err != nil {
					return fail(cmd, "Failed to stop stenod", err.Error())
				}
				p.Success("Sent stop signal to stenod (pid %d)\n", status.PID)
				return nil
			}

			p.Success("stenod is running\n")
			p.Info("  pid:     %d\n", status.PID)
			p.Info("  session: %s\n", status.SessionID)
			p.Info("  version: %s\n", status.Version)
			p.Info("  uptime:  %s\n", status.Uptime.Round(time.Second))
			if status.TapePath != "" {
				p.Info("  tape:    %s\n", status.TapePath)
			}
			if status.Channel != "" {
				p.Info("  channel: %s\n", status.Channel)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&stop, "stop", false, "Ask the running daemon to shut down")
	return cmd
}
