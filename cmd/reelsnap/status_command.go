package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reelsnap/internal/config"
	"reelsnap/internal/deps"
	"reelsnap/internal/jobs"
	"reelsnap/internal/ledger"
	"reelsnap/internal/logging"
	"reelsnap/internal/workflow"
)

const statusRequestTimeout = 2 * time.Second

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			summary, reachable := fetchDaemonStatus(cmd.Context(), cfg)

			fmt.Fprintln(out, renderSectionHeader("Daemon", colorize))
			if reachable {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusOK, "running", colorize))
				fmt.Fprintln(out, renderStatusLine("API", statusInfo, "http://"+cfg.Server.Bind, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, fmt.Sprintf("not reachable at %s", cfg.Server.Bind), colorize))
			}

			fmt.Fprintln(out, renderSectionHeader("Pipeline", colorize))
			if reachable {
				for _, name := range []string{"synthesis", "assembly"} {
					health, ok := summary.StageHealth[name]
					switch {
					case !ok:
						fmt.Fprintln(out, renderStatusLine(name, statusWarn, "not configured", colorize))
					case health.Ready:
						fmt.Fprintln(out, renderStatusLine(name, statusOK, "", colorize))
					default:
						fmt.Fprintln(out, renderStatusLine(name, statusError, health.Detail, colorize))
					}
				}
				if summary.LastError != "" {
					fmt.Fprintln(out, renderStatusLine("Last error", statusWarn, summary.LastError, colorize))
				}
			} else {
				localSummary, err := localCounts(cmd.Context(), cfg)
				if err != nil {
					return err
				}
				summary = localSummary
			}
			fmt.Fprintln(out, renderStatusLine("Jobs", statusInfo,
				fmt.Sprintf("%d pending, %d completed", summary.Pending, summary.Completed), colorize))

			fmt.Fprintln(out, renderSectionHeader("Dependencies", colorize))
			for _, status := range deps.CheckBinaries(deps.Required(cfg.Assembly.FFmpegBinary)) {
				if status.Available {
					fmt.Fprintln(out, renderStatusLine(status.Name, statusOK, status.Command, colorize))
				} else {
					fmt.Fprintln(out, renderStatusLine(status.Name, statusError, status.Detail, colorize))
				}
			}

			fmt.Fprintln(out, renderSectionHeader("Paths", colorize))
			fmt.Fprintln(out, renderStatusLine("Job root", statusInfo, cfg.Paths.JobRoot, colorize))
			fmt.Fprintln(out, renderStatusLine("Reels", statusInfo, cfg.Paths.ReelsDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Ledger", statusInfo, cfg.Paths.LedgerPath, colorize))
			return nil
		},
	}
}

// fetchDaemonStatus asks a running daemon for its workflow summary. A
// connection failure is not an error; it just means nothing is listening.
func fetchDaemonStatus(ctx context.Context, cfg *config.Config) (workflow.StatusSummary, bool) {
	bind := strings.TrimSpace(cfg.Server.Bind)
	if bind == "" {
		return workflow.StatusSummary{}, false
	}

	reqCtx, cancel := context.WithTimeout(ctx, statusRequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, "http://"+bind+"/api/status", nil)
	if err != nil {
		return workflow.StatusSummary{}, false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return workflow.StatusSummary{}, false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return workflow.StatusSummary{}, false
	}

	var summary workflow.StatusSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return workflow.StatusSummary{}, false
	}
	return summary, true
}

// localCounts derives pending and completed totals straight from the job
// root and the ledger, for when no daemon is running.
func localCounts(ctx context.Context, cfg *config.Config) (workflow.StatusSummary, error) {
	var summary workflow.StatusSummary

	led, err := ledger.Open(cfg.Paths.LedgerPath)
	if err != nil {
		return summary, err
	}
	done, err := led.Completed()
	if err != nil {
		return summary, err
	}
	summary.Completed = len(done)

	source := jobs.NewSource(cfg.Paths.JobRoot, logging.NewNop())
	found, err := source.List(ctx)
	if err != nil {
		return summary, err
	}
	for _, job := range found {
		if _, ok := done[job.ID]; !ok {
			summary.Pending++
		}
	}
	return summary, nil
}
