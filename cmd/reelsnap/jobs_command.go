package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"reelsnap/internal/jobs"
	"reelsnap/internal/ledger"
	"reelsnap/internal/logging"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List discovered jobs and their completion state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			led, err := ledger.Open(cfg.Paths.LedgerPath)
			if err != nil {
				return err
			}
			done, err := led.Completed()
			if err != nil {
				return err
			}
			source := jobs.NewSource(cfg.Paths.JobRoot, logging.NewNop())
			found, err := source.List(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(found))
			for _, job := range found {
				status := "pending"
				if _, ok := done[job.ID]; ok {
					if pendingOnly {
						continue
					}
					status = "completed"
				}
				desc := job.Description
				if len(desc) > 40 {
					desc = desc[:37] + "..."
				}
				rows = append(rows, []string{job.ID, strconv.Itoa(len(job.ImagePaths)), status, desc})
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No jobs found")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "IMAGES", "STATUS", "DESCRIPTION"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "Show only jobs that have not completed")
	return cmd
}

func newReelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reels",
		Short: "List rendered reels",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			entries, err := os.ReadDir(cfg.Paths.ReelsDir)
			if err != nil {
				return fmt.Errorf("read reels directory: %w", err)
			}

			var rows [][]string
			for _, entry := range entries {
				name := entry.Name()
				if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".mp4") {
					continue
				}
				info, err := entry.Info()
				if err != nil {
					continue
				}
				rows = append(rows, []string{
					name,
					formatSize(info.Size()),
					info.ModTime().Format("2006-01-02 15:04"),
				})
			}
			sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No reels rendered yet")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"NAME", "SIZE", "MODIFIED"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
