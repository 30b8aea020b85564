package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gptbridge/internal/batch"
	"gptbridge/internal/common/fsutil"
	"gptbridge/internal/journal"
)

func newSessionsCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect and prune recorded sessions (requires journal)",
	}
	cmd.AddCommand(newSessionsListCmd(opts), newSessionsPruneCmd(opts))
	return cmd
}

func (o *Options) openJournal() (*journal.Store, error) {
	p, err := o.cfg.JournalPath()
	if err != nil {
		return nil, err
	}
	if p == "" {
		return nil, &batch.ConfigurationError{Msg: "journal is not configured"}
	}
	return journal.Open(p)
}

func newSessionsListCmd(opts *Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := opts.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()
			recs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tMODEL\tPROMPTS\tSTATUS\tDURATION")
			for _, r := range recs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					r.ID, r.StartedAt.Local().Format(time.DateTime), r.Model, r.Prompts, r.Status, r.Duration.Round(time.Millisecond))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum sessions to show (0 = all)")
	return cmd
}

func newSessionsPruneCmd(opts *Options) *cobra.Command {
	var (
		olderThan time.Duration
		dryRun    bool
	)
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete session files and journal rows older than a duration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := opts.openJournal()
			if err != nil {
				return err
			}
			defer store.Close()

			cutoff := time.Now().Add(-olderThan)
			recs, err := store.StartedBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			if dryRun {
				for _, r := range recs {
					fmt.Fprintln(cmd.OutOrStdout(), r.ID)
				}
				return nil
			}

			var (
				ids   []string
				files int
			)
			for _, r := range recs {
				n, err := fsutil.RemoveFiles(r.RequestPath, r.ResponsePath)
				files += n
				if err != nil {
					opts.log.Warn().Err(err).Str("session", r.ID).Msg("remove session files")
					continue
				}
				ids = append(ids, r.ID)
			}
			if err := store.Delete(cmd.Context(), ids...); err != nil {
				return err
			}
			opts.log.Info().Int("sessions", len(ids)).Int("files", files).Time("cutoff", cutoff).Msg("pruned")
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d sessions (%d files)\n", len(ids), files)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Prune sessions started before now minus this duration")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print matching session ids without deleting")
	return cmd
}
