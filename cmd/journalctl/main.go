// Package main implements the journalctl operator CLI.
package main

import (
	"fmt"
	"os"

	"github.com/dsjohal14/ledgerwal/internal/journal"
	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{Use: "journalctl", Short: "Inspect and drive a ledgerwal journal directory"}

	root.AddCommand(newDumpCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newAppendCmd())
	root.AddCommand(newCheckpointCmd())
	root.AddCommand(newGCCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newScanCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the segment ids present in a journal directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := journal.ListSegments(dir)
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\n", id)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "journal directory (required)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newDumpCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Replay every record in a journal directory in on-disk order",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, err := journal.Recover(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			i := 0
			for reader.Next() {
				rec := reader.Record()
				fmt.Fprintf(out, "%d\tkind=%d\tlen=%d\n", i, rec.Kind, len(rec.Payload))
				i++
			}
			return reader.Err()
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "journal directory (required)")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newAppendCmd() *cobra.Command {
	var dir string
	var records []string
	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append one or more records to a fresh journal directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.AppendJournal(dir)
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()
			return appendRecords(j, records)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "journal directory (required)")
	cmd.Flags().StringArrayVar(&records, "record", nil, "record payload to append; may be repeated")
	_ = cmd.MarkFlagRequired("dir")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}

func newCheckpointCmd() *cobra.Command {
	var dir string
	var records []string
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Append any given records then register a checkpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.AppendJournal(dir)
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()
			if err := appendRecords(j, records); err != nil {
				return err
			}
			id, err := j.RegisterCheckpoint()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "checkpoint %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "journal directory (required)")
	cmd.Flags().StringArrayVar(&records, "record", nil, "record payload to append before checkpointing; may be repeated")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func newGCCmd() *cobra.Command {
	var dir string
	var records []string
	cmd := &cobra.Command{
		Use:   "gc",
		Short: "Append any given records, checkpoint, then reclaim older segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := journal.AppendJournal(dir)
			if err != nil {
				return err
			}
			defer func() { _ = j.Close() }()
			if err := appendRecords(j, records); err != nil {
				return err
			}
			if _, err := j.RegisterCheckpoint(); err != nil {
				return err
			}
			if err := j.CheckCheckpoint(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "gc complete")
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "journal directory (required)")
	cmd.Flags().StringArrayVar(&records, "record", nil, "record payload to append before reclaiming; may be repeated")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func appendRecords(j *journal.Journal, records []string) error {
	for _, r := range records {
		future, err := j.Append([]byte(r))
		if err != nil {
			return err
		}
		if err := future.Wait(); err != nil {
			return err
		}
	}
	return nil
}
