// Command memvfsctl is a small operator-facing debugging aid: it imports a
// snapshot captured from the host file system into a scratch Backend and
// prints what it decoded, the same way the teacher lineage's throwaway
// main.go once printed struct layouts for eyeballing. It is not a
// replication peer and never becomes one.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"memvfs"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "memvfsctl",
		Short: "Inspect memvfs database and WAL snapshots",
	}
	root.AddCommand(newInspectCmd())
	return root
}

func newInspectCmd() *cobra.Command {
	var asWal bool

	cmd := &cobra.Command{
		Use:   "inspect <snapshot-file>",
		Short: "Import a snapshot and report its page size, snapshot size, and backend stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			backend := memvfs.NewBackend(&memvfs.Options{Logger: logrus.StandardLogger()})

			name := "inspect.db"
			if asWal {
				name = "inspect.db-wal"
				if _, err := backend.Open("inspect.db", memvfs.OpenCreate|memvfs.OpenReadWrite|memvfs.OpenMainDB); err != nil {
					return err
				}
			}

			if err := backend.Import(name, data); err != nil {
				return err
			}

			return report(cmd, backend, name)
		},
	}
	cmd.Flags().BoolVar(&asWal, "wal", false, "treat the snapshot as a WAL rather than a database")
	return cmd
}

func report(cmd *cobra.Command, backend *memvfs.Backend, name string) error {
	out := cmd.OutOrStdout()

	pageSize, ok := backend.PageSizeOf(name)
	if !ok {
		fmt.Fprintf(out, "%s: page size not negotiated (empty snapshot)\n", name)
		return nil
	}

	snapshot, err := backend.Export(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: page size %d bytes\n", name, pageSize)
	fmt.Fprintf(out, "%s: snapshot size %d bytes\n", name, len(snapshot))
	fmt.Fprintf(out, "stats: %+v\n", backend.Stats())
	return nil
}
