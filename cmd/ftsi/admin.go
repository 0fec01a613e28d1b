package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	domcat "github.com/kailas-cloud/ftsi/internal/domain/catalog"
	"github.com/kailas-cloud/ftsi/internal/version"
)

func newStatusCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status [entity]",
		Short: "Show document counts of an entity's catalog, or of every catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(*env)
			if err != nil {
				return err
			}
			defer rt.Close()

			if len(args) == 1 {
				st, err := rt.app.Catalogs.Status(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printStatus(cmd.OutOrStdout(), st)
				return nil
			}

			all, err := rt.app.Catalogs.Statuses(cmd.Context())
			if err != nil {
				return err
			}
			for _, st := range all {
				printStatus(cmd.OutOrStdout(), st)
			}
			return nil
		},
	}
}

func printStatus(w io.Writer, st domcat.Status) {
	_, _ = fmt.Fprintf(w, "%s\tnum=%d\tnum_deleted=%d\ttotal=%d\n",
		st.Catalog(), st.Num(), st.NumDeleted(), st.Total())
}

func newTotalsCmd(env *string) *cobra.Command {
	return &cobra.Command{
		Use:   "totals [entity]",
		Short: "Count indexed records of an entity, or of every catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(*env)
			if err != nil {
				return err
			}
			defer rt.Close()

			var n int
			if len(args) == 1 {
				n, err = rt.app.Catalogs.Totals(cmd.Context(), args[0])
			} else {
				n, err = rt.app.Catalogs.TotalsAll(cmd.Context())
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
}

func newClearCmd(env *string) *cobra.Command {
	var drop bool

	cmd := &cobra.Command{
		Use:   "clear [entity]",
		Short: "Delete every record of an entity, or of every catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(*env)
			if err != nil {
				return err
			}
			defer rt.Close()

			docs := rt.app.Documents
			switch {
			case drop && len(args) == 1:
				if err := docs.Drop(cmd.Context(), args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "dropped catalog of %s\n", args[0])
				return nil
			case drop:
				return fmt.Errorf("--drop needs an entity")
			}

			var n int
			if len(args) == 1 {
				n, err = docs.DeleteAll(cmd.Context(), args[0])
			} else {
				n, err = docs.DeleteEverything(cmd.Context())
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&drop, "drop", false, "remove the entity's whole catalog from storage")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}
