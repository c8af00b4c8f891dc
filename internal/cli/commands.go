package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nconklindev/sheetsync/internal/converter"
	"github.com/nconklindev/sheetsync/internal/manager"
	"github.com/nconklindev/sheetsync/internal/pathfind"
	"github.com/nconklindev/sheetsync/internal/store"
)

func newDownloadCmd(a *app) *cobra.Command {
	var (
		out       string
		noConvert bool
	)
	cmd := &cobra.Command{
		Use:   "download <table>",
		Short: "Download a table from the store and infer column types",
		Long: `Download reads a worksheet, workbook sheet, CSV file or database table.
A table that does not exist yet is created empty when the store allows it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			inf, err := a.cfg.Inferer()
			if err != nil {
				return err
			}
			m := manager.New(s, inf, a.log)

			opts := manager.DefaultDownloadOptions()
			opts.HeaderRow = a.cfg.Read.HeaderRow
			opts.IndexCol = a.cfg.Read.IndexCol
			opts.AutoConvert = !noConvert

			res, err := m.Download(ctx, args[0], opts)
			if err != nil {
				return err
			}
			defer res.Table.Release()

			w := cmd.OutOrStdout()
			if out != "" {
				if err := converter.WriteFile(ctx, out, res.Table); err != nil {
					return err
				}
				fmt.Fprintf(w, "Wrote %s\n", out)
			} else {
				renderPreview(w, res.Table)
			}
			if len(res.Columns) > 0 {
				renderReports(w, res.Columns)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the table to a .csv, .xlsx, .feather or .parquet file")
	cmd.Flags().BoolVar(&noConvert, "no-convert", false, "Skip type inference")
	return cmd
}

func newUploadCmd(a *app) *cobra.Command {
	var includeIndex bool
	cmd := &cobra.Command{
		Use:   "upload <file> <table>",
		Short: "Replace a table in the store with the contents of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			t, err := converter.ReadFile(ctx, args[0], a.cfg.Read)
			if err != nil {
				return err
			}
			defer t.Release()

			s, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			if err := manager.New(s, nil, a.log).Upload(ctx, t, args[1], includeIndex); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Uploaded %d rows to %s\n", t.NumRows(), args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&includeIndex, "index", false, "Write the index as the first column")
	return cmd
}

func newInferCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "infer <file>",
		Short: "Show the column types a file would be converted to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := converter.ReadFile(cmd.Context(), args[0], a.cfg.Read)
			if err != nil {
				return err
			}
			defer t.Release()

			inf, err := a.cfg.Inferer()
			if err != nil {
				return err
			}
			res, err := converter.Preview(t, inf)
			if err != nil {
				return err
			}
			defer res.Table.Release()

			renderReports(cmd.OutOrStdout(), res.Columns)
			return nil
		},
	}
}

func newConvertCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert <input> [output]",
		Short: "Convert a file, inferring integer, float and date columns",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			output := converter.OutputPath(input, to)
			if len(args) == 2 {
				output = args[1]
			}
			if !converter.Supported(output) {
				return fmt.Errorf("unsupported output type: %s", output)
			}

			inf, err := a.cfg.Inferer()
			if err != nil {
				return err
			}
			res, err := converter.ConvertFile(cmd.Context(), input, output, a.cfg.Read, inf, nil)
			if err != nil {
				return err
			}
			renderConversion(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", ".parquet", "Output extension when no output path is given")
	return cmd
}

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables in the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, closeStore, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			l, ok := s.(store.Lister)
			if !ok {
				return fmt.Errorf("the %s store cannot list tables", a.cfg.Store.Kind)
			}
			names, err := l.Tables(ctx)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(w, name)
			}
			return nil
		},
	}
}

func newLocateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "locate",
		Short: "Print the credentials and feather directories found above the working directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, d := range []struct {
				name string
				find func(string) (string, error)
			}{
				{pathfind.CredentialsDirName, a.finder.CredentialsDir},
				{pathfind.FeatherDirName, a.finder.FeatherDir},
			} {
				dir, err := d.find(wd)
				switch {
				case errors.Is(err, pathfind.ErrNotFound):
					fmt.Fprintf(w, "%-12s not found\n", d.name)
				case err != nil:
					return err
				default:
					fmt.Fprintf(w, "%-12s %s\n", d.name, dir)
				}
			}
			return nil
		},
	}
}

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Pick and convert files interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}
