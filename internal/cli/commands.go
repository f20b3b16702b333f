package cli

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/tabclean/internal/core"
	"github.com/JonMunkholm/tabclean/internal/dataset"
	"github.com/spf13/cobra"
)

func newHeadersCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "headers FILE",
		Short: "List the normalized column names of a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := load(ctx, args[0])
			if err != nil {
				return err
			}
			cols, err := l.svc.Headers(ctx, l.id)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return renderJSON(w, map[string]any{"headers": cols})
			}
			rows := make([][]any, len(cols))
			for i, c := range cols {
				rows[i] = []any{i, c}
			}
			renderTable(w, []string{"#", "Column"}, rows)
			return nil
		},
	}
}

func newDupesCommand(opts *options) *cobra.Command {
	var column string

	cmd := &cobra.Command{
		Use:   "dupes FILE",
		Short: "Count duplicate values per column",
		Long: `Count, for every column (or only --column), the non-empty values that
repeat an earlier value. The first occurrence is not counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := load(ctx, args[0])
			if err != nil {
				return err
			}

			var summary core.DuplicateSummary
			if column == "" {
				summary, err = l.svc.DetectDuplicates(ctx, l.id)
			} else {
				summary, err = l.svc.DetectColumnDuplicates(ctx, l.id, column)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.format == formatJSON {
				if !summary.Found() {
					return renderJSON(w, map[string]any{"message": "No duplicates found."})
				}
				return renderJSON(w, summary.Map())
			}
			if !summary.Found() {
				_, _ = fmt.Fprintln(w, "No duplicates found.")
				return nil
			}
			rows := make([][]any, len(summary.Counts))
			for i, c := range summary.Counts {
				rows[i] = []any{c.Column, c.Count}
			}
			renderTable(w, []string{"Column", "Duplicates"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&column, "column", "c", "", "Only scan this column")
	return cmd
}

func newShowDupesCommand(opts *options) *cobra.Command {
	var (
		column    string
		sortCol   string
		sortOrder string
	)

	cmd := &cobra.Command{
		Use:   "show-dupes FILE",
		Short: "List the rows that share a value in a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sortOrder != "asc" && sortOrder != "desc" {
				return fmt.Errorf("invalid --order %q (expected asc or desc)", sortOrder)
			}

			ctx := cmd.Context()
			l, err := load(ctx, args[0])
			if err != nil {
				return err
			}

			listing, err := l.svc.ListDuplicates(ctx, l.id, core.DuplicateQuery{
				Column:     column,
				SortColumn: sortCol,
				Descending: sortOrder == "desc",
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return renderJSON(w, listing)
			}
			if !listing.Found() {
				_, _ = fmt.Fprintln(w, "No duplicates found.")
				return nil
			}

			cols, err := l.svc.Headers(ctx, l.id)
			if err != nil {
				return err
			}
			header := append([]string{"Row"}, cols...)
			rows := make([][]any, len(listing.Rows))
			for i, dr := range listing.Rows {
				row := make([]any, 0, len(header))
				row = append(row, dr.Index)
				for _, v := range dr.Values.Values {
					row = append(row, cellText(v))
				}
				rows[i] = row
			}
			renderTable(w, header, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&column, "column", "c", "", "Column to find duplicates in")
	cmd.Flags().StringVarP(&sortCol, "sort", "s", "", "Column to sort by (default: --column)")
	cmd.Flags().StringVar(&sortOrder, "order", "asc", "Sort order (asc|desc)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newPhonesCommand(opts *options) *cobra.Command {
	var (
		column string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "phones FILE",
		Short: "Normalize the phone numbers in a column",
		Long: `Classify every value of --column against the phone rules and show the
cleaned number and country. With --out, the file is written back with
"Cleaned Phone Numbers" and "Country" columns added.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var outFormat dataset.Format
			if out != "" {
				f, err := dataset.FormatOf(out)
				if err != nil {
					return err
				}
				outFormat = f
			}

			ctx := cmd.Context()
			l, err := load(ctx, args[0])
			if err != nil {
				return err
			}

			records, err := l.svc.NormalizePhones(ctx, l.id, column)
			if err != nil {
				return err
			}

			if out != "" {
				if err := writeTable(cmd, l, out, outFormat); err != nil {
					return err
				}
			}

			w := cmd.OutOrStdout()
			if opts.format == formatJSON {
				return renderJSON(w, map[string]any{"phoneNumbers": records})
			}
			rows := make([][]any, len(records))
			for i, r := range records {
				rows[i] = []any{r.Original, r.Cleaned, r.Country}
			}
			renderTable(w, []string{"Original", "Cleaned", "Country"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&column, "column", "c", "", "Phone number column")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the updated table to this .csv or .xlsx file")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func writeTable(cmd *cobra.Command, l *loaded, path string, format dataset.Format) error {
	table, _, err := l.svc.Snapshot(cmd.Context(), l.id)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dataset.Encode(f, format, table); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d rows to %s\n", table.Len(), path)
	return nil
}

// cellText renders a cell for the terminal, showing missing values as the
// placeholder.
func cellText(v core.Value) string {
	if v.IsNull() {
		return core.Placeholder
	}
	return v.Text()
}
