package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/marshallshelly/cultivar/internal/api"
	"github.com/marshallshelly/cultivar/internal/models"
	"github.com/marshallshelly/cultivar/internal/store"
	"github.com/marshallshelly/cultivar/pkg/schema"
	"github.com/spf13/cobra"
)

var where []string

var listCmd = &cobra.Command{
	Use:   "list <growers|strains|batches|terpenes>",
	Short: "List records, optionally filtered",
	Long: `List records from one table. At most one filter may be given with --where,
using the same names as the API query string, for example:

  cultivar list strains --where species=indica
  cultivar list batches --where strain=og
  cultivar list batches --where thc_min=20 --where thc_max=25`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"growers", "strains", "batches", "terpenes"},
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := parseWhere(where)
		if err != nil {
			return err
		}
		return runList(cmd.Context(), args[0], q, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringArrayVarP(&where, "where", "w", nil, "Filter as key=value")
}

func parseWhere(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		q.Add(key, value)
	}
	return q, nil
}

func runList(ctx context.Context, entity string, q url.Values, w io.Writer) error {
	cfg, closer, err := setup()
	if err != nil {
		return err
	}
	defer closer.Close()

	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := models.RegisterAll(); err != nil {
		return err
	}
	stores := store.New(db)

	var rows any
	switch entity {
	case "growers":
		rows, err = filter(ctx, q, api.ParseGrowerCriterion, stores.Growers.Filter)
	case "strains":
		rows, err = filter(ctx, q, api.ParseStrainCriterion, stores.Strains.Filter)
	case "batches":
		rows, err = filter(ctx, q, api.ParseBatchCriterion, stores.Batches.FilterJoined)
	case "terpenes":
		rows, err = filter(ctx, q, api.ParseTerpenesCriterion, stores.Terpenes.Filter)
	default:
		return fmt.Errorf("unknown table %q", entity)
	}
	if err != nil {
		return err
	}
	return render(w, rows)
}

func filter[C, R any](ctx context.Context, q url.Values, parse func(url.Values) (C, error), fetch func(context.Context, C) ([]R, error)) ([]R, error) {
	c, err := parse(q)
	if err != nil {
		return nil, err
	}
	return fetch(ctx, c)
}

func render(w io.Writer, rows any) error {
	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	switch rows := rows.(type) {
	case []models.Grower:
		_, _ = fmt.Fprintln(tw, "ID\tNAME")
		for _, g := range rows {
			_, _ = fmt.Fprintf(tw, "%d\t%s\n", g.ID, g.Name)
		}
	case []models.Strain:
		_, _ = fmt.Fprintln(tw, "ID\tNAME\tSPECIES")
		for _, s := range rows {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\n", s.ID, s.Name, s.Species.Label())
		}
	case []models.BatchResponse:
		_, _ = fmt.Fprintln(tw, "STRAIN\tGROWER\tHARVESTED\tTESTED\tPACKAGED\tTHC\tCBD")
		for _, b := range rows {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%g\t%g\n",
				b.Strain, b.Grower, dateCell(b.HarvestDate), dateCell(b.FinalTestDate), dateCell(b.PackageDate),
				b.THCContent, b.CBDContent)
		}
	case []models.Terpenes:
		_, _ = fmt.Fprintln(tw, "ID\tBATCH\tCARYOPHYLLENE\tHUMULENE\tLIMONENE\tLINALOOL\tMYRCENE\tPINENE")
		for _, t := range rows {
			_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.BatchID,
				floatCell(t.Caryophyllene), floatCell(t.Humulene), floatCell(t.Limonene),
				floatCell(t.Linalool), floatCell(t.Myrcene), floatCell(t.Pinene))
		}
	default:
		return fmt.Errorf("cannot render %T", rows)
	}
	return tw.Flush()
}

func dateCell(d *schema.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func floatCell(v *float32) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
