package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sakif/prompt2json/internal/billing"
)

func newPlansCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Print the pricing catalog",
		Long: `Plans prints every pricing tier with its monthly and annual price and
checks the catalog for billing cycles that share a price reference.

Reads PLANS_FILE, or the built-in catalog when it is unset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if file == "" {
				file = os.Getenv("PLANS_FILE")
			}
			catalog, err := billing.LoadCatalog(file)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tMONTHLY\tANNUAL (PER MONTH)\tFEATURES")
			for _, p := range catalog.Plans {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
					p.ID, p.Name, price(p.MonthlyPrice), price(p.AnnualMonthlyPrice()), len(p.Features))
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			issues := catalog.DuplicatePriceRefs()
			if len(issues) > 0 {
				lines := make([]string, len(issues))
				for i, issue := range issues {
					lines[i] = "  " + issue.String()
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: shared price references\n%s\n", strings.Join(lines, "\n"))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Catalog YAML file (default: PLANS_FILE or built-in)")
	return cmd
}

func price(v *int) string {
	if v == nil {
		return "custom"
	}
	return fmt.Sprintf("$%d", *v)
}
