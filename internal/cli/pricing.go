package cli

import (
	"fmt"
	"strconv"

	"github.com/florencebot/internal/models"

	"github.com/spf13/cobra"
)

func newTiersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tiers",
		Short: "Show the individual guide price and bulk tiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := opts.Container()
			if err != nil {
				return err
			}
			price := models.NewMoneyFromDecimal(container.Pricing.IndividualGuidePrice())
			tiers := container.Pricing.Tiers()
			out := cmd.OutOrStdout()
			if opts.Format == FormatJSON {
				return writeJSON(out, map[string]interface{}{
					"individual_guide_price": price,
					"tiers":                  tiers,
				})
			}
			fmt.Fprintf(out, "individual guide: %s\n", price.String())
			table := newTable(out)
			fmt.Fprintln(table, "MIN QTY\tBUNDLE PRICE\tSAVINGS")
			for _, tier := range tiers {
				fmt.Fprintf(table, "%d\t%s\t%s\n", tier.MinQty, tier.BundlePrice.String(), tier.SavingsPerBundle.String())
			}
			return table.Flush()
		},
	}
}

func newQuoteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <count>",
		Short: "Preview the bulk discount for a number of individual guides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 0 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			container, err := opts.Container()
			if err != nil {
				return err
			}
			result := container.Pricing.CalculateBulkDiscount(count)
			if opts.Format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			writeDiscount(cmd.OutOrStdout(), result)
			return nil
		},
	}
}
