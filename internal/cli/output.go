package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/florencebot/internal/models"
)

func writeJSON(w io.Writer, value interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func writeDiscount(w io.Writer, result models.DiscountResult) {
	fmt.Fprintf(w, "guides:      %d\n", result.GuideCount)
	fmt.Fprintf(w, "original:    %s\n", result.OriginalTotal.String())
	fmt.Fprintf(w, "discounted:  %s\n", result.DiscountedTotal.String())
	fmt.Fprintf(w, "you save:    %s\n", result.DiscountAmount.String())
	fmt.Fprintf(w, "per guide:   %s\n", result.PerItemPrice.String())
	if result.TierApplied != nil {
		fmt.Fprintf(w, "tier:        %d-pack + %d extra\n", result.BundleQty, result.ExtraItems)
	}
}
