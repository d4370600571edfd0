package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/repository"

	"github.com/spf13/cobra"
)

func newActivityCommand(opts *RootOptions) *cobra.Command {
	var guestID string
	var limit int
	cmd := &cobra.Command{
		Use:   "activity",
		Short: "List recent cart change events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := opts.Container()
			if err != nil {
				return err
			}
			if container.CartEventRepo == nil {
				return fmt.Errorf("cart activity requires a database")
			}
			if limit <= 0 {
				limit = 20
			}
			events, total, err := container.CartEventRepo.List(repository.CartEventListFilter{
				Page:     1,
				PageSize: limit,
				GuestID:  strings.TrimSpace(guestID),
			})
			if err != nil {
				return fmt.Errorf("list activity: %w", err)
			}
			out := cmd.OutOrStdout()
			if opts.Format == FormatJSON {
				return writeJSON(out, map[string]interface{}{"total": total, "events": events})
			}
			if len(events) == 0 {
				fmt.Fprintln(out, "no cart activity")
				return nil
			}
			table := newTable(out)
			fmt.Fprintln(table, "CHANGED AT\tGUEST\tSOURCE\tITEMS\tSUBTOTAL\tPRODUCTS")
			for _, event := range events {
				fmt.Fprintf(table, "%s\t%s\t%s\t%d\t%s\t%s\n",
					event.ChangedAt.Local().Format(time.DateTime),
					event.GuestID,
					event.Source,
					event.ItemCount,
					event.Subtotal.String(),
					strings.Join(event.ProductIDs, ","),
				)
			}
			if err := table.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "showing %d of %d\n", len(events), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&guestID, "guest", constants.GuestIDLocal, "guest id to filter by (empty for all guests)")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events")
	return cmd
}
