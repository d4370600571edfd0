package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/service"

	"github.com/spf13/cobra"
)

type cartView struct {
	Authenticated bool                  `json:"authenticated"`
	Items         []models.CartItem     `json:"items"`
	Subtotal      models.Price          `json:"subtotal"`
	ItemCount     int                   `json:"item_count"`
	BulkDiscount  models.DiscountResult `json:"bulk_discount"`
}

func newCartCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Show or edit the local cart",
	}
	cmd.AddCommand(newCartShowCommand(opts))
	cmd.AddCommand(newCartAddCommand(opts))
	cmd.AddCommand(newCartRemoveCommand(opts))
	cmd.AddCommand(newCartClearCommand(opts))
	return cmd
}

// localCartManager 创建本地命名空间的购物车管理器
func localCartManager(ctx context.Context, opts *RootOptions) (*service.CartManager, bool, error) {
	container, err := opts.Container()
	if err != nil {
		return nil, false, err
	}
	session, err := localSession(ctx, container)
	if err != nil {
		return nil, false, err
	}
	return container.NewCartManager(constants.GuestIDLocal, session), session.IsAuthenticated(), nil
}

func printCart(w io.Writer, format string, manager *service.CartManager, authenticated bool) error {
	view := cartView{
		Authenticated: authenticated,
		Items:         manager.GetItems(),
		Subtotal:      models.NewPrice(manager.GetSubtotal()),
		ItemCount:     manager.GetItemCount(),
		BulkDiscount:  manager.CurrentDiscount(),
	}
	if format == FormatJSON {
		return writeJSON(w, view)
	}
	if len(view.Items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return nil
	}
	table := newTable(w)
	fmt.Fprintln(table, "PRODUCT\tNAME\tTYPE\tQTY\tPRICE")
	for _, item := range view.Items {
		fmt.Fprintf(table, "%s\t%s\t%s\t%d\t%s\n", item.ProductID, item.ProductName, item.ProductType, item.EffectiveQuantity(), item.Price.String())
	}
	if err := table.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "items: %d  subtotal: %s\n", view.ItemCount, view.Subtotal.String())
	if view.BulkDiscount.TierApplied != nil {
		fmt.Fprintf(w, "bulk price for %d guides: %s (save %s)\n",
			view.BulkDiscount.GuideCount, view.BulkDiscount.DiscountedTotal.String(), view.BulkDiscount.DiscountAmount.String())
	}
	return nil
}

func newCartShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, authenticated, err := localCartManager(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := manager.Load(cmd.Context()); err != nil {
				return fmt.Errorf("load cart: %w", err)
			}
			return printCart(cmd.OutOrStdout(), opts.Format, manager, authenticated)
		},
	}
}

func newCartAddCommand(opts *RootOptions) *cobra.Command {
	var quantity int
	cmd := &cobra.Command{
		Use:   "add <product_id> <name> <type> <price>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, authenticated, err := localCartManager(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := manager.AddItem(cmd.Context(), service.AddCartItemInput{
				ProductID:   args[0],
				ProductName: args[1],
				ProductType: args[2],
				Price:       models.ParsePrice(args[3]),
				Quantity:    quantity,
			}); err != nil {
				return fmt.Errorf("add item: %w", err)
			}
			return printCart(cmd.OutOrStdout(), opts.Format, manager, authenticated)
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	return cmd
}

func newCartRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <product_id>",
		Short: "Remove a product from the guest cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, authenticated, err := localCartManager(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := manager.RemoveItem(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("remove item: %w", err)
			}
			return printCart(cmd.OutOrStdout(), opts.Format, manager, authenticated)
		},
	}
}

func newCartClearCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear the guest cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, authenticated, err := localCartManager(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if _, err := manager.ClearCart(cmd.Context()); err != nil {
				return fmt.Errorf("clear cart: %w", err)
			}
			return printCart(cmd.OutOrStdout(), opts.Format, manager, authenticated)
		},
	}
}
