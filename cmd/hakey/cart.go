package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/service/cart"
)

type cartView struct {
	Items     []domain.LineItem `json:"items"`
	Total     float64           `json:"total"`
	ItemCount int               `json:"itemCount"`
}

func viewOf(st cart.State) cartView {
	return cartView{Items: st.Items, Total: st.Total(), ItemCount: st.ItemCount()}
}

func (c *cli) cartCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cart", Short: "Manage the local cart"}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return c.print(viewOf(c.core.Cart.State()))
		},
	}

	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Add one unit of a catalog game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := c.core.Products.Get(cmd.Context(), domain.GameID(args[0]))
			if err != nil {
				return err
			}
			st := c.core.Cart.AddItem(cmd.Context(), *game)
			if st.Notification != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), st.Notification.Message)
			}
			return c.print(viewOf(st))
		},
	}

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a line from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.print(viewOf(c.core.Cart.RemoveItem(cmd.Context(), domain.GameID(args[0]))))
		},
	}

	set := &cobra.Command{
		Use:   "set <id> <quantity>",
		Short: "Set a line's quantity; 0 or less removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			return c.print(viewOf(c.core.Cart.SetQuantity(cmd.Context(), domain.GameID(args[0]), q)))
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.print(viewOf(c.core.Cart.Clear(cmd.Context())))
		},
	}

	cmd.AddCommand(show, add, remove, set, clearCmd)
	return cmd
}
