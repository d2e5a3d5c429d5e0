package main

import (
	"github.com/spf13/cobra"
	"hakey-storefront/internal/domain"
	"hakey-storefront/internal/query"
)

func (c *cli) catalogCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "catalog", Short: "Browse the remote catalog"}

	var params query.Params
	list := &cobra.Command{
		Use:   "list",
		Short: "List games with optional filter, search and sort",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listing, err := c.core.Products.Browse(cmd.Context(), params)
			if err != nil {
				return err
			}
			return c.print(listing)
		},
	}
	list.Flags().StringVar(&params.Category, "category", query.AllCategories, "category filter")
	list.Flags().StringVarP(&params.Term, "query", "q", "", "search term")
	list.Flags().StringVar(&params.SortBy, "sort", query.SortFeatured, "featured|price-low|price-high|rating|discount")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := c.core.Products.Get(cmd.Context(), domain.GameID(args[0]))
			if err != nil {
				return err
			}
			return c.print(game)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
