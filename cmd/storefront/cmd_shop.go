package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/services"
)

var (
	filter  models.ProductFilter
	qtyFlag int
)

// storefront products
var productsCmd = &cobra.Command{
	Use:   "products [id]",
	Short: "Browse the catalog, or show one product",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		if len(args) == 1 {
			p, err := sf.Catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		}

		list, err := sf.Catalog.List(cmd.Context(), filter)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tSAVED")
		for _, p := range list {
			saved := ""
			if sf.Wishlist.Contains(p.ID) {
				saved = "♥"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", p.ID, p.Name, p.Category, rupees(p.Price), p.Stock, saved)
		}
		return w.Flush()
	},
}

// storefront cart
var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()
		if err := requireLogin(sf); err != nil {
			return err
		}
		printCart(sf)
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add a product to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(sf *services.Storefront) error {
			p, err := sf.Catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return sf.Cart.Add(cmd.Context(), p, qtyFlag)
		})
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Change a line's quantity; 0 removes it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("quantity %q is not a number", args[1])
		}
		return withCart(cmd, func(sf *services.Storefront) error {
			return sf.Cart.UpdateQuantity(cmd.Context(), args[0], qty)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(sf *services.Storefront) error {
			return sf.Cart.Remove(cmd.Context(), args[0])
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCart(cmd, func(sf *services.Storefront) error {
			return sf.Cart.Clear(cmd.Context())
		})
	},
}

// withCart runs a cart mutation and prints the resulting cart.
func withCart(cmd *cobra.Command, fn func(sf *services.Storefront) error) error {
	sf, err := openStorefront(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer sf.Close()

	if err := fn(sf); err != nil {
		return err
	}
	printCart(sf)
	return nil
}

func printCart(sf *services.Storefront) {
	items := sf.Cart.Items()
	if len(items) == 0 {
		fmt.Println("Your cart is empty.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tQTY\tPRICE\tLINE")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			it.Product.ID, it.Product.Name, it.Quantity, rupees(it.Product.Price), rupees(it.LineTotal()))
	}
	w.Flush()

	t := sf.Cart.Totals()
	fmt.Printf("\n%d item(s)  subtotal %s  shipping %s  total %s\n",
		sf.Cart.ItemCount(), rupees(t.Subtotal), rupees(t.Shipping), rupees(t.Total))
	if s := sf.Cart.Savings(); s > 0 {
		fmt.Printf("You save %s\n", rupees(s))
	}
}

// storefront wishlist
var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Show the wishlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()
		if err := requireLogin(sf); err != nil {
			return err
		}

		for _, p := range sf.Wishlist.Products() {
			fmt.Printf("%s  %s  %s\n", p.ID, p.Name, rupees(p.Price))
		}
		return nil
	},
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Save or unsave a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		saved, err := sf.Wishlist.Toggle(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if saved {
			fmt.Println("Saved to wishlist.")
		} else {
			fmt.Println("Removed from wishlist.")
		}
		return nil
	},
}

func init() {
	productsCmd.Flags().StringVar(&filter.Category, "category", "", "only this category")
	productsCmd.Flags().StringVar(&filter.Search, "search", "", "match name or description")

	cartAddCmd.Flags().IntVarP(&qtyFlag, "qty", "q", 1, "quantity to add")
	cartCmd.AddCommand(cartAddCmd, cartSetCmd, cartRemoveCmd, cartClearCmd)

	wishlistCmd.AddCommand(wishlistToggleCmd)
}
