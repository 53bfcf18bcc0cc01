package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sparkcrackers/storefront/app/models"
)

// storefront orders
var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List your orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()
		if err := requireLogin(sf); err != nil {
			return err
		}

		list, err := sf.Orders.List(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPLACED\tSTATUS\tPAYMENT\tTOTAL")
		for _, o := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s/%s\t%s\n",
				o.ID, o.CreatedAt.Format("02 Jan 2006 15:04"), o.Status, o.PaymentMethod, o.PaymentStatus, rupees(o.Total))
		}
		return w.Flush()
	},
}

var orderShowCmd = &cobra.Command{
	Use:   "show <order-id>",
	Short: "Show one order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		o, err := sf.Orders.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), o)
	},
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <order-id>",
	Short: "Cancel an order that has not shipped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		o, err := sf.Orders.Cancel(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Order %s is %s.\n", o.ID, o.Status)
		return nil
	},
}

// storefront orders track <id> follows status changes until the order is
// delivered or cancelled.
var orderTrackCmd = &cobra.Command{
	Use:   "track <order-id>",
	Short: "Follow an order's status live",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		return sf.Orders.Watch(cmd.Context(), args[0], func(ev models.OrderEvent) bool {
			fmt.Printf("%s  %-10s payment %s\n", ev.At.Local().Format("15:04:05"), ev.Status, ev.PaymentStatus)
			return true
		})
	},
}

func init() {
	ordersCmd.AddCommand(orderShowCmd, orderCancelCmd, orderTrackCmd)
}
