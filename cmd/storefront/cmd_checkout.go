package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/app/services"
)

var (
	contactFlags  services.ContactForm
	shippingFlags services.ShippingForm
	methodFlag    string
)

// storefront checkout --method cod|card|upi
var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the cart",
	Long: "Walks contact, shipping and payment in order. Fields default to the saved profile; " +
		"flags override them. Card and UPI payments go through the sandbox gateway.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		sf, err := openStorefront(ctx, false)
		if err != nil {
			return err
		}
		defer sf.Close()
		if err := requireLogin(sf); err != nil {
			return err
		}

		flow, err := sf.Checkout()
		if err != nil {
			return err
		}

		contact := flow.Contact()
		overlay(&contact.Email, contactFlags.Email)
		overlay(&contact.Phone, contactFlags.Phone)
		flow.SetContact(contact)
		if err := flow.NextStep(); err != nil {
			return fmt.Errorf("contact: %w", err)
		}

		ship := flow.Shipping()
		overlay(&ship.FirstName, shippingFlags.FirstName)
		overlay(&ship.LastName, shippingFlags.LastName)
		overlay(&ship.Street, shippingFlags.Street)
		overlay(&ship.City, shippingFlags.City)
		overlay(&ship.State, shippingFlags.State)
		overlay(&ship.Pincode, shippingFlags.Pincode)
		overlay(&ship.Landmark, shippingFlags.Landmark)
		flow.SetShipping(ship)
		if err := flow.NextStep(); err != nil {
			return fmt.Errorf("shipping: %w", err)
		}

		if err := flow.SetPaymentMethod(models.PaymentMethod(methodFlag)); err != nil {
			return err
		}

		t := sf.Cart.Totals()
		fmt.Printf("Placing %s order for %s…\n", methodFlag, rupees(t.Total))
		out, err := flow.PlaceOrder(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Order %s placed. Track it with `storefront orders track %s`.\n", out.OrderID, out.OrderID)
		return nil
	},
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func init() {
	f := checkoutCmd.Flags()
	f.StringVar(&contactFlags.Email, "email", "", "contact email")
	f.StringVar(&contactFlags.Phone, "phone", "", "contact phone")
	f.StringVar(&shippingFlags.FirstName, "first-name", "", "recipient first name")
	f.StringVar(&shippingFlags.LastName, "last-name", "", "recipient last name")
	f.StringVar(&shippingFlags.Street, "street", "", "street address")
	f.StringVar(&shippingFlags.City, "city", "", "city")
	f.StringVar(&shippingFlags.State, "state", "", "state")
	f.StringVar(&shippingFlags.Pincode, "pincode", "", "6-digit PIN code")
	f.StringVar(&shippingFlags.Landmark, "landmark", "", "landmark")
	f.StringVar(&methodFlag, "method", string(models.PaymentCOD), "payment method: cod, card or upi")
}
