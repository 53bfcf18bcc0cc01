package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sparkcrackers/storefront/app/models"
)

var (
	emailFlag    string
	passwordFlag string
	signup       models.SignupInput
	profileEdit  models.ProfileInput
	addressEdit  models.Address
)

// storefront login
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and keep the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		email := prompt("Email", emailFlag)
		user, err := sf.Auth.Login(cmd.Context(), email, prompt("Password", passwordFlag))
		if err != nil {
			return err
		}
		fmt.Printf("Welcome back, %s.\n", user.FullName())
		return nil
	},
}

// storefront signup
var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		in := signup
		in.Email = prompt("Email", in.Email)
		in.Password = prompt("Password", in.Password)
		user, err := sf.Auth.Signup(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Account created for %s.\n", user.Email)
		return nil
	},
}

// storefront logout
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		if err := sf.Auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

// storefront whoami
var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in shopper",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		user, ok := sf.Session.User()
		if !ok {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("%s <%s> role=%s\n", user.FullName(), user.Email, user.Role)
		return nil
	},
}

// storefront profile [--first-name ...]
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()
		if err := requireLogin(sf); err != nil {
			return err
		}

		var user models.User
		in := profileEdit
		if addressEdit != (models.Address{}) {
			addr := addressEdit
			in.Address = &addr
		}
		if in == (models.ProfileInput{}) {
			user, err = sf.Auth.Profile(cmd.Context())
		} else {
			user, err = sf.Auth.UpdateProfile(cmd.Context(), in)
		}
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), user)
	},
}

func init() {
	loginCmd.Flags().StringVar(&emailFlag, "email", "", "account email")
	loginCmd.Flags().StringVar(&passwordFlag, "password", "", "account password (prompted when empty)")

	f := signupCmd.Flags()
	f.StringVar(&signup.FirstName, "first-name", "", "first name")
	f.StringVar(&signup.LastName, "last-name", "", "last name")
	f.StringVar(&signup.Email, "email", "", "account email")
	f.StringVar(&signup.Password, "password", "", "password, at least 6 characters")
	f.StringVar(&signup.Phone, "phone", "", "10-digit mobile number")

	p := profileCmd.Flags()
	p.StringVar(&profileEdit.FirstName, "first-name", "", "new first name")
	p.StringVar(&profileEdit.LastName, "last-name", "", "new last name")
	p.StringVar(&profileEdit.Phone, "phone", "", "new 10-digit mobile number")
	p.StringVar(&addressEdit.Street, "street", "", "street")
	p.StringVar(&addressEdit.City, "city", "", "city")
	p.StringVar(&addressEdit.State, "state", "", "state")
	p.StringVar(&addressEdit.Pincode, "pincode", "", "6-digit PIN code")
	p.StringVar(&addressEdit.Landmark, "landmark", "", "landmark")
}
