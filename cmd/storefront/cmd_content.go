package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sparkcrackers/storefront/app/models"
)

var (
	titleFlag string
	kindFlag  string
)

// storefront content
var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "List content sections",
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CONTENT ID\tTYPE\tTITLE")
		for _, s := range sf.Content.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", s.ContentID, s.Type, s.Title)
		}
		return w.Flush()
	},
}

var contentGetCmd = &cobra.Command{
	Use:   "get <content-id>",
	Short: "Print one section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		s, ok := sf.Content.Section(args[0])
		if !ok {
			return fmt.Errorf("no content section %q", args[0])
		}
		return printJSON(cmd.OutOrStdout(), s)
	},
}

// storefront content set <id> <value> (admin)
var contentSetCmd = &cobra.Command{
	Use:   "set <content-id> <value>",
	Short: "Change a section's content (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sf, err := openStorefront(cmd.Context(), false)
		if err != nil {
			return err
		}
		defer sf.Close()

		s, _ := sf.Content.Section(args[0])
		s.ContentID = args[0]
		s.Content = args[1]
		overlay(&s.Title, titleFlag)
		if kindFlag != "" {
			s.Type = models.ContentKind(kindFlag)
		}
		if err := sf.Content.Update(cmd.Context(), []models.ContentSection{s}); err != nil {
			return err
		}
		fmt.Printf("Updated %s.\n", args[0])
		return nil
	},
}

// storefront content upload <id> <file> (admin)
var contentUploadCmd = &cobra.Command{
	Use:   "upload <content-id> <file>",
	Short: "Upload an image to the media disk and point a section at it (admin)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		sf, err := openStorefront(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer sf.Close()

		url, err := sf.Content.UploadImage(cmd.Context(), args[0], filepath.Base(args[1]), data)
		if err != nil {
			return err
		}
		fmt.Println(url)
		return nil
	},
}

func init() {
	contentSetCmd.Flags().StringVar(&titleFlag, "title", "", "new title")
	contentSetCmd.Flags().StringVar(&kindFlag, "type", "", "content type: text, image, video, testimonials, features or steps")
	contentCmd.AddCommand(contentGetCmd, contentSetCmd, contentUploadCmd)
}
