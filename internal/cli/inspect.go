package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"wikiscrap/internal/parse"
)

const previewRunes = 100

func (c *command) inspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <url>",
		Short: "Fetch one article and print what would be extracted",
		Long: `inspect fetches a single article through the same transport and extraction
pipeline as a session and prints the record without writing any file.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.cfg.Options(cmd.OutOrStdout(), c.logger)
			page, err := c.env.Inspect(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(cmd.OutOrStdout(), page)
			}
			printPage(cmd.OutOrStdout(), page)
			return nil
		},
	}
	cmd.Flags().Bool("json", false, "print the record as JSON")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printPage(w io.Writer, page parse.Page) {
	fmt.Fprintf(w, "Title: %s\n", page.Title)
	fmt.Fprintf(w, "URL: %s\n", page.URL)
	fmt.Fprintf(w, "Summary length: %d chars\n", utf8.RuneCountInString(page.Summary))
	fmt.Fprintf(w, "Summary preview: %s\n", preview(page.Summary))

	fmt.Fprintf(w, "Sections (%d):\n", len(page.Sections))
	printList(w, page.Sections)
	fmt.Fprintf(w, "Internal links: %d\n", len(page.Links))
	fmt.Fprintf(w, "Images (%d):\n", len(page.Images))
	printList(w, page.Images)
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	return string([]rune(s)[:previewRunes]) + "..."
}

func printList(w io.Writer, items []string) {
	if len(items) == 0 {
		fmt.Fprintln(w, "  (none)")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}
