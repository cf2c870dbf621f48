package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wikiscrap/internal/config"
)

func (c *command) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or display wikiscrap configuration",
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file, asking for each setting",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			useDefaults, _ := cmd.Flags().GetBool("defaults")
			if useDefaults {
				if err := config.Write(path, config.Default()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			}
			_, err := RunConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout(), path, c.cfg)
			return err
		},
	}
	initCmd.Flags().Bool("defaults", false, "write the default settings without prompting")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration (defaults, file, environment, flags)",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printJSON(cmd.OutOrStdout(), c.cfg)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
