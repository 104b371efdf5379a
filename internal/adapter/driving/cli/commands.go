package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/secm/internal/application"
)

const maskedValue = "********"

func newAddCommand(svc SecretManager, prompt PromptFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME [VALUE]",
		Short: "Store a new secret",
		Example: `# Store a value given on the command line
secm add github-token ghp_abc123

# Prompt for the value with masked input
secm add github-token`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				v, err := prompt(fmt.Sprintf("Value for %s: ", name))
				if err != nil {
					return err
				}
				value = v
			}

			if err := svc.Add(cmd.Context(), name, value); err != nil {
				return fmt.Errorf("add %q: %w", name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Secret %q added.\n", name)
			return nil
		},
	}
}

func newMakeCommand(svc SecretManager) *cobra.Command {
	var (
		length  int
		advance bool
		reveal  bool
	)

	cmd := &cobra.Command{
		Use:   "make NAME",
		Short: "Generate and store a random password",
		Example: `# Letters and one digit, 10 characters
secm make wifi

# 24 characters including a symbol
secm make bank --length 24 --advance`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			value, err := svc.Generate(cmd.Context(), name, length, advance)
			if err != nil {
				return fmt.Errorf("make %q: %w", name, err)
			}
			if reveal {
				fmt.Fprintf(cmd.OutOrStdout(), "Secret %q generated: %s\n", name, value)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Secret %q generated.\n", name)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&length, "length", "l", application.DefaultPasswordLength, "Password length")
	cmd.Flags().BoolVarP(&advance, "advance", "a", false, "Include a symbol character")
	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the generated value")
	return cmd
}

func newUseCommand(svc SecretManager) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "use NAME",
		Short: "Show a stored secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := svc.Get(args[0])
			if err != nil {
				return fmt.Errorf("use %q: %w", args[0], err)
			}
			if !reveal {
				value = maskedValue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], value)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&reveal, "reveal", "r", false, "Print the value in clear text")
	return cmd
}

func newUpdateCommand(svc SecretManager) *cobra.Command {
	var newName, newValue string

	cmd := &cobra.Command{
		Use:   "update OLD",
		Short: "Rename a secret or replace its value",
		Example: `# Rename, keeping the value
secm update old-token --name new-token

# Replace the value
secm update github-token --value ghp_xyz789`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			oldName := args[0]
			if !cmd.Flags().Changed("name") && !cmd.Flags().Changed("value") {
				return errors.New("update: at least one of --name or --value is required")
			}

			// Unset flags keep the current name or value.
			if !cmd.Flags().Changed("name") {
				newName = oldName
			}
			if !cmd.Flags().Changed("value") {
				current, err := svc.Get(oldName)
				if err != nil {
					return fmt.Errorf("update %q: %w", oldName, err)
				}
				newValue = current
			}

			if err := svc.Update(cmd.Context(), oldName, newName, newValue); err != nil {
				return fmt.Errorf("update %q: %w", oldName, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Secret %q updated.\n", newName)
			return nil
		},
	}

	cmd.Flags().StringVarP(&newName, "name", "n", "", "New name")
	cmd.Flags().StringVarP(&newValue, "value", "v", "", "New value")
	return cmd
}

func newRemoveCommand(svc SecretManager) *cobra.Command {
	return &cobra.Command{
		Use:     "rm NAME",
		Aliases: []string{"remove"},
		Short:   "Delete a secret",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("rm %q: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Secret %q removed.\n", args[0])
			return nil
		},
	}
}

func newListCommand(svc SecretManager) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [FILTER]",
		Aliases: []string{"list"},
		Short:   "List secret names, optionally filtered by substring",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var names []string
			if len(args) == 1 {
				names = svc.Filter(args[0])
			} else {
				names = svc.Names()
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
