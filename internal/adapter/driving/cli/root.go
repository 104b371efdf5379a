// Package cli is the command-line driving adapter. It maps secm subcommands
// onto a SecretManager and writes results to the command's output streams.
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

// SecretManager is the subset of the application service the CLI drives.
// *application.SecretService satisfies it.
type SecretManager interface {
	Add(ctx context.Context, name, value string) error
	Update(ctx context.Context, oldName, newName, newValue string) error
	Delete(ctx context.Context, name string) error
	Get(name string) (string, error)
	Names() []string
	Filter(substr string) []string
	Generate(ctx context.Context, name string, length int, useSymbols bool) (string, error)
}

// PromptFunc reads a secret value from the user without echoing it.
type PromptFunc func(prompt string) (string, error)

// NewRootCommand builds the secm command tree over svc. prompt is used by
// add when no value argument is given.
func NewRootCommand(svc SecretManager, prompt PromptFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "secm",
		Short:         "Local encrypted secret manager",
		Long:          "secm stores named secrets encrypted with a master key kept in the OS credential vault.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newAddCommand(svc, prompt),
		newMakeCommand(svc),
		newUseCommand(svc),
		newUpdateCommand(svc),
		newRemoveCommand(svc),
		newListCommand(svc),
	)
	return root
}
