package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bindCmd = &cobra.Command{
	Use:   "bind <assistant-id> <tenant-domain>",
	Short: "Bind a voice assistant to a tenant",
	Long:  `Record which tenant a voice assistant belongs to. Re-binding an assistant replaces its previous tenant.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runBind,
}

var unbindCmd = &cobra.Command{
	Use:   "unbind <assistant-id>",
	Short: "Remove a voice assistant binding",
	Args:  cobra.ExactArgs(1),
	RunE:  runUnbind,
}

func runBind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	binding, err := b.resolver.Bind(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "bound %s -> %s\n", binding.AssistantID, binding.TenantDomain)
	return nil
}

func runUnbind(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	if err := b.resolver.Unbind(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "unbound %s\n", args[0])
	return nil
}
