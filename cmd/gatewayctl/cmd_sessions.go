package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopvoice/function-gateway/internal/domain/session"
	"github.com/shopvoice/function-gateway/internal/utils/redact"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect and remove tenant sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list <tenant-domain>",
	Short: "List a tenant's live sessions",
	Long:  `List the tenant's unexpired sessions, most recently updated first. Access tokens are masked.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsList,
}

var sessionsPurgeCmd = &cobra.Command{
	Use:   "purge <tenant-domain>",
	Short: "Delete every session of a tenant",
	Long:  `Delete every session of the tenant, as an uninstall would. With --bindings the tenant's assistant bindings go too.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsPurge,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsPurgeCmd)

	sessionsPurgeCmd.Flags().Bool("bindings", false, "Also remove the tenant's assistant bindings")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	sessions, err := b.sessions.FindByTenant(ctx, session.NormalizeTenantDomain(args[0]))
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSCOPE\tTOKEN\tEXPIRES\tUPDATED")
	for _, s := range sessions {
		kind := "offline"
		if s.IsOnline {
			kind = "online"
		}
		expires := "-"
		if s.ExpiresAt != nil {
			expires = s.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.ID, kind, s.Scope, redact.Token(s.AccessToken), expires, s.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runSessionsPurge(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, err := openBackend(ctx, cmd)
	if err != nil {
		return err
	}
	defer b.Close()

	domain := session.NormalizeTenantDomain(args[0])
	deleted, err := b.sessions.DeleteByTenant(ctx, domain)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d session(s) of %s\n", deleted, domain)

	if withBindings, _ := cmd.Flags().GetBool("bindings"); withBindings {
		n, err := b.resolver.UnbindTenant(ctx, domain)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d assistant binding(s)\n", n)
	}
	return nil
}
