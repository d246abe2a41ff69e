package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ersonp/datacatalog/internal/application/handlers"
	"github.com/ersonp/datacatalog/internal/domain/entities"
)

type auditFlags struct {
	product string
	action  string
	limit   int
	format  string
}

func newAuditCmd() *cobra.Command {
	var flags auditFlags

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show the audit log",
		Long:  "Lists completed registrations, deletions and bootstraps, newest first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !contains(validOutputFormats, flags.format) {
				return fmt.Errorf("invalid format %q, valid formats: %v", flags.format, validOutputFormats)
			}
			return runAudit(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.product, "product", "p", "", "Only entries for this data product id")
	cmd.Flags().StringVarP(&flags.action, "action", "a", "", "Only entries with this action (register, delete, bootstrap)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", handlers.DefaultAuditLimit, "Maximum number of entries")
	cmd.Flags().StringVarP(&flags.format, "format", "f", "text", "Output format (text, json)")

	return cmd
}

func runAudit(cmd *cobra.Command, flags auditFlags) error {
	ctx := cmd.Context()

	return withAuditHandler(func(h *handlers.AuditHandler) error {
		entries, err := h.Handle(ctx, handlers.AuditQuery{
			DataProductID: flags.product,
			Action:        flags.action,
			Limit:         flags.limit,
		})
		if err != nil {
			return err
		}

		if flags.format == "json" {
			if entries == nil {
				entries = []entities.AuditEntry{}
			}
			return writeJSON(os.Stdout, entries)
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries found.")
			return nil
		}
		for _, e := range entries {
			displayAuditEntry(os.Stdout, e)
		}
		return nil
	})
}

func displayAuditEntry(w io.Writer, e entities.AuditEntry) {
	line := fmt.Sprintf("%s  %-9s", e.CreatedAt.Local().Format(time.DateTime), e.Action)
	if e.DataProductID != "" {
		line += "  " + e.DataProductID
	}
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Details[k]))
		}
		line += "  " + strings.Join(parts, " ")
	}
	fmt.Fprintln(w, line)
}
