package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/kingrea/claimdesk/internal/claims"
	"github.com/kingrea/claimdesk/internal/dashboard"
)

var (
	listStatus string
	listType   string
	jsonOutput bool
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Inspect claim data",
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List claims",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(false)
		if err != nil {
			return err
		}
		defer rt.Close()
		list, err := filterClaims(cmd.Context(), rt.repo, listStatus, listType)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), list)
		}
		return writeClaimTable(cmd.OutOrStdout(), list)
	},
}

var claimsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one claim",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := loadRuntime(false)
		if err != nil {
			return err
		}
		defer rt.Close()
		claim, err := rt.repo.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(cmd.OutOrStdout(), claim)
		}
		return writeClaimDetail(cmd.OutOrStdout(), claim)
	},
}

func init() {
	claimsListCmd.Flags().StringVar(&listStatus, "status", "", "only claims with this status")
	claimsListCmd.Flags().StringVar(&listType, "type", "", "only claims of this type")
	claimsCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print JSON")
	claimsCmd.AddCommand(claimsListCmd, claimsShowCmd)
}

func filterClaims(ctx context.Context, repo claims.Repository, status, claimType string) ([]claims.Claim, error) {
	list, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if status != "" {
		s, err := claims.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		list = dashboard.Filter(list, func(c claims.Claim) bool { return c.Status == s })
	}
	if claimType != "" {
		t, err := claims.ParseClaimType(claimType)
		if err != nil {
			return nil, err
		}
		list = dashboard.Filter(list, func(c claims.Claim) bool { return c.ClaimType == t })
	}
	return list, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeClaimTable(w io.Writer, list []claims.Claim) error {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{
			c.ID,
			c.PolicyNumber,
			c.ClaimType.Label(),
			c.Status.Label(),
			fmt.Sprintf("%d%%", c.Confidence),
			fmt.Sprint(c.FlagsCount),
			c.CreatedAt.Format("2006-01-02"),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "POLICY", "TYPE", "STATUS", "CONFIDENCE", "FLAGS", "CREATED").
		Rows(rows...)
	_, err := fmt.Fprintf(w, "%s\n%d claims\n", t.String(), len(list))
	return err
}

func writeClaimDetail(w io.Writer, c claims.Claim) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim %s  %s  %d%% (%s)\n", c.ID, c.Status.Label(), c.Confidence, dashboard.ConfidenceBand(c.Confidence))
	fmt.Fprintf(&b, "Policy:   %s\nType:     %s\nIncident: %s\nFlags:    %d\n", c.PolicyNumber, c.ClaimType.Label(), c.IncidentDate, c.FlagsCount)
	if c.ClaimAmount != nil {
		fmt.Fprintf(&b, "Amount:   $%.2f\n", *c.ClaimAmount)
	}
	if c.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", c.Description)
	}
	if len(c.ExtractedFields) > 0 {
		b.WriteString("\nExtracted fields:\n")
		for _, f := range c.ExtractedFields {
			fmt.Fprintf(&b, "  %-20s %-30s %3d%%\n", f.Field, f.Value, f.Confidence)
		}
	}
	if len(c.Corrections) > 0 {
		b.WriteString("\nCAG corrections:\n")
		for _, corr := range c.Corrections {
			fmt.Fprintf(&b, "  [%s] %s: %s -> %s (%s)\n", corr.Status, corr.Field, corr.OriginalValue, corr.SuggestedValue, corr.Issue)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
