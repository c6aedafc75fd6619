package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sevigo/risk-warden/internal/db"
	"github.com/sevigo/risk-warden/internal/gitutil"
	"github.com/sevigo/risk-warden/internal/storage"
)

var auditJSON bool

var auditCmd = &cobra.Command{
	Use:   "audit [pr-url]",
	Short: "Show the stored audit document of a pull request",
	Long: `Show the audit document stored by the latest assessment of a pull request.

Examples:
  warden-cli audit https://github.com/owner/repo/pull/123
  warden-cli audit --json owner/repo#123`,
	Args: cobra.ExactArgs(1),
	RunE: runAudit,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	auditCmd.Flags().BoolVar(&auditJSON, "json", false, "Print the raw JSON document")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	owner, repo, number, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR reference: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	conn, cleanup, err := db.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer cleanup()

	doc, err := storage.NewStore(conn.DB).GetAudit(cmd.Context(), owner+"/"+repo, number)
	if errors.Is(err, storage.ErrAuditNotFound) {
		return fmt.Errorf("no audit stored for %s/%s#%d\n\nTip: run `warden-cli assess` first", owner, repo, number)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if auditJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	fmt.Fprintln(out, renderMarkdown(summaryMarkdown(*doc)))
	boldColor.Fprintf(out, "%s#%d ", doc.Repository, doc.PRNumber)
	decisionColor(doc.Decision).Fprintf(out, "%s (%d/100)\n", doc.Decision, doc.RiskScore)
	printExecution(out, doc.Execution)
	if len(doc.RetrievedContext) > 0 {
		dimColor.Fprintf(out, "   %d prior findings were used\n", len(doc.RetrievedContext))
	}
	return nil
}
