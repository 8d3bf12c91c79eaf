package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fintally/claimcore/internal/domain"
	"github.com/fintally/claimcore/internal/infrastructure/auth"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "claimcore-cli",
		Short: "ClaimCore CLI tool",
		Long:  `A command line interface for interacting with the ClaimCore API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ClaimCore API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Approval rule operations",
	}
	rulesCmd.AddCommand(rulesListCmd())

	claimsCmd := &cobra.Command{
		Use:   "claims",
		Short: "Expense claim operations",
	}
	claimsCmd.AddCommand(claimsStatsCmd(), claimGetCmd())

	approvalsCmd := &cobra.Command{
		Use:   "approvals",
		Short: "Approval queue operations",
	}
	approvalsCmd.AddCommand(approvalsPendingCmd())

	rootCmd.AddCommand(rulesCmd, claimsCmd, approvalsCmd, tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func rulesListCmd() *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approval rules",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/rules/"
			if activeOnly {
				path += "?active=true"
			}

			var result map[string]any
			if err := getJSON(path, &result); err != nil {
				return err
			}
			printJSON(result)

			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "Only show active rules")

	return cmd
}

func claimsStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show claim counts per status",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := getJSON("/api/v1/claims/stats", &result); err != nil {
				return err
			}
			printJSON(result)

			return nil
		},
	}
}

func claimGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <claim-id>",
		Short: "Fetch a single claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := getJSON("/api/v1/claims/"+args[0], &result); err != nil {
				return err
			}
			printJSON(result)

			return nil
		},
	}
}

func approvalsPendingCmd() *cobra.Command {
	var approverID string

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending approvals for an approver",
		RunE: func(cmd *cobra.Command, args []string) error {
			if approverID == "" {
				return fmt.Errorf("--approver is required")
			}

			var result map[string]any
			if err := getJSON("/api/v1/approvals/pending?approver_id="+approverID, &result); err != nil {
				return err
			}
			printJSON(result)

			return nil
		},
	}
	cmd.Flags().StringVar(&approverID, "approver", "", "Approver identity id")

	return cmd
}

func tokenCmd() *cobra.Command {
	var (
		secret   string
		subject  string
		roles    []string
		duration time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a JWT for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" || subject == "" {
				return fmt.Errorf("--secret and --subject are required")
			}

			manager := auth.NewJWTManager(secret, duration)
			token, err := manager.Generate(domain.Identity{ID: subject, Roles: roles})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)

			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "JWT signing secret")
	cmd.Flags().StringVar(&subject, "subject", "", "Identity id to embed")
	cmd.Flags().StringSliceVar(&roles, "role", nil, "Roles to embed (repeatable)")
	cmd.Flags().DurationVar(&duration, "duration", time.Hour, "Token lifetime")

	return cmd
}

func getJSON(path string, out any) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to encode output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}

	return s[:max-3] + "..."
}
