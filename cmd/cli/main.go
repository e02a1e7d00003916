package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	baseURL    string
	timeout    time.Duration
	businessID string
	accountID  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bynkbook-cli",
		Short: "Bynkbook CLI tool",
		Long:  `A command line interface for interacting with the Bynkbook API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Bynkbook API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&businessID, "business", "", "Business ID")
	rootCmd.PersistentFlags().StringVar(&accountID, "account", "", "Account ID")

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		Run: func(cmd *cobra.Command, args []string) {
			checkHealth()
		},
	}
	rootCmd.AddCommand(healthCmd)

	// Issue commands
	issuesCmd := &cobra.Command{
		Use:   "issues",
		Short: "Issue scan operations",
	}

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Run an issue scan on an account",
		Run: func(cmd *cobra.Command, args []string) {
			requireScope()
			runScan()
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the last recorded scan for an account",
		Run: func(cmd *cobra.Command, args []string) {
			requireScope()
			showLastScan()
		},
	}

	issuesCmd.AddCommand(scanCmd, statusCmd)
	rootCmd.AddCommand(issuesCmd)

	// Audit export commands
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail operations",
	}

	exportCmd := &cobra.Command{
		Use:       "export [events|matches|bank]",
		Short:     "Export audit data as CSV to stdout",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"events", "matches", "bank"},
		Run: func(cmd *cobra.Command, args []string) {
			requireScope()
			exportCSV(args[0])
		},
	}

	auditCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(auditCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func requireScope() {
	if businessID == "" || accountID == "" {
		fmt.Println("both --business and --account are required")
		os.Exit(1)
	}
}

func accountURL(suffix string) string {
	return fmt.Sprintf("%s/api/v1/businesses/%s/accounts/%s%s", baseURL, businessID, accountID, suffix)
}

func checkHealth() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/ready")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Health check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Printf("Health check PASSED\n%s\n", string(body))
}

func runScan() {
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequest(http.MethodPost, accountURL("/issues/scan"), nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")
	// A fresh key per invocation; retries of the same process reuse it.
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Scan FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		DuplicateEntryIDs       []string `json:"duplicate_entry_ids"`
		StaleCheckEntryIDs      []string `json:"stale_check_entry_ids"`
		MissingCategoryEntryIDs []string `json:"missing_category_entry_ids"`
		NotInViewGroupIDs       []string `json:"not_in_view_group_ids"`
		RevertHeavyBankTxnIDs   []string `json:"revert_heavy_bank_transaction_ids"`
		AttentionCount          int      `json:"attention_count"`
		ScannedAt               string   `json:"scanned_at"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Scanned at: %s\n", result.ScannedAt)
	fmt.Printf("Attention count: %d\n", result.AttentionCount)
	fmt.Printf("Duplicates: %d\n", len(result.DuplicateEntryIDs))
	fmt.Printf("Stale checks: %d\n", len(result.StaleCheckEntryIDs))
	fmt.Printf("Missing category: %d\n", len(result.MissingCategoryEntryIDs))
	fmt.Printf("Groups out of view: %d\n", len(result.NotInViewGroupIDs))
	fmt.Printf("Revert-heavy bank transactions: %d\n", len(result.RevertHeavyBankTxnIDs))
}

func showLastScan() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(accountURL("/issues/last-scan"))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		ScannedAt      *string `json:"scanned_at"`
		AttentionCount int     `json:"attention_count"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if result.ScannedAt == nil {
		fmt.Println("No scan recorded yet")
		return
	}
	fmt.Printf("Last scan: %s\n", *result.ScannedAt)
	fmt.Printf("Attention count: %d\n", result.AttentionCount)
}

func exportCSV(kind string) {
	paths := map[string]string{
		"events":  "/audit/events/export",
		"matches": "/audit/matches/export",
		"bank":    "/audit/bank-transactions/export",
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(accountURL(paths[kind]))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		fmt.Printf("Export FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	io.Copy(os.Stdout, resp.Body)
}
