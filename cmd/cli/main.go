package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loanledger-cli",
		Short: "LoanLedger CLI tool",
		Long:  `A command line interface for interacting with the LoanLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the LoanLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Ledger commands
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}
	ledgerCmd.AddCommand(consistencyCmd())
	rootCmd.AddCommand(ledgerCmd)

	// Account commands
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Loan account operations",
	}
	accountCmd.AddCommand(accountSummaryCmd(), accountScheduleCmd())
	rootCmd.AddCommand(accountCmd)

	rootCmd.AddCommand(sweepCmd(), previewCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func consistencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check schedule-versus-balance consistency for all accounts",
		Run: func(cmd *cobra.Command, args []string) {
			body, status := httpGet("/api/v1/ledger/consistency")
			if status != http.StatusOK {
				fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}

			var result map[string]any
			if err := json.Unmarshal(body, &result); err != nil {
				fmt.Printf("Failed to parse response: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("Consistency check PASSED\n")
			if consistent, ok := result["consistent"].(bool); ok {
				fmt.Printf("Consistent: %v\n", consistent)
			}
		},
	}
}

func accountSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <account-id>",
		Short: "Show the repayment summary for an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			body, status := httpGet("/api/v1/accounts/" + args[0] + "/summary")
			if status != http.StatusOK {
				fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			printRawJSON(body)
		},
	}
}

func accountScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule <account-id>",
		Short: "Show the repayment schedule for an account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			body, status := httpGet("/api/v1/accounts/" + args[0] + "/schedule")
			if status != http.StatusOK {
				fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			printRawJSON(body)
		},
	}
}

func sweepCmd() *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Trigger a delinquency sweep",
		Run: func(cmd *cobra.Command, args []string) {
			payload := map[string]any{}
			if asOf != "" {
				ts, err := time.Parse(time.RFC3339, asOf)
				if err != nil {
					fmt.Printf("Invalid --as-of value: %v\n", err)
					os.Exit(1)
				}
				payload["as_of"] = ts
			}

			body, status := httpPost("/api/v1/delinquency/sweep", payload)
			if status != http.StatusOK {
				fmt.Printf("Sweep failed (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			printRawJSON(body)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "Evaluate overdue status as of this RFC3339 timestamp")
	return cmd
}

func previewCmd() *cobra.Command {
	var (
		principal int64
		rate      string
		term      int
		method    string
		start     string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Preview an amortization schedule without creating a loan",
		Run: func(cmd *cobra.Command, args []string) {
			startDate := time.Now().UTC()
			if start != "" {
				ts, err := time.Parse("2006-01-02", start)
				if err != nil {
					fmt.Printf("Invalid --start value: %v\n", err)
					os.Exit(1)
				}
				startDate = ts
			}

			payload := map[string]any{
				"principal":   principal,
				"annual_rate": rate,
				"term_months": term,
				"method":      method,
				"start_date":  startDate,
			}

			body, status := httpPost("/api/v1/schedules/preview", payload)
			if status != http.StatusOK {
				fmt.Printf("Preview failed (Status: %d)\nResponse: %s\n", status, string(body))
				os.Exit(1)
			}
			printRawJSON(body)
		},
	}

	cmd.Flags().Int64Var(&principal, "principal", 0, "Principal amount in minor units")
	cmd.Flags().StringVar(&rate, "rate", "0", "Nominal annual interest rate in percent")
	cmd.Flags().IntVar(&term, "term", 12, "Term in months")
	cmd.Flags().StringVar(&method, "method", "equal_principal_interest", "Repayment method: equal_principal_interest, equal_principal or bullet")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD), defaults to today")
	return cmd
}

func httpGet(path string) ([]byte, int) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + path)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}

func httpPost(path string, payload any) ([]byte, int) {
	data, err := json.Marshal(payload)
	if err != nil {
		fmt.Printf("Error encoding request: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	return body, resp.StatusCode
}

func printRawJSON(body []byte) {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(out.String())
}
