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
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledger-cli",
		Short: "Ledger CLI tool",
		Long:  `A command line interface for interacting with the ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountCmd())
	rootCmd.AddCommand(creditCmd())
	rootCmd.AddCommand(debitCmd())
	rootCmd.AddCommand(transferCmd())
	rootCmd.AddCommand(adjustCmd())
	rootCmd.AddCommand(reverseCmd())
	rootCmd.AddCommand(transactionCmd())
	rootCmd.AddCommand(reconcileCmd())

	return rootCmd
}

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account operations",
	}

	var accountType, currency string
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/accounts/", map[string]any{
				"account_type": accountType,
				"currency":     currency,
			})
		},
	}
	openCmd.Flags().StringVar(&accountType, "type", "Asset", "Account type (Asset, Liability, Equity, Revenue, Expense)")
	openCmd.Flags().StringVar(&currency, "currency", "USD", "ISO 4217 currency code")

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get an account by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get("/api/v1/accounts/" + args[0])
		},
	}

	balanceCmd := &cobra.Command{
		Use:   "balance <id>",
		Short: "Get an account's current balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get("/api/v1/accounts/" + args[0] + "/balance")
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history <id>",
		Short: "List an account's transactions, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get("/api/v1/accounts/" + args[0] + "/transactions")
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <id>",
		Short: "List an account's ledger entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get("/api/v1/accounts/" + args[0] + "/entries")
		},
	}

	cmd.AddCommand(openCmd, getCmd, balanceCmd, historyCmd, entriesCmd)

	return cmd
}

func creditCmd() *cobra.Command {
	var account, amount, reason, key string
	cmd := &cobra.Command{
		Use:   "credit",
		Short: "Record a credit to an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/transactions/credit", map[string]any{
				"account_id":      account,
				"amount":          amount,
				"reason_code":     reason,
				"idempotency_key": key,
			})
		},
	}
	addMovementFlags(cmd, &account, &amount, &reason, &key)

	return cmd
}

func debitCmd() *cobra.Command {
	var account, amount, reason, key string
	cmd := &cobra.Command{
		Use:   "debit",
		Short: "Record a debit from an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/transactions/debit", map[string]any{
				"account_id":      account,
				"amount":          amount,
				"reason_code":     reason,
				"idempotency_key": key,
			})
		},
	}
	addMovementFlags(cmd, &account, &amount, &reason, &key)

	return cmd
}

func transferCmd() *cobra.Command {
	var source, dest, amount, reason, key string
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Transfer between two accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/transactions/transfer", map[string]any{
				"source_account_id":      source,
				"destination_account_id": dest,
				"amount":                 amount,
				"reason_code":            reason,
				"idempotency_key":        key,
			})
		},
	}
	cmd.Flags().StringVar(&source, "from", "", "Source account ID")
	cmd.Flags().StringVar(&dest, "to", "", "Destination account ID")
	cmd.Flags().StringVar(&amount, "amount", "", "Amount to transfer")
	cmd.Flags().StringVar(&reason, "reason", "", "Reason code")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key")

	return cmd
}

func adjustCmd() *cobra.Command {
	var account, amount, direction, reason, key string
	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Record a manual correction",
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/transactions/adjust", map[string]any{
				"account_id":      account,
				"amount":          amount,
				"direction":       direction,
				"reason_code":     reason,
				"idempotency_key": key,
			})
		},
	}
	addMovementFlags(cmd, &account, &amount, &reason, &key)
	cmd.Flags().StringVar(&direction, "direction", "", "Adjustment direction (Debit or Credit)")

	return cmd
}

func reverseCmd() *cobra.Command {
	var reason, key string
	cmd := &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Reverse a committed transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/api/v1/transactions/"+args[0]+"/reverse", map[string]any{
				"reason_code":     reason,
				"idempotency_key": key,
			})
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "Reason code")
	cmd.Flags().StringVar(&key, "key", "", "Idempotency key")

	return cmd
}

func transactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Transaction operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Get a transaction by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get("/api/v1/transactions/" + args[0])
		},
	}

	keyCmd := &cobra.Command{
		Use:   "key <idempotency-key>",
		Short: "Get a transaction by idempotency key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get("/api/v1/transactions/key/" + args[0])
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <id>",
		Short: "List the entries posted by a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return get("/api/v1/transactions/" + args[0] + "/entries")
		},
	}

	cmd.AddCommand(getCmd, keyCmd, entriesCmd)

	return cmd
}

func reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile [account-id]",
		Short: "Reconcile the ledger or a single account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return get("/api/v1/accounts/" + args[0] + "/reconciliation")
			}
			return get("/api/v1/reconciliation")
		},
	}

	return cmd
}

func addMovementFlags(cmd *cobra.Command, account, amount, reason, key *string) {
	cmd.Flags().StringVar(account, "account", "", "Account ID")
	cmd.Flags().StringVar(amount, "amount", "", "Amount")
	cmd.Flags().StringVar(reason, "reason", "", "Reason code")
	cmd.Flags().StringVar(key, "key", "", "Idempotency key")
}

func get(path string) error {
	client := &http.Client{Timeout: timeout}

	resp, err := client.Get(baseURL + path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func post(path string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	client := &http.Client{Timeout: timeout}

	resp, err := client.Post(baseURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	printJSON(parsed)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("request rejected with status %d", resp.StatusCode)
	}

	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", v)
		return
	}
	fmt.Println(string(out))
}
