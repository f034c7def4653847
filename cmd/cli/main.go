package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL        string
	timeout        time.Duration
	idempotencyKey string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "fxwallet-cli",
		Short:         "FX wallet CLI tool",
		Long:          `A command line interface for interacting with the FX wallet API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the wallet API")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	root.PersistentFlags().StringVar(&idempotencyKey, "idempotency-key", "", "Idempotency key sent with mutating requests")

	root.AddCommand(
		balancesCmd(),
		ratesCmd(),
		convertCmd(),
		baseCmd(),
		entriesCmd(),
		movementCmd("add-money", "Credit a wallet", "source"),
		movementCmd("withdraw", "Withdraw from a wallet", "reason"),
		movementCmd("send", "Send money to a recipient", "note"),
		movementCmd("scan-pay", "Pay a merchant", "merchant"),
		exchangeCmd(),
		reportCmd(),
	)

	return root
}

func balancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show wallet balances",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				BaseCurrency string `json:"base_currency"`
				TotalDisplay string `json:"total_display"`
				Balances     []struct {
					Currency string `json:"currency"`
					Display  string `json:"display"`
				} `json:"balances"`
			}
			if err := call(http.MethodGet, "/api/v1/balances", nil, &resp); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, b := range resp.Balances {
				fmt.Fprintf(w, "%s\t%s\n", b.Currency, b.Display)
			}
			fmt.Fprintf(w, "TOTAL (%s)\t%s\n", resp.BaseCurrency, resp.TotalDisplay)
			return w.Flush()
		},
	}
}

func ratesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rates",
		Short: "Show the rate table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodGet, "/api/v1/rates", nil)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set FROM TO RATE",
		Short: "Set the rate of one pair",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/api/v1/rates/%s/%s", url.PathEscape(args[0]), url.PathEscape(args[1]))
			return callAndPrint(http.MethodPut, path, map[string]string{"rate": args[2]})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resolve FROM TO",
		Short: "Show how a pair resolves",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"from": {args[0]}, "to": {args[1]}}
			return callAndPrint(http.MethodGet, "/api/v1/rates/resolve?"+q.Encode(), nil)
		},
	})

	return cmd
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert AMOUNT FROM TO",
		Short: "Convert an amount between currencies",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"amount": {args[0]}, "from": {args[1]}, "to": {args[2]}}
			return callAndPrint(http.MethodGet, "/api/v1/convert?"+q.Encode(), nil)
		},
	}
}

func baseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "base [CURRENCY]",
		Short: "Show or change the base currency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return callAndPrint(http.MethodGet, "/api/v1/base-currency", nil)
			}
			return callAndPrint(http.MethodPut, "/api/v1/base-currency", map[string]string{"currency": args[0]})
		},
	}
}

func entriesCmd() *cobra.Command {
	var query, currency, entryType string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List the transaction log, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			for key, value := range map[string]string{"q": query, "currency": currency, "type": entryType} {
				if value != "" {
					q.Set(key, value)
				}
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprint(limit))
			}
			if offset > 0 {
				q.Set("offset", fmt.Sprint(offset))
			}

			var entries []struct {
				CreatedAt time.Time `json:"created_at"`
				ID        string    `json:"id"`
				Title     string    `json:"title"`
				Display   string    `json:"display"`
			}
			if err := call(http.MethodGet, "/api/v1/entries?"+q.Encode(), nil, &entries); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWHEN\tTITLE\tAMOUNT")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncate(e.ID, 12), e.CreatedAt.Format(time.DateTime), truncate(e.Title, 32), e.Display)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text search")
	cmd.Flags().StringVar(&currency, "currency", "", "Only this currency")
	cmd.Flags().StringVar(&entryType, "type", "", "Only this entry type")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")
	cmd.Flags().IntVar(&offset, "offset", 0, "Entries to skip")

	return cmd
}

// movementCmd builds a "NAME CURRENCY AMOUNT" command posting to
// /api/v1/movements/NAME. extra names the optional string field set by --extra.
func movementCmd(name, short, extra string) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   name + " CURRENCY AMOUNT",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"currency": args[0], "amount": args[1]}
			if value != "" {
				if name == "send" {
					body["recipient"] = map[string]any{"name": value}
				} else {
					body[extra] = value
				}
			}
			return callAndPrint(http.MethodPost, "/api/v1/movements/"+name, body)
		},
	}

	flag := extra
	if name == "send" {
		flag = "to"
	}
	cmd.Flags().StringVar(&value, flag, "", fmt.Sprintf("Optional %s", flag))

	return cmd
}

func exchangeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exchange AMOUNT FROM TO",
		Short: "Exchange between two wallets",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodPost, "/api/v1/movements/exchange", map[string]string{
				"amount": args[0],
				"from":   args[1],
				"to":     args[2],
			})
		},
	}
}

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Ledger reports",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Per-currency totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return callAndPrint(http.MethodGet, "/api/v1/reports/summary", nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check the FX snapshots of the transaction log",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result struct {
				Inconsistent []string `json:"inconsistent"`
				OutOfOrder   []string `json:"out_of_order"`
				Checked      int      `json:"checked"`
				Consistent   bool     `json:"consistent"`
			}
			err := call(http.MethodGet, "/api/v1/reports/consistency", nil, &result)
			if err != nil && !result.Consistent && result.Checked == 0 {
				return err
			}

			if result.Consistent {
				fmt.Printf("Consistency check PASSED (%d entries)\n", result.Checked)
				return nil
			}
			fmt.Printf("Consistency check FAILED (%d entries)\n", result.Checked)
			for _, id := range result.Inconsistent {
				fmt.Printf("  inconsistent: %s\n", id)
			}
			for _, id := range result.OutOfOrder {
				fmt.Printf("  out of order: %s\n", id)
			}
			return fmt.Errorf("ledger is inconsistent")
		},
	})

	return cmd
}

// apiError is a non-2xx response.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Message)
}

// call sends body as JSON and decodes the response into out. On a non-2xx
// response out is still decoded when possible and an *apiError is returned.
func call(method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, strings.TrimRight(baseURL, "/")+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" && method != http.MethodGet {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil && resp.StatusCode < 300 {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	if resp.StatusCode >= 300 {
		var e struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			msg = e.Error
			if e.Message != "" {
				msg += ": " + e.Message
			}
		}
		return &apiError{Status: resp.StatusCode, Message: msg}
	}

	return nil
}

func callAndPrint(method, path string, body any) error {
	var out any
	if err := call(method, path, body, &out); err != nil {
		return err
	}
	printJSON(out)
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode output: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
