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
	"time"

	"github.com/spf13/cobra"
)

var kinds = map[string]string{
	"employee":  "employees",
	"employees": "employees",
	"bank":      "banks",
	"banks":     "banks",
}

type apiClient struct {
	baseURL string
	http    *http.Client
}

func (c *apiClient) do(method, path string, query url.Values, body any) ([]byte, error) {
	u := strings.TrimRight(c.baseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return data, nil
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		baseURL string
		timeout time.Duration
	)
	client := &apiClient{}

	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Ledger replay CLI tool",
		Long:          `A command line interface for rebuilding and querying employee and bank ledgers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			client.baseURL = baseURL
			client.http = &http.Client{Timeout: timeout}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")

	rootCmd.AddCommand(
		rebuildCmd(client),
		entriesCmd(client),
		balanceCmd(client),
		openingBalanceCmd(client),
		statementCmd(client),
		branchBalancesCmd(client),
	)
	return rootCmd
}

func rebuildCmd(client *apiClient) *cobra.Command {
	var subject string
	cmd := &cobra.Command{
		Use:   "rebuild <employee|bank>",
		Short: "Rebuild one subject, or every subject of a ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := resolveKind(args[0])
			if err != nil {
				return err
			}
			data, err := client.do(http.MethodPost, "/api/v1/"+kind+"/rebuild", nil, map[string]string{"subject_id": subject})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "", "Subject id (empty rebuilds all)")
	return cmd
}

func entriesCmd(client *apiClient) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "entries <employee|bank> <id>",
		Short: "List the persisted ledger of a subject",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "from", from)
			setIf(q, "to", to)
			return query(cmd, client, args, "/entries", q)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	return cmd
}

func balanceCmd(client *apiClient) *cobra.Command {
	var asOf string
	cmd := &cobra.Command{
		Use:   "balance <employee|bank> <id>",
		Short: "Show the current balance, or the balance as of a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asOf == "" {
				return query(cmd, client, args, "/balance", nil)
			}
			return query(cmd, client, args, "/balance/as-of", url.Values{"date": {asOf}})
		},
	}
	cmd.Flags().StringVar(&asOf, "as-of", "", "Day (YYYY-MM-DD)")
	return cmd
}

func openingBalanceCmd(client *apiClient) *cobra.Command {
	var date, verified string
	cmd := &cobra.Command{
		Use:   "opening-balance <employee|bank> <id>",
		Short: "Show the balance brought forward into a day",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"date": {date}}
			setIf(q, "verified_only", verified)
			return query(cmd, client, args, "/opening-balance", q)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&verified, "verified-only", "", "Override the verification filter (true|false)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func statementCmd(client *apiClient) *cobra.Command {
	var from, to, verified string
	cmd := &cobra.Command{
		Use:   "statement <employee|bank> <id>",
		Short: "Print a period statement",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"from": {from}, "to": {to}}
			setIf(q, "verified_only", verified)
			return query(cmd, client, args, "/statement", q)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&verified, "verified-only", "", "Override the verification filter (true|false)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func branchBalancesCmd(client *apiClient) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "branch-balances <branch>",
		Short: "Show the bank balances of a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			setIf(q, "date", date)
			data, err := client.do(http.MethodGet, "/api/v1/branches/"+url.PathEscape(args[0])+"/bank-balances", q, nil)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), data)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Day (YYYY-MM-DD), defaults to today")
	return cmd
}

func query(cmd *cobra.Command, client *apiClient, args []string, suffix string, q url.Values) error {
	kind, err := resolveKind(args[0])
	if err != nil {
		return err
	}
	data, err := client.do(http.MethodGet, "/api/v1/"+kind+"/"+url.PathEscape(args[1])+suffix, q, nil)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), data)
}

func resolveKind(s string) (string, error) {
	kind, ok := kinds[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown ledger %q, expected employee or bank", s)
	}
	return kind, nil
}

func setIf(q url.Values, key, val string) {
	if val != "" {
		q.Set(key, val)
	}
}

func printJSON(w io.Writer, data []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		_, err = w.Write(data)
		return err
	}
	buf.WriteByte('\n')
	_, err := buf.WriteTo(w)
	return err
}
