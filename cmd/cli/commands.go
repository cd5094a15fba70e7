package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type tradeView struct {
	ID         string   `json:"id"`
	Sequence   int64    `json:"sequence"`
	SenderID   string   `json:"sender_id"`
	ReceiverID string   `json:"receiver_id"`
	Items      []string `json:"items"`
	Outcome    string   `json:"outcome"`
	Reason     string   `json:"reason"`
}

type accountView struct {
	ID        string         `json:"id"`
	Inventory map[string]int `json:"inventory"`
	Version   int64          `json:"version"`
}

func newTradeCmd(v *viper.Viper) *cobra.Command {
	tradeCmd := &cobra.Command{
		Use:   "trade",
		Short: "Propose and list trades",
	}

	tradeCmd.AddCommand(newTradeProposeCmd(v), newTradeListCmd(v))
	return tradeCmd
}

func newTradeProposeCmd(v *viper.Viper) *cobra.Command {
	var (
		from, to       string
		items          []string
		idempotencyKey string
		retries        uint64
		initialBackoff time.Duration
	)

	cmd := &cobra.Command{
		Use:   "propose",
		Short: "Move items from one account to another as a single trade",
		Long: "Propose a trade. Transient failures (storage_unavailable, rate limits, network errors) " +
			"are retried with exponential backoff under one idempotency key, so a retry never trades twice.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if idempotencyKey == "" {
				idempotencyKey = ulid.Make().String()
			}

			client := clientFrom(v)
			body := map[string]any{"sender_id": from, "receiver_id": to, "items": items}
			headers := map[string]string{"Idempotency-Key": idempotencyKey}

			b := backoff.NewExponentialBackOff()
			b.InitialInterval = initialBackoff

			var raw []byte
			operation := func() error {
				var err error
				raw, err = client.do(cmd.Context(), http.MethodPost, "/api/v1/trades", body, headers)
				if err != nil && !isRetryable(err) {
					return backoff.Permanent(err)
				}
				return err
			}
			notify := func(err error, wait time.Duration) {
				fmt.Fprintf(cmd.ErrOrStderr(), "retrying in %s: %v\n", wait.Round(time.Millisecond), err)
			}

			policy := backoff.WithContext(backoff.WithMaxRetries(b, retries), cmd.Context())
			if err := backoff.RetryNotify(operation, policy, notify); err != nil {
				return describeTradeError(err)
			}

			var trade tradeView
			if err := json.Unmarshal(raw, &trade); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			return printResult(cmd, v, raw, func() string {
				return fmt.Sprintf("trade %s committed (sequence %d): %s -> %s [%s]",
					trade.ID, trade.Sequence, trade.SenderID, trade.ReceiverID, strings.Join(trade.Items, ", "))
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Sender account ID")
	cmd.Flags().StringVar(&to, "to", "", "Receiver account ID")
	cmd.Flags().StringSliceVar(&items, "item", nil, "Item to move; repeat for multiple copies")
	cmd.Flags().StringVar(&idempotencyKey, "idempotency-key", "", "Key shared by all attempts (default: generated)")
	cmd.Flags().Uint64Var(&retries, "retries", 3, "Retries for transient failures")
	cmd.Flags().DurationVar(&initialBackoff, "backoff", 200*time.Millisecond, "Initial retry delay")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("item")

	return cmd
}

// describeTradeError adds the shortfall to insufficient inventory errors.
func describeTradeError(err error) error {
	var apiErr *apiError
	if !errors.As(err, &apiErr) || len(apiErr.MissingItems) == 0 {
		return err
	}

	items := make([]string, 0, len(apiErr.MissingItems))
	for item := range apiErr.MissingItems {
		items = append(items, item)
	}
	sort.Strings(items)

	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s x%d", item, apiErr.MissingItems[item])
	}
	return fmt.Errorf("trade rejected: missing %s", strings.Join(parts, ", "))
}

func newTradeListCmd(v *viper.Viper) *cobra.Command {
	var (
		account string
		after   int64
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trades in sequence order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			if account != "" {
				query.Set("account_id", account)
			}
			query.Set("after", strconv.FormatInt(after, 10))
			query.Set("limit", strconv.Itoa(limit))

			raw, err := clientFrom(v).do(cmd.Context(), http.MethodGet, "/api/v1/trades?"+query.Encode(), nil, nil)
			if err != nil {
				return err
			}

			var page struct {
				Trades    []tradeView `json:"trades"`
				NextAfter int64       `json:"next_after"`
			}
			if err := json.Unmarshal(raw, &page); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			return printResult(cmd, v, raw, func() string {
				var sb strings.Builder
				fmt.Fprintf(&sb, "%-6s %-10s %-12s %-12s %s\n", "SEQ", "OUTCOME", "FROM", "TO", "ITEMS")
				for _, t := range page.Trades {
					outcome := t.Outcome
					if t.Reason != "" {
						outcome += " (" + t.Reason + ")"
					}
					fmt.Fprintf(&sb, "%-6d %-10s %-12s %-12s %s\n",
						t.Sequence, outcome, truncate(t.SenderID, 12), truncate(t.ReceiverID, 12), strings.Join(t.Items, ", "))
				}
				if len(page.Trades) > 0 {
					fmt.Fprintf(&sb, "next: --after %d", page.NextAfter)
				}
				return strings.TrimRight(sb.String(), "\n")
			})
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "Only trades involving this account")
	cmd.Flags().Int64Var(&after, "after", 0, "Only trades after this sequence")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum trades to return")

	return cmd
}

func newAccountCmd(v *viper.Viper) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Register accounts and grant items",
	}

	var items []string
	createCmd := &cobra.Command{
		Use:   "create <id>",
		Short: "Register an account with an optional starting inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := clientFrom(v).do(cmd.Context(), http.MethodPost, "/api/v1/accounts", map[string]any{
				"id":    args[0],
				"items": items,
			}, nil)
			if err != nil {
				return err
			}
			return printAccount(cmd, v, raw)
		},
	}
	createCmd.Flags().StringSliceVar(&items, "item", nil, "Starting item; repeat for multiple copies")

	var grant []string
	creditCmd := &cobra.Command{
		Use:   "credit <id>",
		Short: "Grant items to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := clientFrom(v).do(cmd.Context(), http.MethodPost,
				"/api/v1/accounts/"+url.PathEscape(args[0])+"/credit", map[string]any{"items": grant}, nil)
			if err != nil {
				return err
			}
			return printAccount(cmd, v, raw)
		},
	}
	creditCmd.Flags().StringSliceVar(&grant, "item", nil, "Item to grant; repeat for multiple copies")
	_ = creditCmd.MarkFlagRequired("item")

	accountCmd.AddCommand(createCmd, creditCmd)
	return accountCmd
}

func newInventoryCmd(v *viper.Viper) *cobra.Command {
	inventoryCmd := &cobra.Command{
		Use:   "inventory",
		Short: "Inspect inventories",
	}

	inventoryCmd.AddCommand(&cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account's items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := clientFrom(v).do(cmd.Context(), http.MethodGet,
				"/api/v1/accounts/"+url.PathEscape(args[0])+"/inventory", nil, nil)
			if err != nil {
				return err
			}
			return printAccount(cmd, v, raw)
		},
	})

	return inventoryCmd
}

func printAccount(cmd *cobra.Command, v *viper.Viper, raw []byte) error {
	var acc accountView
	if err := json.Unmarshal(raw, &acc); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}

	return printResult(cmd, v, raw, func() string {
		items := make([]string, 0, len(acc.Inventory))
		for item := range acc.Inventory {
			items = append(items, item)
		}
		sort.Strings(items)

		var sb strings.Builder
		fmt.Fprintf(&sb, "account %s (version %d)", acc.ID, acc.Version)
		if len(items) == 0 {
			sb.WriteString("\n  (empty)")
		}
		for _, item := range items {
			fmt.Fprintf(&sb, "\n  %-20s x%d", item, acc.Inventory[item])
		}
		return sb.String()
	})
}

func newPresenceCmd(v *viper.Viper) *cobra.Command {
	presenceCmd := &cobra.Command{
		Use:   "presence",
		Short: "Send heartbeats and list online accounts",
	}

	heartbeatCmd := &cobra.Command{
		Use:   "heartbeat <account-id>",
		Short: "Mark an account as online",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := clientFrom(v).do(cmd.Context(), http.MethodPost,
				"/api/v1/presence/"+url.PathEscape(args[0])+"/heartbeat", nil, nil)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "heartbeat sent for %s\n", args[0])
			return err
		},
	}

	onlineCmd := &cobra.Command{
		Use:   "online",
		Short: "List accounts seen within the presence window",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := clientFrom(v).do(cmd.Context(), http.MethodGet, "/api/v1/presence/online", nil, nil)
			if err != nil {
				return err
			}

			var resp struct {
				Accounts []string `json:"accounts"`
				TTL      string   `json:"ttl"`
			}
			if err := json.Unmarshal(raw, &resp); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			return printResult(cmd, v, raw, func() string {
				if len(resp.Accounts) == 0 {
					return fmt.Sprintf("no accounts online (window %s)", resp.TTL)
				}
				return fmt.Sprintf("%d online (window %s): %s", len(resp.Accounts), resp.TTL, strings.Join(resp.Accounts, ", "))
			})
		},
	}

	presenceCmd.AddCommand(heartbeatCmd, onlineCmd)
	return presenceCmd
}

func newLedgerCmd(v *viper.Viper) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check that no account holds a negative item count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := clientFrom(v).do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil)

			var report struct {
				Consistent    bool           `json:"consistent"`
				TotalAccounts int            `json:"total_accounts"`
				ItemTotals    map[string]int `json:"item_totals"`
				Violations    []string       `json:"violations"`
			}
			if err != nil {
				return fmt.Errorf("consistency check FAILED: %w", err)
			}
			if err := json.Unmarshal(raw, &report); err != nil {
				return fmt.Errorf("parse response: %w", err)
			}

			return printResult(cmd, v, raw, func() string {
				return fmt.Sprintf("Consistency check PASSED\nAccounts: %d\nDistinct items: %d",
					report.TotalAccounts, len(report.ItemTotals))
			})
		},
	})

	return ledgerCmd
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
