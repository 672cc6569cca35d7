package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/resumebot/internal/store"
)

var callsCmd = &cobra.Command{
	Use:   "calls",
	Short: "Inspect the remote analysis call log",
}

var callsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent analysis calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		op, _ := cmd.Flags().GetString("op")
		session, _ := cmd.Flags().GetString("session")
		failed, _ := cmd.Flags().GetBool("failed")

		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		calls, err := s.Calls().QueryCalls(cmd.Context(), store.QueryOpts{
			Limit:      limit,
			Operation:  op,
			SessionID:  session,
			FailedOnly: failed,
		})
		if err != nil {
			return fmt.Errorf("query calls: %w", err)
		}
		if len(calls) == 0 {
			fmt.Println("No analysis calls found.")
			return nil
		}

		fmt.Printf("%-5s  %-19s  %-14s  %-6s  %-8s  %-7s  %s\n",
			"ID", "Timestamp", "Operation", "Backend", "Session", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 80))
		for _, c := range calls {
			ok := "✓"
			if !c.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-14s  %-6s  %-8s  %-7d  %s\n",
				c.ID,
				c.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				c.Operation,
				c.Backend,
				truncate(c.SessionID, 8),
				c.LatencyMs,
				ok,
			)
		}
		return nil
	},
}

var callsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View full request/response for an analysis call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		c, err := s.Calls().GetCall(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get call: %w", err)
		}

		sep := strings.Repeat("─", 60)

		fmt.Printf("ID:        %d\n", c.ID)
		fmt.Printf("Time:      %s\n", c.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Session:   %s\n", c.SessionID)
		fmt.Printf("Operation: %s\n", c.Operation)
		fmt.Printf("Backend:   %s\n", c.Backend)
		fmt.Printf("Latency:   %dms\n", c.LatencyMs)
		fmt.Printf("Success:   %v\n", c.Success)
		if c.ErrorMessage != "" {
			fmt.Printf("Error:     %s\n", c.ErrorMessage)
		}

		for _, part := range []struct{ title, body string }{
			{"REQUEST", c.RequestBody},
			{"RESPONSE", c.ResponseBody},
		} {
			fmt.Println()
			fmt.Println(sep)
			fmt.Println(part.title)
			fmt.Println(sep)
			if part.body != "" {
				fmt.Println(part.body)
			} else {
				fmt.Println("(not captured)")
			}
		}
		return nil
	},
}

var callsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show call counts, failures, and latency per operation",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		usage, err := s.Calls().UsageByOperation(cmd.Context(), store.QueryOpts{})
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(usage) == 0 {
			fmt.Println("No analysis calls recorded yet.")
			return nil
		}

		fmt.Println("Usage by Operation")
		fmt.Println(strings.Repeat("─", 56))
		fmt.Printf("%-16s  %6s  %8s  %10s\n", "Operation", "Calls", "Failures", "Avg Ms")
		fmt.Println(strings.Repeat("─", 56))

		var totalCalls, totalFailures int
		for _, u := range usage {
			fmt.Printf("%-16s  %6d  %8d  %10.1f\n", u.Operation, u.Calls, u.Failures, u.AvgLatencyMs)
			totalCalls += u.Calls
			totalFailures += u.Failures
		}
		fmt.Println(strings.Repeat("─", 56))
		fmt.Printf("%-16s  %6d  %8d\n", "TOTAL", totalCalls, totalFailures)
		return nil
	},
}

func init() {
	callsListCmd.Flags().Int("limit", 20, "Maximum number of calls to show")
	callsListCmd.Flags().String("op", "", "Only show one operation (scan_resume, generate_test, evaluate_test)")
	callsListCmd.Flags().String("session", "", "Only show calls for one session")
	callsListCmd.Flags().Bool("failed", false, "Only show failed calls")

	callsCmd.AddCommand(callsListCmd)
	callsCmd.AddCommand(callsViewCmd)
	callsCmd.AddCommand(callsStatsCmd)
}

func storeFromFlags(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return openStore(cfg)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
