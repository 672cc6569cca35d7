package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/resumebot/internal/screens/history"
	"github.com/abhisek/resumebot/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect past assessment sessions",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		sessions, err := s.Sessions().ListSessions(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-15s  %6s  %5s  %s\n",
			"ID", "Started", "Stage", "Skills", "Score", "Category")
		fmt.Println(strings.Repeat("─", 100))
		for _, r := range sessions {
			score := "-"
			if r.Score != nil {
				score = formatScore(*r.Score)
			}
			fmt.Printf("%-36s  %-19s  %-15s  %6d  %5s  %s\n",
				r.ID,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Stage,
				len(r.Skills),
				score,
				r.Category,
			)
		}
		return nil
	},
}

var historyViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show one session with its questions and answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := storeFromFlags(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		r, err := s.Sessions().GetSession(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		fmt.Printf("Started:   %s\n", r.StartedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:   %s\n", r.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Stage:     %s\n", r.Stage)
		fmt.Printf("Resume:    %d chars\n", r.ResumeChars)
		if r.Score != nil {
			fmt.Printf("Score:     %s%% (%s)\n", formatScore(*r.Score), r.Category)
		}
		fmt.Println()
		fmt.Println(history.Details(*r, 80))
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 20, "Maximum number of sessions to show")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyViewCmd)
}
