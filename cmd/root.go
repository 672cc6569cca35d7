package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "resumebot",
	Short: "Resume skill assessment",
	Long:  "resumebot scans a resume for skills, generates a short test on them, and scores your answers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/resumebot/config.yaml)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides RESUMEBOT_DB)")
	rootCmd.PersistentFlags().String("backend", "", "Analysis backend: http, local, or llm (overrides analysis.backend)")
	rootCmd.Flags().String("resume", "", "Prefill the first assessment from a .txt, .md, .pdf, or .docx file")

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(callsCmd)
	rootCmd.AddCommand(pingCmd)
	rootCmd.AddCommand(versionCmd)
}
