package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/abhisek/resumebot/internal/analysis"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check that the analysis service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		url := cfg.Analysis.BaseURL
		if u, _ := cmd.Flags().GetString("url"); u != "" {
			url = u
		}

		timeout := cfg.Analysis.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		h, err := analysis.NewHTTPClient(url).Health(ctx)
		if err != nil {
			return fmt.Errorf("ping %s: %w", url, err)
		}
		fmt.Printf("%s: %s (version %s)\n", url, h.Status, h.Version)

		if warn := compatibility(version, h.Version); warn != "" {
			fmt.Println("warning:", warn)
		}
		return nil
	},
}

func init() {
	pingCmd.Flags().String("url", "", "Service base URL (overrides analysis.base_url)")
}

// compatibility reports a mismatch between the client's and the service's
// major versions. Unparseable versions are only flagged for the service.
func compatibility(client, service string) string {
	if !semver.IsValid(service) {
		return fmt.Sprintf("service reports non-semver version %q", service)
	}
	if !semver.IsValid(client) {
		return ""
	}
	if semver.Major(client) != semver.Major(service) {
		return fmt.Sprintf("client %s and service %s differ in major version", client, service)
	}
	return ""
}
