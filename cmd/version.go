package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("resumebot", version)
	},
}

// serviceVersion is the version reported by `serve` on /healthz. Dev
// builds report v0.0.0 so clients can still parse it.
func serviceVersion() string {
	if semver.IsValid(version) {
		return version
	}
	return "v0.0.0"
}
