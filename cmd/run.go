package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/resumebot/internal/app"
	"github.com/abhisek/resumebot/internal/resume"
	"github.com/abhisek/resumebot/internal/screens/assessment"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	var prefill string
	if path, _ := cmd.Flags().GetString("resume"); path != "" {
		text, err := resume.Load(path)
		if err != nil {
			return err
		}
		prefill = text
	}

	e, err := openEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := e.client(cmd.Context())
	if err != nil {
		return err
	}

	sessions := e.store.Sessions()
	opts := app.Options{
		Deps: assessment.Deps{
			Client:   client,
			Recorder: sessions,
			Logger:   e.logger,
		},
		Sessions: sessions,
		Backend:  e.cfg.Analysis.Backend,
		Prefill:  prefill,
	}

	if err := app.Run(opts); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
