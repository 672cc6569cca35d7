package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/resumebot/internal/resume"
	"github.com/abhisek/resumebot/internal/workflow"
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Run one assessment without the TUI",
	Long: `Scan a resume, generate a test, submit answers, and print the result.

Answers are read from a YAML list of strings, one per question in order.
Without --answers the generated questions are printed and no test is
submitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		resumePath, _ := cmd.Flags().GetString("resume")
		answersPath, _ := cmd.Flags().GetString("answers")
		output, _ := cmd.Flags().GetString("output")

		if output != "text" && output != "json" && output != "yaml" {
			return fmt.Errorf("unknown output format %q (want text, json, or yaml)", output)
		}

		text, err := resume.Load(resumePath)
		if err != nil {
			return err
		}

		var answers []string
		if answersPath != "" {
			answers, err = readAnswers(answersPath)
			if err != nil {
				return err
			}
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

		ctrl := workflow.New(client,
			workflow.WithLogger(e.logger),
			workflow.WithRecorder(e.store.Sessions()),
		)
		report, err := runAssessment(cmd.Context(), ctrl, text, answers, answersPath != "")
		if err != nil {
			return err
		}
		return writeReport(cmd.OutOrStdout(), output, report)
	},
}

func init() {
	assessCmd.Flags().String("resume", "", "Resume file (.txt, .md, .pdf, .docx)")
	assessCmd.Flags().String("answers", "", "YAML file with one answer per question")
	assessCmd.Flags().StringP("output", "o", "text", "Output format: text, json, or yaml")
	_ = assessCmd.MarkFlagRequired("resume")
}

type questionAnswer struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer,omitempty" yaml:"answer,omitempty"`
}

type assessReport struct {
	Session   string           `json:"session" yaml:"session"`
	Skills    []string         `json:"skills" yaml:"skills"`
	Questions []questionAnswer `json:"questions,omitempty" yaml:"questions,omitempty"`
	Score     *float64         `json:"score,omitempty" yaml:"score,omitempty"`
	Category  string           `json:"category,omitempty" yaml:"category,omitempty"`
}

func readAnswers(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	var answers []string
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return answers, nil
}

// runAssessment drives ctrl through the whole workflow. A remote failure
// recorded on the view is returned as an error. Extra answers are ignored;
// missing ones stay empty.
func runAssessment(ctx context.Context, ctrl *workflow.Controller, text string, answers []string, submit bool) (assessReport, error) {
	if err := step(ctrl, ctrl.SubmitResume(ctx, text)); err != nil {
		return assessReport{}, err
	}

	v := ctrl.View()
	report := assessReport{Session: v.SessionID, Skills: v.Skills}
	if v.NoSkillsDetected() {
		return report, nil
	}

	if err := step(ctrl, ctrl.GenerateTest(ctx)); err != nil {
		return report, err
	}
	v = ctrl.View()
	for i, q := range v.Questions {
		if i < len(answers) {
			if err := ctrl.SetAnswer(i, answers[i]); err != nil {
				return report, err
			}
		}
		report.Questions = append(report.Questions, questionAnswer{Question: q})
	}
	if !submit {
		return report, nil
	}

	if err := step(ctrl, ctrl.SubmitTest(ctx)); err != nil {
		return report, err
	}
	v = ctrl.View()
	for i := range report.Questions {
		report.Questions[i].Answer = v.Answers[i]
	}
	if v.Result != nil {
		score := v.Result.Score
		report.Score = &score
		report.Category = v.Result.Category
	}
	return report, nil
}

// step turns a precondition error or a recorded remote failure into an error.
func step(ctrl *workflow.Controller, err error) error {
	if err != nil {
		return err
	}
	if msg := ctrl.View().LastError; msg != "" {
		return errors.New(msg)
	}
	return nil
}

func writeReport(w io.Writer, format string, r assessReport) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	}

	if len(r.Skills) == 0 {
		fmt.Fprintln(w, "No skills detected. Please try uploading your resume again.")
		return nil
	}
	fmt.Fprintln(w, "Detected Skills:")
	for _, s := range r.Skills {
		fmt.Fprintf(w, "  • %s\n", s)
	}

	if len(r.Questions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Skill Test:")
		for i, qa := range r.Questions {
			fmt.Fprintf(w, "  %d. %s\n", i+1, qa.Question)
			if qa.Answer != "" {
				fmt.Fprintf(w, "     > %s\n", qa.Answer)
			}
		}
	}

	if r.Score != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Test Results:")
		fmt.Fprintf(w, "  Score: %s%%\n", formatScore(*r.Score))
		fmt.Fprintf(w, "  Category: %s\n", r.Category)
	}
	return nil
}

func formatScore(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
