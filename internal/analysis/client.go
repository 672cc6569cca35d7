// Package analysis defines the contract to the remote résumé analysis
// service and ships the HTTP client plus decorators around it.
package analysis

import "context"

// Op names one of the three remote operations. The values double as the
// HTTP endpoint paths.
type Op string

const (
	OpScanResume   Op = "scan_resume"
	OpGenerateTest Op = "generate_test"
	OpEvaluateTest Op = "evaluate_test"
)

// Client is the remote analysis service. Implementations are opaque to
// the workflow: how skills are found, questions chosen, or answers scored
// is their business.
type Client interface {
	ScanResume(ctx context.Context, resumeText string) (ScanResult, error)
	GenerateTest(ctx context.Context, skills []string) (TestResult, error)
	EvaluateTest(ctx context.Context, answers []string) (Evaluation, error)
}

// ScanResult lists the skills detected in a résumé, in service order.
type ScanResult struct {
	Skills []string `json:"skills"`
}

// TestResult holds the generated questions. The wire key is "test".
type TestResult struct {
	Questions []string `json:"test"`
}

// Evaluation is the scored outcome of a submitted test.
type Evaluation struct {
	Score    float64 `json:"score"`
	Category string  `json:"category"`
}
