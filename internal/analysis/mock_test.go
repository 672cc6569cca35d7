package analysis

import (
	"context"
	"errors"
	"testing"
)

func TestMockClient(t *testing.T) {
	m := NewMockClient().
		Enqueue(OpScanResume, MockReply{Scan: ScanResult{Skills: []string{"python"}}}).
		Enqueue(OpGenerateTest, MockReply{Err: &RemoteError{Op: OpGenerateTest, StatusCode: 400, Message: "nope"}})

	scan, err := m.ScanResume(context.Background(), "python dev")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scan.Skills) != 1 || scan.Skills[0] != "python" {
		t.Fatalf("unexpected skills: %v", scan.Skills)
	}

	var remote *RemoteError
	if _, err := m.GenerateTest(context.Background(), scan.Skills); !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}

	var te *TransportError
	if _, err := m.EvaluateTest(context.Background(), nil); !errors.As(err, &te) {
		t.Fatalf("expected TransportError from empty queue, got %v", err)
	}

	calls := m.Calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
	if calls[0].Op != OpScanResume || calls[0].Input[0] != "python dev" {
		t.Fatalf("unexpected first call: %+v", calls[0])
	}
}
