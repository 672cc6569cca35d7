package analysis

import (
	"context"
	"errors"
	"sync"
)

// MockReply is one canned reply. Only the field matching the operation is
// read.
type MockReply struct {
	Scan       ScanResult
	Test       TestResult
	Evaluation Evaluation
	Err        error
}

// MockCall records one invocation of MockClient.
type MockCall struct {
	Op    Op
	Input []string
}

// MockClient replays canned replies per operation in FIFO order and
// records every call. An empty queue yields a TransportError.
type MockClient struct {
	mu      sync.Mutex
	replies map[Op][]MockReply
	calls   []MockCall
}

// NewMockClient returns an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{replies: make(map[Op][]MockReply)}
}

// Enqueue adds replies for op.
func (m *MockClient) Enqueue(op Op, replies ...MockReply) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[op] = append(m.replies[op], replies...)
	return m
}

func (m *MockClient) ScanResume(_ context.Context, resumeText string) (ScanResult, error) {
	r, err := m.next(OpScanResume, []string{resumeText})
	return r.Scan, err
}

func (m *MockClient) GenerateTest(_ context.Context, skills []string) (TestResult, error) {
	r, err := m.next(OpGenerateTest, skills)
	return r.Test, err
}

func (m *MockClient) EvaluateTest(_ context.Context, answers []string) (Evaluation, error) {
	r, err := m.next(OpEvaluateTest, answers)
	return r.Evaluation, err
}

// Calls returns a copy of the recorded calls.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockClient) next(op Op, input []string) (MockReply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Op: op, Input: append([]string(nil), input...)})

	q := m.replies[op]
	if len(q) == 0 {
		return MockReply{}, &TransportError{Op: op, Err: errors.New("mock: no reply queued")}
	}
	r := q[0]
	m.replies[op] = q[1:]
	if r.Err != nil {
		return MockReply{}, r.Err
	}
	return r, nil
}
