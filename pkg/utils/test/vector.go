package testutils

import (
	"context"

	"github.com/thinkbooklabs/thinkbook/pkg/vector"
)

// MockVectorDriver is a test vector driver
type MockVectorDriver struct {
	Documents []vector.Document
	Results   []vector.QueryResult

	// QueryErr causes Query to fail when set
	QueryErr error

	// GetErr causes Get to fail when set
	GetErr error

	Dropped bool
	Closed  bool
}

func NewMockVectorDriver() *MockVectorDriver {
	return &MockVectorDriver{
		Documents: make([]vector.Document, 0),
		Results:   make([]vector.QueryResult, 0),
	}
}

func (m *MockVectorDriver) Add(_ context.Context, docs []vector.Document) error {
	// Upsert semantics keyed on document ID
	for _, doc := range docs {
		replaced := false
		for i, existing := range m.Documents {
			if existing.ID == doc.ID {
				m.Documents[i] = doc
				replaced = true
				break
			}
		}
		if !replaced {
			m.Documents = append(m.Documents, doc)
		}
	}
	return nil
}

func (m *MockVectorDriver) Query(_ context.Context, _ []float32, topK int) ([]vector.QueryResult, error) {
	if m.QueryErr != nil {
		return nil, m.QueryErr
	}
	if len(m.Results) < topK {
		return m.Results, nil
	}
	return m.Results[:topK], nil
}

func (m *MockVectorDriver) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	var docs []vector.Document
	for _, id := range ids {
		for _, doc := range m.Documents {
			if doc.ID == id {
				docs = append(docs, doc)
			}
		}
	}
	return docs, nil
}

func (m *MockVectorDriver) Delete(_ context.Context, ids []string) error {
	for _, id := range ids {
		for i, doc := range m.Documents {
			if doc.ID == id {
				m.Documents = append(m.Documents[:i], m.Documents[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *MockVectorDriver) Drop(_ context.Context) error {
	m.Documents = nil
	m.Results = nil
	m.Dropped = true
	return nil
}

func (m *MockVectorDriver) Close() error {
	m.Closed = true
	return nil
}

// Ensure MockVectorDriver implements vector.VectorDriver
var _ vector.VectorDriver = (*MockVectorDriver)(nil)
