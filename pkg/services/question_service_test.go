package services

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "questions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestQuestionServiceDocument(t *testing.T) {
	path := writeFile(t, `{"questions":[{"description":"a","options":[]},{"description":"b","options":[]}]}`)
	s := NewQuestionService(path, zap.NewNop())

	data, err := s.Document()
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("empty document")
	}

	count, err := s.GetQuestionCount()
	if err != nil || count != 2 {
		t.Fatalf("GetQuestionCount = %d, %v", count, err)
	}
	s.LogSummary()
}

func TestQuestionServiceInvalidDocument(t *testing.T) {
	s := NewQuestionService(writeFile(t, `{"questions": [`), zap.NewNop())
	if _, err := s.Document(); err == nil {
		t.Fatal("expected parse error")
	}

	missing := NewQuestionService(filepath.Join(t.TempDir(), "none.json"), zap.NewNop())
	if _, err := missing.Document(); err == nil {
		t.Fatal("expected read error")
	}
	missing.LogSummary()
}
