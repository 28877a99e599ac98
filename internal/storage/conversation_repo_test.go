package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestConversationRepo_History(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	repo := NewConversationRepo(db)
	ctx := context.Background()

	sessionID := uuid.New().String()
	if err := sessions.Insert(ctx, &SessionRecord{ID: sessionID, BookID: "book", Title: "t", QueryMode: "full-book"}); err != nil {
		t.Fatalf("Insert() session unexpected error: %v", err)
	}

	for i := 0; i < 3; i++ {
		queryID := fmt.Sprintf("%02d-%s", i, uuid.New().String())
		err := repo.InsertQuery(ctx, &QueryRecord{
			ID:        queryID,
			SessionID: sessionID,
			QueryText: fmt.Sprintf("question %d", i),
			QueryMode: "full-book",
		})
		if err != nil {
			t.Fatalf("InsertQuery() unexpected error: %v", err)
		}

		err = repo.InsertResponse(ctx, &ResponseRecord{
			ID:           uuid.New().String(),
			QueryID:      queryID,
			ResponseText: fmt.Sprintf("answer %d", i),
			Citations:    `[{"source_location":"chunk 1","content_excerpt":"..."}]`,
		})
		if err != nil {
			t.Fatalf("InsertResponse() unexpected error: %v", err)
		}
	}

	items, err := repo.History(ctx, sessionID)
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("History() = %d items, want 3", len(items))
	}
	for i, item := range items {
		if item.QueryText != fmt.Sprintf("question %d", i) {
			t.Errorf("History()[%d].QueryText = %q, want question %d", i, item.QueryText, i)
		}
		if item.ResponseText != fmt.Sprintf("answer %d", i) {
			t.Errorf("History()[%d].ResponseText = %q, want answer %d", i, item.ResponseText, i)
		}
	}
}

func TestConversationRepo_HistoryWithoutResponse(t *testing.T) {
	db := newTestDB(t)
	sessions := NewSessionRepo(db)
	repo := NewConversationRepo(db)
	ctx := context.Background()

	sessionID := uuid.New().String()
	if err := sessions.Insert(ctx, &SessionRecord{ID: sessionID, BookID: "book", Title: "t", QueryMode: "full-book"}); err != nil {
		t.Fatalf("Insert() session unexpected error: %v", err)
	}

	err := repo.InsertQuery(ctx, &QueryRecord{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		QueryText: "unanswered",
		QueryMode: "full-book",
	})
	if err != nil {
		t.Fatalf("InsertQuery() unexpected error: %v", err)
	}

	items, err := repo.History(ctx, sessionID)
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("History() = %d items, want 1", len(items))
	}
	if items[0].ResponseText != "" {
		t.Errorf("History() ResponseText = %q, want empty for unanswered query", items[0].ResponseText)
	}
	if items[0].Citations != "[]" {
		t.Errorf("History() Citations = %q, want empty list", items[0].Citations)
	}
}

func TestConversationRepo_HistoryEmpty(t *testing.T) {
	db := newTestDB(t)
	repo := NewConversationRepo(db)

	items, err := repo.History(context.Background(), "no-such-session")
	if err != nil {
		t.Fatalf("History() unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("History() = %d items, want 0", len(items))
	}
}
