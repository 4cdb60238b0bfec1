package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"novel-backend/internal/llm"
)

func TestStatusMemoryStorage(t *testing.T) {
	router := llm.NewRouter("mock")
	router.Register("mock", llm.NewMockClient())

	st := NewService(nil, router).Status(context.Background())
	if !st.OK || st.Storage != "memory" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.DefaultProvider != "mock" || len(st.Providers) != 1 {
		t.Fatalf("unexpected providers: %+v", st)
	}
}

func TestStatusDatabaseDown(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	st := NewService(db, nil).Status(context.Background())
	if st.OK || st.Storage != "unavailable" {
		t.Fatalf("expected unavailable storage, got %+v", st)
	}
}
