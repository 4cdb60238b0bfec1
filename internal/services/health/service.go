package health

import (
	"context"
	"database/sql"
	"time"

	"novel-backend/internal/llm"
	"novel-backend/internal/shared/storage/db"
)

const pingTimeout = 2 * time.Second

// Service encapsulates health-related checks.
type Service struct {
	DB  *sql.DB
	LLM *llm.Router
}

func NewService(database *sql.DB, router *llm.Router) *Service {
	return &Service{DB: database, LLM: router}
}

// Status is the health payload. OK is false only when a configured database is unreachable.
type Status struct {
	OK              bool     `json:"ok"`
	Storage         string   `json:"storage"`
	DefaultProvider string   `json:"defaultProvider,omitempty"`
	Providers       []string `json:"providers"`
}

func (s *Service) Status(ctx context.Context) Status {
	st := Status{OK: true, Storage: "memory", Providers: []string{}}
	if s.DB != nil {
		st.Storage = "postgres"
		if err := db.Ping(ctx, s.DB, pingTimeout); err != nil {
			st.OK = false
			st.Storage = "unavailable"
		}
	}
	if s.LLM != nil {
		st.DefaultProvider = s.LLM.Default()
		st.Providers = s.LLM.Names()
	}
	return st
}
