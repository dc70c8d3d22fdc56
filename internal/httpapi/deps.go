package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/pipeline"
	"leadhunt-engine/internal/store"
)

// Runner is the slice of the orchestrator the API drives.
type Runner interface {
	Run(ctx context.Context, workflow string) ([]pipeline.Report, error)
	Running() bool
	Status() pipeline.Status
}

type Counter interface {
	Counts(ctx context.Context) (map[store.Kind]int64, error)
}

type Deps struct {
	Runner Runner
	Hub    *events.Hub
	Store  Counter
	Search Pinger // optional; enables /health?deep=1
	DB     *sql.DB // optional; enables /db/checkpoint

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string

	// BaseCtx outlives requests; runs started over HTTP use it.
	BaseCtx context.Context

	AllowedOrigins []string

	ShutdownToken string
	Shutdown      func() // optional; enables POST /shutdown
}
