package httpapi

import (
	"context"
	"time"

	"gptbridge/internal/batch"
	"gptbridge/pkg/types"
)

// BatchService exposes a batch.Adapter as a Service.
type BatchService struct {
	adapter       *batch.Adapter
	defaultMaxOut int
	started       time.Time
}

// NewBatchService wraps a. defaultMaxOut is used when a request omits max_out_len.
func NewBatchService(a *batch.Adapter, defaultMaxOut int) *BatchService {
	return &BatchService{adapter: a, defaultMaxOut: defaultMaxOut, started: time.Now()}
}

func (s *BatchService) Generate(ctx context.Context, inputs []types.PromptItem, maxOutLen int) ([]string, error) {
	if maxOutLen <= 0 {
		maxOutLen = s.defaultMaxOut
	}
	return s.adapter.Generate(ctx, inputs, maxOutLen)
}

func (s *BatchService) Status() types.StatusResponse {
	cfg := s.adapter.Config()
	st := s.adapter.Stats()
	return types.StatusResponse{
		Tool:          cfg.Executable,
		Model:         cfg.Model,
		Workers:       cfg.Workers,
		SessionDir:    s.adapter.SessionDir(),
		Inflight:      st.Inflight,
		Completed:     st.Completed,
		Failed:        st.Failed,
		LastError:     st.LastError,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
}

func (s *BatchService) Ready() bool { return s.adapter != nil }
