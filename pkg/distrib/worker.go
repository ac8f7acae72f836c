package distrib

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"qzft/pkg/field"
	"qzft/pkg/zeta"
)

// RunWorker subscribes to the chunk subject as part of the worker queue
// group and serves evaluation requests until ctx is done. Each request is
// evaluated with a fresh evaluator sized to the grid's imaginary range; a
// point that fails degrades to the magnitude floor and is reported back in
// the response rather than aborting the chunk.
func RunWorker(ctx context.Context, nc *nats.Conn, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	sub, err := nc.QueueSubscribe(SubjectEvalChunk, WorkerQueue, func(msg *nats.Msg) {
		var req ChunkRequest
		if err := json.Unmarshal(msg.Data, &req); err != nil {
			logger.Error("bad chunk request", zap.Error(err))
			respond(msg, logger, ChunkResponse{Error: "malformed chunk request"})
			return
		}
		logger.Debug("evaluating chunk",
			zap.Int("startRow", req.StartRow),
			zap.Int("rows", len(req.T)), zap.Int("cols", len(req.Sigma)))
		respond(msg, logger, evalChunk(req))
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	logger.Info("worker ready", zap.String("subject", SubjectEvalChunk), zap.String("queue", WorkerQueue))
	<-ctx.Done()
	return ctx.Err()
}

func evalChunk(req ChunkRequest) ChunkResponse {
	if len(req.Sigma) == 0 || len(req.T) == 0 {
		return ChunkResponse{Error: "empty chunk"}
	}
	ev := zeta.NewEvaluator(req.MaxAbsT)
	resp := ChunkResponse{
		StartRow:   req.StartRow,
		Magnitudes: make([]float64, 0, len(req.T)*len(req.Sigma)),
	}
	for i, t := range req.T {
		for j, sigma := range req.Sigma {
			m, err := ev.Magnitude(sigma, t)
			if err != nil {
				m = field.MagnitudeFloor
				resp.Degraded = append(resp.Degraded, zeta.Point{Row: req.StartRow + i, Col: j})
			}
			if m < field.MagnitudeFloor {
				m = field.MagnitudeFloor
			}
			resp.Magnitudes = append(resp.Magnitudes, m)
		}
	}
	return resp
}

func respond(msg *nats.Msg, logger *zap.Logger, resp ChunkResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		logger.Error("marshal chunk response", zap.Error(err))
		return
	}
	if err := msg.Respond(data); err != nil {
		logger.Error("respond to chunk request", zap.Error(err))
	}
}
