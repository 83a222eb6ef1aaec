package ai

import (
	"context"
	"encoding/json"

	"airdemo/internal/models"
	"airdemo/internal/store"

	"gorm.io/datatypes"
)

// Recorder writes an audit row per vision call.
type Recorder struct {
	st *store.Store
}

func NewRecorder(st *store.Store) *Recorder { return &Recorder{st: st} }

func (r *Recorder) RecordVision(ctx context.Context, v Vision, req VisionRequest, res VisionResult) error {
	opts, err := json.Marshal(map[string]string{"imageUrl": req.ImageURL})
	if err != nil {
		return err
	}
	out, err := json.Marshal(res)
	if err != nil {
		return err
	}
	t := &models.AITask{
		MediaType:  "vision",
		Provider:   v.Provider(),
		Model:      v.Model(),
		Prompt:     req.Checkpoint,
		Options:    datatypes.JSON(opts),
		Status:     models.AITaskStatusSuccess,
		TaskResult: datatypes.JSON(out),
		Scene:      "general",
	}
	if req.DemoID != "" {
		id := req.DemoID
		t.DemoID = &id
		t.Scene = id
	}
	return r.st.CreateAITask(ctx, t)
}
