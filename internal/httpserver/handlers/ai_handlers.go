package handlers

import (
	"net/http"
	"strings"

	"airdemo/internal/ai"
	"airdemo/internal/metrics"

	"go.uber.org/zap"
)

type chatReq struct {
	Message string `json:"message"`
}

func chatProvider(c ai.Chat) string {
	if _, ok := c.(*ai.HTTPChat); ok {
		return "http"
	}
	return "canned"
}

// Chat relays the message to the configured chat backend. Backend failures
// are answered with an apology rather than an error.
func Chat(chat ai.Chat, m *metrics.Metrics, lg *zap.SugaredLogger) http.HandlerFunc {
	provider := chatProvider(chat)
	return func(w http.ResponseWriter, r *http.Request) {
		var req chatReq
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			respondError(w, lg, ai.ErrMissingMessage)
			return
		}
		reply, err := chat.Reply(r.Context(), req.Message)
		if err != nil {
			lg.Warnw("chat backend failed", "provider", provider, "err", err)
			m.AICall("chat", provider, "fallback")
			respondData(w, ai.Apology())
			return
		}
		m.AICall("chat", provider, "ok")
		respondData(w, reply)
	}
}

// Vision analyses an inspection photo and records the call.
func Vision(vision ai.Vision, rec *ai.Recorder, m *metrics.Metrics, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ai.VisionRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, lg, err)
			return
		}
		if err := req.Validate(); err != nil {
			respondError(w, lg, err)
			return
		}
		res, err := vision.Analyze(r.Context(), req)
		if err != nil {
			m.AICall("vision", vision.Provider(), "error")
			lg.Errorw("vision analysis failed", "provider", vision.Provider(), "err", err)
			respondErr(w, http.StatusInternalServerError, "AI analysis failed: "+err.Error())
			return
		}
		m.AICall("vision", vision.Provider(), "ok")
		if err := rec.RecordVision(r.Context(), vision, req, res); err != nil {
			lg.Warnw("vision task not recorded", "err", err)
		}
		respondData(w, res)
	}
}
