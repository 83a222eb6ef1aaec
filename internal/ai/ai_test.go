package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"airdemo/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockVisionResultRanges(t *testing.T) {
	m := NewMockVision()
	for i := 0; i < 200; i++ {
		r, err := m.Analyze(context.Background(), VisionRequest{ImageURL: "x", Checkpoint: "Maintenance room"})
		require.NoError(t, err)
		assert.Contains(t, ViolationTypes, r.ViolationType)
		assert.GreaterOrEqual(t, r.Confidence, 0.85)
		assert.LessOrEqual(t, r.Confidence, 0.97)
		assert.Equal(t, "Administration", r.SuggestedDepartment)
		assert.True(t, r.HasViolation)
		assert.NotEmpty(t, r.Description)
	}
}

func TestMockVisionDeterministicWithInjectedRand(t *testing.T) {
	m := &MockVision{Float64: func() float64 { return 0.999999 }}
	r := m.result("unknown place")
	assert.Equal(t, ViolationTypes[4], r.ViolationType)
	assert.Equal(t, DefaultDepartment, r.SuggestedDepartment)
	assert.InDelta(t, 0.97, r.Confidence, 0.0001)

	m.Float64 = func() float64 { return 0 }
	r = m.result("Staff rest area")
	assert.Equal(t, ViolationTypes[0], r.ViolationType)
	assert.Equal(t, 0.85, r.Confidence)
}

func TestParseVisionReply(t *testing.T) {
	r, ok := parseVisionReply("Sure!\n```json\n{\"hasViolation\": true, \"violationType\": \"Sleeping on duty\", \"confidence\": 0.91}\n```", "Supply depot")
	require.True(t, ok)
	assert.Equal(t, VisionResult{
		HasViolation: true, ViolationType: "Sleeping on duty", Confidence: 0.91,
		Description: "Analysis complete", SuggestedDepartment: "Administration",
	}, r)

	r, ok = parseVisionReply(`{}`, "nowhere")
	require.True(t, ok)
	assert.False(t, r.HasViolation)
	assert.Equal(t, "None", r.ViolationType)
	assert.Equal(t, 0.8, r.Confidence)

	_, ok = parseVisionReply("no json here", "x")
	assert.False(t, ok)
	_, ok = parseVisionReply("{not json}", "x")
	assert.False(t, ok)
}

// fakeUpstream serves an image at /img.png and a chat completions endpoint.
func fakeUpstream(t *testing.T, reply string, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/img.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	mux.HandleFunc("/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "data:image/png;base64,iVBORw")
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"role": "assistant", "content": reply}}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIVision(t *testing.T) {
	srv := fakeUpstream(t, `{"hasViolation": false, "description": "all clear"}`, http.StatusOK)
	v := NewOpenAIVision("key", srv.URL, "test-model")
	r, err := v.Analyze(context.Background(), VisionRequest{ImageURL: srv.URL + "/img.png", Checkpoint: "Workshop zone A"})
	require.NoError(t, err)
	assert.False(t, r.HasViolation)
	assert.Equal(t, "all clear", r.Description)
	assert.Equal(t, "Production", r.SuggestedDepartment)
}

func TestOpenAIVisionFallsBackOnProse(t *testing.T) {
	srv := fakeUpstream(t, "I cannot tell.", http.StatusOK)
	v := NewOpenAIVision("key", srv.URL, "test-model")
	r, err := v.Analyze(context.Background(), VisionRequest{ImageURL: srv.URL + "/img.png", Checkpoint: "x"})
	require.NoError(t, err)
	assert.Contains(t, ViolationTypes, r.ViolationType)
}

func TestOpenAIVisionUpstreamError(t *testing.T) {
	srv := fakeUpstream(t, "", http.StatusBadGateway)
	v := NewOpenAIVision("key", srv.URL, "test-model")
	_, err := v.Analyze(context.Background(), VisionRequest{ImageURL: srv.URL + "/img.png", Checkpoint: "x"})
	assert.Error(t, err)

	_, err = v.Analyze(context.Background(), VisionRequest{ImageURL: srv.URL + "/missing.png", Checkpoint: "x"})
	assert.ErrorContains(t, err, "HTTP 404")
}

func TestOpenAIVisionRejectsOversizedImage(t *testing.T) {
	srv := fakeUpstream(t, `{"hasViolation": false}`, http.StatusOK)
	old := maxImageBytes
	maxImageBytes = 3
	t.Cleanup(func() { maxImageBytes = old })

	v := NewOpenAIVision("key", srv.URL, "test-model")
	_, err := v.Analyze(context.Background(), VisionRequest{ImageURL: srv.URL + "/img.png", Checkpoint: "x"})
	assert.ErrorIs(t, err, ErrImageTooLarge)
}

func TestSuggestDepartmentOriginalCheckpointNames(t *testing.T) {
	assert.Equal(t, "Administration", SuggestDepartment("设备维修室"))
	assert.Equal(t, "Administration", SuggestDepartment("物资储备库"))
	assert.Equal(t, "Production", SuggestDepartment("东门卫-仓库"))
	assert.Equal(t, "Administration", SuggestDepartment("Supply depot"))
	assert.Equal(t, DefaultDepartment, SuggestDepartment("unknown"))
}

func TestCannedChat(t *testing.T) {
	c := CannedChat{}
	got, err := c.Reply(context.Background(), "Tell me about TanTan please")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.(Answer).Answer, "Tantan"))

	got, _ = c.Reply(context.Background(), "where is the inspection demo?")
	assert.Contains(t, got.(Answer).Answer, "inspection")

	got, _ = c.Reply(context.Background(), "探探是做什么的？")
	assert.True(t, strings.HasPrefix(got.(Answer).Answer, "Tantan"))

	got, _ = c.Reply(context.Background(), "介绍一下睿睿")
	assert.True(t, strings.HasPrefix(got.(Answer).Answer, "Ruirui"))

	got, _ = c.Reply(context.Background(), "巡检演示在哪里")
	assert.Contains(t, got.(Answer).Answer, "inspection")

	got, _ = c.Reply(context.Background(), "hello")
	assert.Equal(t, Answer{Answer: DefaultAnswer}, got)
}

func TestHTTPChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["message"] == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"answer":"echo: ` + in["message"] + `"}`))
	}))
	defer srv.Close()

	c := NewHTTPChat(srv.URL)
	got, err := c.Reply(context.Background(), "hi")
	require.NoError(t, err)
	b, _ := json.Marshal(got)
	assert.JSONEq(t, `{"answer":"echo: hi"}`, string(b))

	_, err = c.Reply(context.Background(), "fail")
	assert.ErrorContains(t, err, "HTTP 500")
}

func TestRecorder(t *testing.T) {
	st := storetest.New(t)
	rec := NewRecorder(st)
	m := NewMockVision()
	req := VisionRequest{ImageURL: "http://img", Checkpoint: "Supply depot", DemoID: "inspection"}
	res, _ := m.Analyze(context.Background(), req)
	require.NoError(t, rec.RecordVision(context.Background(), m, req, res))

	rows, err := st.RecentAITasks(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "inspection", rows[0].Scene)
	assert.Equal(t, "mock", rows[0].Provider)
	assert.JSONEq(t, `{"imageUrl":"http://img"}`, string(rows[0].Options))
}
