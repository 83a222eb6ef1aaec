// Package ai holds the vision and chat capabilities behind the public AI
// endpoints. Each capability has an upstream implementation and a local one;
// main picks one of them at startup.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

var ErrMissingInput = errors.New("imageUrl and checkpoint are required")

// ViolationTypes are the findings the local analyzer can report.
var ViolationTypes = []string{
	"Using phone on duty",
	"5S standard not met",
	"Sleeping on duty",
	"Climbing over fence",
	"Using phone while walking",
}

var violationDescriptions = map[string]string{
	"Using phone on duty":       "An employee is using a phone at the workstation, which is a safety hazard",
	"5S standard not met":       "The area is untidy and items are not stored according to standard",
	"Sleeping on duty":          "An employee is asleep at the post, seriously affecting work",
	"Climbing over fence":       "A person is climbing over the safety fence",
	"Using phone while walking": "An employee is using a phone while walking",
}

// DefaultDepartment is suggested for checkpoints missing from CheckpointDepartments.
const DefaultDepartment = "Production"

// CheckpointDepartments accepts both the English checkpoint names and the
// original site names the demo pages submit.
var CheckpointDepartments = map[string]string{
	"East gate - warehouse": "Production",
	"Workshop zone A":       "Production",
	"Maintenance room":      "Administration",
	"Supply depot":          "Administration",
	"Staff rest area":       "Production",

	"东门卫-仓库": "Production",
	"生产车间A区": "Production",
	"设备维修室":  "Administration",
	"物资储备库":  "Administration",
	"员工休息区":  "Production",
}

// SuggestDepartment maps a checkpoint name to the department that owns it.
func SuggestDepartment(checkpoint string) string {
	if d, ok := CheckpointDepartments[checkpoint]; ok {
		return d
	}
	return DefaultDepartment
}

type VisionRequest struct {
	ImageURL   string `json:"imageUrl"`
	Checkpoint string `json:"checkpoint"`
	DemoID     string `json:"demoId"`
}

func (r VisionRequest) Validate() error {
	if strings.TrimSpace(r.ImageURL) == "" || strings.TrimSpace(r.Checkpoint) == "" {
		return ErrMissingInput
	}
	return nil
}

type VisionResult struct {
	HasViolation        bool    `json:"hasViolation"`
	ViolationType       string  `json:"violationType"`
	Confidence          float64 `json:"confidence"`
	Description         string  `json:"description"`
	SuggestedDepartment string  `json:"suggestedDepartment"`
}

type Vision interface {
	Analyze(ctx context.Context, req VisionRequest) (VisionResult, error)
	Provider() string
	Model() string
}

// MockVision reports a random violation without looking at the image.
type MockVision struct {
	// Float64 returns values in [0,1). Defaults to math/rand.
	Float64 func() float64
}

func NewMockVision() *MockVision { return &MockVision{Float64: rand.Float64} }

func (m *MockVision) Provider() string { return "mock" }
func (m *MockVision) Model() string    { return "mock" }

func (m *MockVision) Analyze(_ context.Context, req VisionRequest) (VisionResult, error) {
	return m.result(req.Checkpoint), nil
}

func (m *MockVision) result(checkpoint string) VisionResult {
	f := m.Float64
	if f == nil {
		f = rand.Float64
	}
	i := int(f() * float64(len(ViolationTypes)))
	if i >= len(ViolationTypes) {
		i = len(ViolationTypes) - 1
	}
	v := ViolationTypes[i]
	return VisionResult{
		HasViolation:        true,
		ViolationType:       v,
		Confidence:          0.85 + f()*0.12,
		Description:         violationDescriptions[v],
		SuggestedDepartment: SuggestDepartment(checkpoint),
	}
}

const visionPrompt = `You are a factory inspection analyst. Analyze this surveillance image from the %q checkpoint.

Identify whether the image shows a violation and reply with JSON:
{
  "hasViolation": true/false,
  "violationType": "type of violation",
  "confidence": 0.0-1.0,
  "description": "details"
}`

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// OpenAIVision sends the image to an OpenAI-compatible chat completions
// endpoint. Replies without a parseable JSON object fall back to the mock.
type OpenAIVision struct {
	client   *openai.Client
	http     *http.Client
	model    string
	fallback *MockVision
}

func NewOpenAIVision(apiKey, baseURL, model string) *OpenAIVision {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIVision{
		client:   openai.NewClientWithConfig(cfg),
		http:     &http.Client{Timeout: 30 * time.Second},
		model:    model,
		fallback: NewMockVision(),
	}
}

func (v *OpenAIVision) Provider() string { return "openai-compatible" }
func (v *OpenAIVision) Model() string    { return v.model }

func (v *OpenAIVision) Analyze(ctx context.Context, req VisionRequest) (VisionResult, error) {
	dataURL, err := v.fetchImage(ctx, req.ImageURL)
	if err != nil {
		return VisionResult{}, err
	}
	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       v.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf(visionPrompt, req.Checkpoint)},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
			},
		}},
	})
	if err != nil {
		return VisionResult{}, fmt.Errorf("vision upstream: %w", err)
	}
	var text string
	if len(resp.Choices) > 0 {
		text = resp.Choices[0].Message.Content
	}
	if r, ok := parseVisionReply(text, req.Checkpoint); ok {
		return r, nil
	}
	return v.fallback.result(req.Checkpoint), nil
}

// maxImageBytes caps how much of an image is read before it is sent upstream.
var maxImageBytes int64 = 10 << 20

var ErrImageTooLarge = errors.New("image too large")

func (v *OpenAIVision) fetchImage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("image request: %w", err)
	}
	resp, err := v.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("fetch image: HTTP %d", resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if int64(len(b)) > maxImageBytes {
		return "", fmt.Errorf("%w: over %d bytes", ErrImageTooLarge, maxImageBytes)
	}
	mime := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

func parseVisionReply(text, checkpoint string) (VisionResult, bool) {
	m := jsonObject.FindString(text)
	if m == "" {
		return VisionResult{}, false
	}
	var parsed struct {
		HasViolation  *bool   `json:"hasViolation"`
		ViolationType string  `json:"violationType"`
		Confidence    float64 `json:"confidence"`
		Description   string  `json:"description"`
	}
	if err := json.Unmarshal([]byte(m), &parsed); err != nil {
		return VisionResult{}, false
	}
	r := VisionResult{
		ViolationType:       parsed.ViolationType,
		Confidence:          parsed.Confidence,
		Description:         parsed.Description,
		SuggestedDepartment: SuggestDepartment(checkpoint),
	}
	if parsed.HasViolation != nil {
		r.HasViolation = *parsed.HasViolation
	}
	if r.ViolationType == "" {
		r.ViolationType = "None"
	}
	if r.Confidence == 0 {
		r.Confidence = 0.8
	}
	if r.Description == "" {
		r.Description = "Analysis complete"
	}
	return r, true
}
