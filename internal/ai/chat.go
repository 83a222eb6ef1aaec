package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var ErrMissingMessage = errors.New("message is required")

const (
	DefaultAnswer = "Got it. To learn more, open a demo from the cards on the home page."
	ApologyAnswer = "Sorry, I can't answer your question right now. Please try again later."
)

type Answer struct {
	Answer string `json:"answer"`
}

// Apology is what callers show when a chat backend fails.
func Apology() Answer { return Answer{Answer: ApologyAnswer} }

// Chat answers a user message. The reply is passed to the client as-is.
type Chat interface {
	Reply(ctx context.Context, message string) (interface{}, error)
}

type cannedAnswer struct {
	keywords []string
	answer   string
}

var cannedAnswers = []cannedAnswer{
	{[]string{"探探", "tantan"}, "Tantan runs interactive customer research and writes the research summary for you."},
	{[]string{"睿睿", "ruirui"}, "Ruirui helps with review reports: key quotes, stakeholder insights and the storyline."},
	{[]string{"巡检", "inspection"}, "Open the \"AI smart inspection\" card on the home page to try the demo."},
}

// CannedChat answers from a fixed keyword table. The first keyword found in
// the message wins.
type CannedChat struct{}

func (CannedChat) Reply(_ context.Context, message string) (interface{}, error) {
	lower := strings.ToLower(message)
	for _, c := range cannedAnswers {
		for _, kw := range c.keywords {
			if strings.Contains(message, kw) || strings.Contains(lower, strings.ToLower(kw)) {
				return Answer{Answer: c.answer}, nil
			}
		}
	}
	return Answer{Answer: DefaultAnswer}, nil
}

// HTTPChat forwards the message to an upstream endpoint and relays its JSON.
type HTTPChat struct {
	endpoint string
	client   *http.Client
}

func NewHTTPChat(endpoint string) *HTTPChat {
	return &HTTPChat{endpoint: endpoint, client: &http.Client{Timeout: 30 * time.Second}}
}

func (c *HTTPChat) Reply(ctx context.Context, message string) (interface{}, error) {
	body, err := json.Marshal(map[string]string{"message": message})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chat upstream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("chat upstream: HTTP %d", resp.StatusCode)
	}
	var out json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("chat upstream: decode: %w", err)
	}
	return out, nil
}
