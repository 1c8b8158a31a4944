// Package diary turns one day's activity list into in-character prose via an
// OpenAI-compatible chat-completions endpoint (LM Studio by default). It is a
// pure consumer of the daily history: it never reads journals or snapshots.
package diary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mudguts/cmdrlog/internal/utils"
)

// Config controls how the diary generator behaves.
type Config struct {
	Endpoint    string
	Model       string
	APIKey      string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
}

const (
	defaultEndpoint    = "http://localhost:1234/v1/chat/completions"
	defaultMaxTokens   = 1200
	defaultTemperature = 0.7
)

type Generator struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	maxTokens   int
	client      httpClient
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

func NewGenerator(cfg Config) (*Generator, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, errors.New("diary generation requires a model name (set lmstudio.model in config)")
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 180 * time.Second}
	}
	return &Generator{
		endpoint:    endpoint,
		model:       model,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		temperature: temperature,
		maxTokens:   maxTokens,
		client:      client,
	}, nil
}

const systemPrompt = `You are Commander Toadie Mudguts, grizzled pilot of the Krait Mk II 'Rust Lancer'. This is your personal log. No summaries. No analysis. No 'thinking aloud'. Just your voice.`

// BuildMessages assembles the chat transcript for one day's log entry.
// Knowledge may be empty, in which case the lore section is omitted.
func BuildMessages(commander, date string, activities []string, knowledge string) []Message {
	compressed := CompressActivities(activities)

	var b strings.Builder
	fmt.Fprintf(&b, "=== LOG ENTRY: %s - %s ===\n\n", strings.ToUpper(commander), date)
	b.WriteString("Another day out in the black...\n\n")
	for _, line := range compressed {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	if knowledge != "" {
		b.WriteString("\nBits I heard around the station:\n")
		b.WriteString(knowledge)
		b.WriteString("\n")
	}
	b.WriteString("\nClose the log however you like. End with: [End of Log]")

	return []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// Generate produces the diary prose for one day.
func (g *Generator) Generate(ctx context.Context, commander, date string, activities []string, knowledge string) (string, error) {
	messages := BuildMessages(commander, date, activities, knowledge)

	reqBody := chatRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		TopP:        0.9,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	utils.Log.Debugf("[diary] requesting %s entry for %s (%d activities)", g.model, date, len(activities))
	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error.Message != "" {
			return "", fmt.Errorf("diary generation: %s", apiErr.Error.Message)
		}
		return "", fmt.Errorf("diary generation failed with HTTP %d", resp.StatusCode)
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", err
	}
	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return "", errors.New("diary generation returned an empty response")
	}
	return strings.TrimSpace(apiResp.Choices[0].Message.Content), nil
}

// Save writes a generated entry to <dir>/<date>.txt.
func Save(dir, date, content string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, date+".txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// compressThreshold is the group size above which repeated same-prefix lines
// collapse into one sampled line.
const compressThreshold = 3

// CompressActivities shrinks long runs of near-identical lines before they hit
// the prompt. Lines are grouped by leading verb; groups larger than the
// threshold collapse to "<prefix> (Nx): '<first line>'". Order of first
// appearance is preserved.
func CompressActivities(activities []string) []string {
	type group struct {
		lines []string
	}
	groups := make(map[string]*group)
	var order []string
	for _, act := range activities {
		prefix, _, _ := strings.Cut(strings.TrimSpace(act), " ")
		prefix = strings.TrimSuffix(prefix, ":")
		g, seen := groups[prefix]
		if !seen {
			g = &group{}
			groups[prefix] = g
			order = append(order, prefix)
		}
		g.lines = append(g.lines, act)
	}

	var out []string
	for _, prefix := range order {
		g := groups[prefix]
		if len(g.lines) > compressThreshold {
			out = append(out, fmt.Sprintf("%s (%dx): '%s'", prefix, len(g.lines), g.lines[0]))
			continue
		}
		out = append(out, g.lines...)
	}
	return out
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
