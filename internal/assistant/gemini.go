// Package assistant answers sidebar chat messages with a hosted model.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
	"pkt.systems/lumina/internal/logx"
	"pkt.systems/lumina/schema"
	"pkt.systems/pslog"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-3-flash-preview"
	// DefaultTimeout bounds a single reply.
	DefaultTimeout = 60 * time.Second
	// SystemInstruction frames every conversation.
	SystemInstruction = "You are Lumina, the native AI engine of the Lumina Web Browser. " +
		"You are helpful, concise, and professional. You provide web summaries, technical explanations, " +
		"and browsing assistance. Use markdown for formatting."
)

// Config configures the Gemini assistant.
type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Logger  pslog.Logger
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini implements core.Assistant on the Gemini API.
type Gemini struct {
	models  contentGenerator
	model   string
	timeout time.Duration
	logger  pslog.Logger
}

// NewGemini creates a client for the Gemini API.
func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key: %w", schema.ErrAssistantUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newGemini(client.Models, cfg), nil
}

func newGemini(models contentGenerator, cfg Config) *Gemini {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = pslog.Ctx(context.Background())
	}
	return &Gemini{
		models:  models,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  cfg.Logger.With("model", cfg.Model),
	}
}

// Prompt frames the user's message with the page being viewed.
func Prompt(req schema.AssistantRequest) string {
	return fmt.Sprintf("Context: The user is browsing %s. User query: %s", req.PageURL, req.UserText)
}

// Reply asks the model about the current page. An empty answer is returned as
// is; the session substitutes its own placeholder.
func (g *Gemini) Reply(ctx context.Context, req schema.AssistantRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	log := logx.WithURL(g.logger, req.PageURL)
	start := time.Now()
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(Prompt(req)), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	})
	if err != nil {
		log.Warn("assistant reply failed", "err", err, "took", time.Since(start))
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	text := resp.Text()
	log.Debug("assistant reply", "reply_len", len(text), "took", time.Since(start))
	return text, nil
}
