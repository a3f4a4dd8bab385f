package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-news-analytics/internal/analytics/config"
	"golang-news-analytics/internal/analytics/dto"
	"golang-news-analytics/pkg/logger"

	"google.golang.org/genai"
)

// ErrEmptyGeneration is returned when the provider answers with no text.
var ErrEmptyGeneration = errors.New("text generator returned empty content")

// TextGenerator produces free-form text from a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts dto.GenerationOptions) (string, error)
}

// geminiTextGenerator is a TextGenerator backed by the Google Gemini API.
type geminiTextGenerator struct {
	cfg    *config.Config
	logger *logger.Logger
	client *genai.Client
}

// NewGeminiTextGenerator creates a new instance of geminiTextGenerator.
func NewGeminiTextGenerator(cfg *config.Config, log *logger.Logger, client *genai.Client) TextGenerator {
	return &geminiTextGenerator{
		cfg:    cfg,
		logger: log,
		client: client,
	}
}

// Generate sends a single-turn prompt to Gemini.
func (g *geminiTextGenerator) Generate(ctx context.Context, prompt string, opts dto.GenerationOptions) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, "user"),
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: opts.MaxTokens,
	}
	if opts.Temperature > 0 {
		genCfg.Temperature = genai.Ptr(opts.Temperature)
	}
	if opts.TopK > 0 {
		genCfg.TopK = genai.Ptr(opts.TopK)
	}
	if opts.TopP > 0 {
		genCfg.TopP = genai.Ptr(opts.TopP)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Gemini.Model, contents, genCfg)
	if err != nil {
		g.logger.Error("Failed to generate content", logger.ErrorField(err), logger.StringField("model", g.cfg.Gemini.Model))
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyGeneration
	}
	g.logger.Debug("Gemini response", logger.IntField("chars", len(text)))
	return text, nil
}
