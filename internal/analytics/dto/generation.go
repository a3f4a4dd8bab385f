package dto

// GenerationOptions are the sampling parameters passed to the text generator.
type GenerationOptions struct {
	Temperature float32 `json:"temperature"`
	MaxTokens   int32   `json:"max_tokens"`
	TopK        float32 `json:"top_k"`
	TopP        float32 `json:"top_p"`
}

// PredictionResult is one item of a generated predictions reply.
type PredictionResult struct {
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
}

// StoryTextResult is the generated title/summary reply for a new story.
type StoryTextResult struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}
