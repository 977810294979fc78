package counsel

import (
	"fmt"
	"os"

	"github.com/innercanvas/innercanvas/internal/api"
	"github.com/innercanvas/innercanvas/internal/config"
)

// NewFromConfig selects the Counselor implementation. Remote is the default;
// the direct modes need an API key from config or environment.
func NewFromConfig(cfg *config.Config, client *api.Client) (Counselor, error) {
	switch cfg.Counselor {
	case "", "remote":
		return NewRemote(client), nil

	case "anthropic":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic counselor selected but no API key set")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-3-5-haiku-20241022"
		}
		return NewAnthropicCounselor(apiKey, model), nil

	case "openai":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("OPENAI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("openai counselor selected but no API key set")
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return NewOpenAICounselor(apiKey, model, os.Getenv("OPENAI_BASE_URL")), nil

	default:
		return nil, fmt.Errorf("unknown counselor mode: %s", cfg.Counselor)
	}
}
