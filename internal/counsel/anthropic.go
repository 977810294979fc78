package counsel

import (
	"context"
	"fmt"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

// AnthropicCounselor runs the counseling prompts against the Anthropic API.
type AnthropicCounselor struct {
	client *anthropic.Client
	model  string
	convs  *memory
}

// NewAnthropicCounselor creates a direct-mode counselor.
func NewAnthropicCounselor(apiKey, model string) *AnthropicCounselor {
	return &AnthropicCounselor{
		client: anthropic.NewClient(apiKey),
		model:  model,
		convs:  newMemory(),
	}
}

func (c *AnthropicCounselor) complete(ctx context.Context, history []turn) (string, error) {
	msgs := make([]anthropic.Message, 0, len(history))
	for _, t := range history {
		role := anthropic.RoleUser
		if t.role == "assistant" {
			role = anthropic.RoleAssistant
		}
		msgs = append(msgs, anthropic.Message{
			Role:    role,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(t.content)},
		})
	}

	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		Messages:  msgs,
		MaxTokens: 1024,
		MultiSystem: []anthropic.MessageSystemPart{
			{Type: "text", Text: systemPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			text += *block.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response from anthropic")
	}
	return text, nil
}

func (c *AnthropicCounselor) Analyze(ctx context.Context, diaryText string, doodlePNG []byte) (Analysis, error) {
	prompt := analyzeUserPrompt(diaryText, doodlePNG != nil)
	raw, err := c.complete(ctx, []turn{{role: "user", content: prompt}})
	if err != nil {
		return Analysis{}, err
	}

	emotion, counseling := parseAnalysis(raw)
	id := c.convs.begin(prompt, raw)
	return Analysis{
		CounselingText: counseling,
		MainEmotion:    emotion,
		GuestSessionID: id,
	}, nil
}

func (c *AnthropicCounselor) Chat(ctx context.Context, ref ConversationRef, message string) (string, error) {
	key, history, ok := c.convs.lookup(ref)
	if !ok {
		return "", fmt.Errorf("no conversation for %+v; analyze an entry first", ref)
	}

	reply, err := c.complete(ctx, append(history, turn{role: "user", content: message}))
	if err != nil {
		return "", err
	}
	c.convs.extend(key, message, reply)
	return reply, nil
}
