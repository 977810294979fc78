package counsel

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAICounselor runs the counseling prompts against the OpenAI API or any
// OpenAI-compatible endpoint.
type OpenAICounselor struct {
	client *openai.Client
	model  string
	convs  *memory
}

// NewOpenAICounselor creates a direct-mode counselor. baseURL may be empty.
func NewOpenAICounselor(apiKey, model, baseURL string) *OpenAICounselor {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAICounselor{
		client: openai.NewClientWithConfig(config),
		model:  model,
		convs:  newMemory(),
	}
}

func (c *OpenAICounselor) complete(ctx context.Context, history []turn) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.role == "assistant" {
			role = openai.ChatMessageRoleAssistant
		}
		msgs = append(msgs, openai.ChatCompletionMessage{Role: role, Content: t.content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAICounselor) Analyze(ctx context.Context, diaryText string, doodlePNG []byte) (Analysis, error) {
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

func (c *OpenAICounselor) Chat(ctx context.Context, ref ConversationRef, message string) (string, error) {
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
