package generator

import (
	"context"
	"errors"
)

// Agent 负责根据 Brief 生成要填入文档的文本。
type Agent struct {
	llm LLMClient
}

func NewAgent(llm LLMClient) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Agent{llm: llm}, nil
}

// Write generates the passage described by brief.
func (a *Agent) Write(ctx context.Context, brief Brief) (string, error) {
	if brief.Prompt == "" {
		return "", errors.New("prompt is required")
	}
	raw, err := a.llm.Complete(ctx, BuildPrompt(brief))
	if err != nil {
		return "", err
	}
	return PostProcess(raw)
}
