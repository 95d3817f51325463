package generator

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingLLM struct {
	reply  string
	err    error
	prompt Prompt
}

func (r *recordingLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	r.prompt = prompt
	return r.reply, r.err
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"Plain text", "  Sales grew 4%.\n", "Sales grew 4%.", false},
		{"Fenced", "```\nSales grew 4%.\n```", "Sales grew 4%.", false},
		{"Fenced with language", "```markdown\n**Sales** grew.\n```", "**Sales** grew.", false},
		{"Inner fence kept", "Use `go test` to check.", "Use `go test` to check.", false},
		{"Empty", " \n ", "", true},
		{"Empty fence", "```\n```", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PostProcess(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PostProcess() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("PostProcess() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt(Brief{Prompt: "  Summarize Q3 ", Words: 50, Tone: "formal"})
	if p.User != "Summarize Q3" {
		t.Errorf("User = %q", p.User)
	}
	for _, want := range []string{"About 50 words", "Tone: formal"} {
		if !strings.Contains(p.System, want) {
			t.Errorf("System prompt missing %q:\n%s", want, p.System)
		}
	}
	if strings.Contains(BuildPrompt(Brief{Prompt: "x"}).System, "words") {
		t.Error("word limit present without Words")
	}
}

func TestAgentWrite(t *testing.T) {
	llm := &recordingLLM{reply: "```\nRevenue is up.\n```"}
	agent, err := NewAgent(llm)
	if err != nil {
		t.Fatal(err)
	}
	got, err := agent.Write(context.Background(), Brief{Prompt: "How is revenue?"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Revenue is up." {
		t.Errorf("Write() = %q", got)
	}
	if llm.prompt.User != "How is revenue?" {
		t.Errorf("prompt.User = %q", llm.prompt.User)
	}

	llm.err = errors.New("rate limited")
	if _, err := agent.Write(context.Background(), Brief{Prompt: "again"}); !errors.Is(err, llm.err) {
		t.Errorf("Write() error = %v, want %v", err, llm.err)
	}
	if _, err := agent.Write(context.Background(), Brief{}); err == nil {
		t.Error("Write() with empty prompt: error = nil")
	}
}

func TestNewAgentRequiresLLM(t *testing.T) {
	if _, err := NewAgent(nil); err == nil {
		t.Error("NewAgent(nil) error = nil")
	}
}

func TestNewLLM(t *testing.T) {
	tests := []struct {
		name     string
		settings *LLMSettings
		wantErr  bool
	}{
		{"Missing", nil, true},
		{"Mock", &LLMSettings{Provider: "mock"}, false},
		{"OpenAI", &LLMSettings{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test"}, false},
		{"OpenAI without key", &LLMSettings{Provider: "openai", Model: "gpt-4o-mini"}, true},
		{"DeepSeek without base_url", &LLMSettings{Provider: "deepseek", Model: "deepseek-chat", APIKey: "k"}, true},
		{"Unknown provider", &LLMSettings{Provider: "other"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLM(tt.settings)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewLLM() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMockLLMThroughAgent(t *testing.T) {
	agent, _ := NewAgent(MockLLM{})
	got, err := agent.Write(context.Background(), Brief{Prompt: "status"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "Generated for: status" {
		t.Errorf("Write() = %q", got)
	}
}
