package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	System string
	User   string
}

// BuildPrompt asks for a passage that is pasted into a document as-is.
func BuildPrompt(brief Brief) Prompt {
	var sb strings.Builder
	sb.WriteString("You write short passages that are inserted verbatim into a report document.\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("- Output only the passage: no title, no preamble, no closing remarks.\n")
	sb.WriteString("- Plain prose; avoid headings, tables and code blocks.\n")
	if brief.Words > 0 {
		sb.WriteString(fmt.Sprintf("- About %d words.\n", brief.Words))
	}
	if brief.Tone != "" {
		sb.WriteString(fmt.Sprintf("- Tone: %s.\n", brief.Tone))
	}

	return Prompt{
		System: sb.String(),
		User:   strings.TrimSpace(brief.Prompt),
	}
}
