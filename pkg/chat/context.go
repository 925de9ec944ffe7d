package chat

import (
	"fmt"
	"strings"

	"policy-intel-be/internal/constant"
	"policy-intel-be/internal/entity"
	"policy-intel-be/internal/repository/contract"
	"policy-intel-be/pkg/llm"
)

// buildContextBlock formats retrieval results in rank order. Each excerpt is
// headed with the metadata the model needs to cite it.
func buildContextBlock(results []*contract.ChunkSearchResult) string {
	if len(results) == 0 {
		return constant.ChatNoContextBlock
	}

	var sb strings.Builder
	for i, res := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		pages := fmt.Sprintf("Page %d", res.StartPage)
		if res.EndPage > res.StartPage {
			pages = fmt.Sprintf("Page %d-%d", res.StartPage, res.EndPage)
		}
		fmt.Fprintf(&sb, "[Document: %s, %s, Section: %s]\n%s", res.DocumentName, pages, res.SectionType, res.Text)
	}
	return sb.String()
}

// buildHistory converts the most recent stored turns into LLM messages,
// keeping at most ChatHistoryLimit messages and truncating long bodies.
func buildHistory(messages []*entity.ChatMessage) []llm.Message {
	if len(messages) > constant.ChatHistoryLimit {
		messages = messages[len(messages)-constant.ChatHistoryLimit:]
	}

	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		content := msg.Content
		if len(content) > constant.ChatHistoryMaxChars {
			content = content[:constant.ChatHistoryMaxChars] + "..."
		}
		history = append(history, llm.Message{Role: msg.Role, Content: content})
	}
	return history
}

// buildUserTurn packs the context block and the new question into the final
// user message.
func buildUserTurn(contextBlock, question string) string {
	var sb strings.Builder
	sb.WriteString("<context>\n")
	sb.WriteString(contextBlock)
	sb.WriteString("\n</context>\n\n")
	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}
