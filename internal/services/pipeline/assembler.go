package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// assembleMessages builds the LLM conversation: system persona first,
// then history in order, one synthetic context turn carrying the
// retrieved material, and the user's prompt last.
func assembleMessages(history []*models.Message, articles []*models.Article, prompt string, historyLimit, charCap int) []interfaces.Message {
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[len(history)-historyLimit:]
	}

	messages := make([]interfaces.Message, 0, len(history)+3)
	messages = append(messages, interfaces.Message{
		Role:    "system",
		Content: personaPrompt,
	})

	for _, msg := range history {
		messages = append(messages, interfaces.Message{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	messages = append(messages, interfaces.Message{
		Role:    "user",
		Content: buildContextTurn(articles, charCap),
	})

	messages = append(messages, interfaces.Message{
		Role:    "user",
		Content: prompt,
	})

	return messages
}

// buildContextTurn renders the retrieved sources for the model. Articles
// with bodies are quoted up to the character cap; body-less articles
// contribute their title and URL only. With no articles at all the turn
// states that explicitly so the model doesn't invent citations.
func buildContextTurn(articles []*models.Article, charCap int) string {
	if len(articles) == 0 {
		return noResultsContext
	}

	var b strings.Builder
	b.WriteString("Reference material from a web search (do not mention this retrieval to the user; cite source URLs when you use them):\n")

	for i, article := range articles {
		fmt.Fprintf(&b, "\n[%d] %s\n%s\n", i+1, article.Title, article.URL)
		if !article.HasContent() {
			continue
		}
		content := article.Content
		if charCap > 0 && len(content) > charCap {
			// Back off to a rune boundary so the cut never splits a
			// multibyte character
			cut := charCap
			for cut > 0 && !utf8.RuneStart(content[cut]) {
				cut--
			}
			content = content[:cut]
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String()
}
