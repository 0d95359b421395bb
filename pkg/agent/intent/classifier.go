package intent

import (
	"context"
	"strings"
	"unicode"

	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/agent/jsonx"
	"store-locator-be/pkg/llm"
)

const module = "INTENT"

// Action constants
const (
	ActionChat   = "CHAT"
	ActionSearch = "SEARCH"
)

// MaxKeywordRunes caps a sanitized keyword.
const MaxKeywordRunes = 40

// Intent is the classified request. Keyword is non-empty iff Action is SEARCH.
type Intent struct {
	Action  string `json:"action"`
	Keyword string `json:"keyword,omitempty"`
}

// IsSearch reports whether the intent asks for a new search.
func (i Intent) IsSearch() bool {
	return i.Action == ActionSearch && i.Keyword != ""
}

// Chat is the safe default.
func Chat() Intent {
	return Intent{Action: ActionChat}
}

type rawIntent struct {
	Action  string `json:"action" validate:"required,oneof=CHAT SEARCH chat search"`
	Keyword string `json:"keyword"`
}

// Provider is the subset of llm.Chain the classifier needs.
type Provider interface {
	ChatAccept(ctx context.Context, history []llm.Message, accept func(string) error, options ...llm.Option) (string, error)
}

// Classifier decides whether a chat message asks for a new kind of place.
type Classifier struct {
	provider Provider
	logger   logger.ILogger
}

func NewClassifier(provider Provider, log logger.ILogger) *Classifier {
	return &Classifier{provider: provider, logger: log}
}

// Classify never fails: any provider or parse problem yields CHAT.
func (c *Classifier) Classify(ctx context.Context, message string) Intent {
	message = strings.TrimSpace(message)
	if message == "" || c.provider == nil {
		return Chat()
	}

	var parsed rawIntent
	accept := func(out string) error {
		parsed = rawIntent{}
		return jsonx.Decode(out, &parsed)
	}

	_, err := c.provider.ChatAccept(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(message)},
	}, accept, llm.WithTemperature(0.0), llm.WithJSON(), llm.WithMaxTokens(100))
	if err != nil {
		c.logger.Warn(module, "Classification failed, defaulting to CHAT", map[string]interface{}{"error": err.Error()})
		return Chat()
	}

	result := normalize(parsed)
	c.logger.Info(module, "Message classified", map[string]interface{}{
		"action":  result.Action,
		"keyword": result.Keyword,
	})
	return result
}

func normalize(r rawIntent) Intent {
	if !strings.EqualFold(r.Action, ActionSearch) {
		return Chat()
	}
	kw := SanitizeKeyword(r.Keyword)
	if kw == "" {
		return Chat()
	}
	return Intent{Action: ActionSearch, Keyword: kw}
}

// SanitizeKeyword lower-cases the keyword and keeps only letters, digits,
// spaces, '-' and '_', collapsing runs of whitespace.
func SanitizeKeyword(kw string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(kw) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if runes := []rune(out); len(runes) > MaxKeywordRunes {
		out = strings.TrimSpace(string(runes[:MaxKeywordRunes]))
	}
	return out
}

const systemPrompt = "You classify messages sent to a store-finder map assistant. You never answer the user. Respond with JSON only."

func buildPrompt(message string) string {
	var prompt strings.Builder

	prompt.WriteString("<user_message>\n")
	prompt.WriteString(message)
	prompt.WriteString("\n</user_message>\n\n")

	prompt.WriteString("<intent_definitions>\n")
	prompt.WriteString("SEARCH: the user asks for a NEW kind of place that may not be on the map yet\n")
	prompt.WriteString("  - e.g. 'Tìm trạm xăng', 'có tiệm thuốc nào gần đây không', 'find a bank'\n")
	prompt.WriteString("  - keyword: ONE short English OpenStreetMap tag value for that place (fuel, pharmacy, bank, cafe, restaurant, supermarket, mobile_phone)\n\n")
	prompt.WriteString("CHAT: anything else, including questions about places already shown\n")
	prompt.WriteString("  - e.g. 'quán nào gần nhất?', 'chỗ nào mở cửa khuya?', 'cảm ơn'\n")
	prompt.WriteString("</intent_definitions>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("{\"action\": \"SEARCH|CHAT\", \"keyword\": \"only when SEARCH\"}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}
