package response

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/agent/jsonx"
	"store-locator-be/pkg/llm"
	"store-locator-be/pkg/store"
)

const module = "ANSWER"

// ContextLimit bounds how many stores are described to the model.
const ContextLimit = 8

const (
	FallbackReply      = "Đây là địa điểm gần bạn nhất mà mình tìm được."
	FallbackReplyEmpty = "Mình chưa tìm thấy địa điểm nào quanh đây. Bạn thử tìm kiếm lại hoặc mô tả rõ hơn nhé."
)

// Answer is the generated reply plus an optional recommended store id. The id
// is not checked against any list here.
type Answer struct {
	Reply       string
	BestStoreID *string
}

type rawAnswer struct {
	Reply       string      `json:"reply" validate:"required"`
	BestStoreID interface{} `json:"best_store_id"`
}

// Provider is the subset of llm.Chain the generator needs.
type Provider interface {
	ChatAccept(ctx context.Context, history []llm.Message, accept func(string) error, options ...llm.Option) (string, error)
}

// Generator writes the assistant reply from the session's store list.
type Generator struct {
	provider Provider
	logger   logger.ILogger
}

func NewGenerator(provider Provider, log logger.ILogger) *Generator {
	return &Generator{provider: provider, logger: log}
}

// Answer never fails: when every provider fails it returns the canned reply
// and the nearest store.
func (g *Generator) Answer(ctx context.Context, message string, stores []store.Store) Answer {
	if g.provider == nil {
		return Fallback(stores)
	}

	var parsed rawAnswer
	accept := func(out string) error {
		parsed = rawAnswer{}
		return jsonx.Decode(out, &parsed)
	}

	_, err := g.provider.ChatAccept(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(message, stores)},
	}, accept, llm.WithTemperature(0.4), llm.WithJSON(), llm.WithMaxTokens(400))
	if err != nil {
		g.logger.Warn(module, "Answer generation failed, using fallback", map[string]interface{}{"error": err.Error()})
		return Fallback(stores)
	}

	answer := Answer{Reply: strings.TrimSpace(parsed.Reply), BestStoreID: normalizeID(parsed.BestStoreID)}
	g.logger.Info(module, "Answer generated", map[string]interface{}{
		"reply_len":     len(answer.Reply),
		"best_store_id": answer.BestStoreID,
	})
	return answer
}

// Fallback recommends the nearest store, or nothing when the list is empty.
func Fallback(stores []store.Store) Answer {
	if len(stores) == 0 {
		return Answer{Reply: FallbackReplyEmpty}
	}
	nearest := 0
	for i := range stores {
		if stores[i].DistanceKm < stores[nearest].DistanceKm {
			nearest = i
		}
	}
	id := stores[nearest].ID
	return Answer{Reply: FallbackReply, BestStoreID: &id}
}

// normalizeID accepts string or numeric ids; anything else means no pick.
func normalizeID(v interface{}) *string {
	var id string
	switch t := v.(type) {
	case string:
		id = strings.TrimSpace(t)
	case float64:
		id = strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return nil
	}
	if id == "" || strings.EqualFold(id, "null") {
		return nil
	}
	return &id
}

const systemPrompt = "Bạn là trợ lý bản đồ thân thiện, giúp người dùng chọn cửa hàng gần họ. Chỉ dùng dữ liệu được cung cấp. Trả lời bằng JSON."

func buildPrompt(message string, stores []store.Store) string {
	var prompt strings.Builder

	prompt.WriteString("<stores>\n")
	if len(stores) == 0 {
		prompt.WriteString("(none found)\n")
	}
	for i, s := range stores {
		if i >= ContextLimit {
			break
		}
		prompt.WriteString(fmt.Sprintf("- id=%s | %s | %s | %.2f km | %.1f sao | %s | %s\n",
			s.ID, s.Name, s.TypeDisplay, s.DistanceKm, s.Rating, s.OpenHour, s.Description))
	}
	prompt.WriteString("</stores>\n\n")

	prompt.WriteString("<user_message>\n")
	prompt.WriteString(message)
	prompt.WriteString("\n</user_message>\n\n")

	prompt.WriteString("<rules>\n")
	prompt.WriteString("- Reply in the user's language, 1-3 short sentences.\n")
	prompt.WriteString("- Recommend at most ONE store and use its exact id from <stores>.\n")
	prompt.WriteString("- If nothing fits, set best_store_id to null.\n")
	prompt.WriteString("</rules>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("{\"reply\": \"...\", \"best_store_id\": \"id or null\"}\n")
	prompt.WriteString("</output_format>")

	return prompt.String()
}
