// Package pricing holds the static model catalog: per-token prices and
// context-window sizes for the models vaultchat can target.
package pricing

// DefaultModel receives lookups for unknown model ids. Unknown models
// are billed and budgeted as if they were the default, never rejected.
const DefaultModel = "gpt-4o-mini"

// DefaultContextWindow is the conservative window assumed for models
// missing from the window table.
const DefaultContextWindow = 8192

// Entry describes one model in the catalog. Prices are USD per million
// tokens.
type Entry struct {
	ID            string
	Label         string
	InputUSDPerM  float64
	OutputUSDPerM float64
	Category      string
}

// catalog is the static price table. Local models run at zero cost.
var catalog = []Entry{
	{"gpt-5", "GPT-5 (Reasoning)", 1.25, 10.00, "openai"},
	{"gpt-5-mini", "GPT-5 Mini", 0.25, 2.00, "openai"},
	{"gpt-5-nano", "GPT-5 Nano", 0.05, 0.40, "openai"},
	{"gpt-4o", "GPT-4o", 2.50, 10.00, "openai"},
	{"gpt-4o-mini", "GPT-4o Mini", 0.15, 0.60, "openai"},
	{"gpt-4-turbo", "GPT-4 Turbo", 10.00, 30.00, "openai"},
	{"gpt-3.5-turbo", "GPT-3.5 Turbo", 0.50, 1.50, "openai"},

	{"claude-sonnet-4-5-20250929", "Claude Sonnet 4.5", 3.00, 15.00, "anthropic"},
	{"claude-haiku-4-5-20251001", "Claude Haiku 4.5", 1.00, 5.00, "anthropic"},
	{"claude-opus-4-1-20250805", "Claude Opus 4.1", 15.00, 75.00, "anthropic"},
	{"claude-3-5-haiku-20241022", "Claude 3.5 Haiku", 0.80, 4.00, "anthropic"},

	{"qwen3:8b", "Qwen 3 8B (Ollama)", 0, 0, "local"},
	{"qwen2.5:7b", "Qwen 2.5 7B (Ollama)", 0, 0, "local"},
	{"llama3.2:3b", "Llama 3.2 3B (Ollama)", 0, 0, "local"},
	{"phi3:mini", "Phi-3 Mini (Ollama)", 0, 0, "local"},
}

// contextWindows maps model ids to their maximum input token counts.
var contextWindows = map[string]int{
	"gpt-4":                      8192,
	"gpt-4-turbo":                128000,
	"gpt-4o":                     128000,
	"gpt-4o-mini":                128000,
	"gpt-5":                      200000,
	"gpt-5-mini":                 200000,
	"gpt-5-nano":                 200000,
	"claude-sonnet-4-5-20250929": 200000,
	"claude-haiku-4-5-20251001":  200000,
	"claude-opus-4-1-20250805":   200000,
	"claude-3-5-haiku-20241022":  200000,
}

// Catalog returns all known models in display order.
func Catalog() []Entry {
	out := make([]Entry, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for a model id, falling back to the
// default model's entry when the id is unknown.
func Lookup(id string) Entry {
	for _, e := range catalog {
		if e.ID == id {
			return e
		}
	}
	return Lookup(DefaultModel)
}

// PricesFor returns the (input, output) USD-per-million prices for a
// model, with default-model fallback.
func PricesFor(id string) (float64, float64) {
	e := Lookup(id)
	return e.InputUSDPerM, e.OutputUSDPerM
}

// ContextWindow returns the model's context window in tokens, or
// DefaultContextWindow for models not in the table.
func ContextWindow(model string) int {
	if w, ok := contextWindows[model]; ok {
		return w
	}
	return DefaultContextWindow
}
