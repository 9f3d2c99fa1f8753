package llm

// pricing is USD per million tokens.
type pricing struct {
	input, output float64
}

var modelPricing = map[string]pricing{
	"gemini-2.0-flash-lite":    {0.075, 0.30},
	"gemini-2.0-flash":         {0.10, 0.40},
	"gemini-1.5-flash":         {0.075, 0.30},
	"gemini-1.5-pro":           {1.25, 5.00},
	"gpt-4o-mini":              {0.15, 0.60},
	"gpt-4o":                   {2.50, 10.00},
	"gpt-4-turbo":              {10.00, 30.00},
	"claude-3-5-haiku-latest":  {0.80, 4.00},
	"claude-sonnet-4-20250514": {3.00, 15.00},
}

// CalculateCost estimates the price of one call. Unknown and local models
// cost zero.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := modelPricing[model]
	if !ok {
		return 0
	}
	return (float64(inputTokens)*p.input + float64(outputTokens)*p.output) / 1e6
}
