package llm

// EstimateTokens provides a fast, character-based estimation of token count.
// Review planning only needs a ballpark figure for cost display and the
// oversize-file cutoff.
func EstimateTokens(text string) int {
	return len(text) / 3
}

// ModelCost describes per-block pricing for a model.
type ModelCost struct {
	BlockSize      int
	InputPerBlock  float64
	OutputPerBlock float64
}

// modelCosts holds USD pricing per token block for the models the tool is
// typically run with.
var modelCosts = map[string]ModelCost{
	"gpt-4o":             {BlockSize: 1000, InputPerBlock: 0.0025, OutputPerBlock: 0.01},
	"gpt-4o-mini":        {BlockSize: 1000, InputPerBlock: 0.00015, OutputPerBlock: 0.0006},
	"gpt-4-turbo":        {BlockSize: 1000, InputPerBlock: 0.01, OutputPerBlock: 0.03},
	"gpt-4-1106-preview": {BlockSize: 1000, InputPerBlock: 0.01, OutputPerBlock: 0.03},
}

// Cost estimates the USD cost of a review for the given model. The second
// return value is false when no pricing is known for the model.
func Cost(model string, inputTokens, outputTokens int) (float64, bool) {
	pricing, ok := modelCosts[model]
	if !ok {
		return 0, false
	}
	cost := (pricing.InputPerBlock*float64(inputTokens) +
		pricing.OutputPerBlock*float64(outputTokens)) / float64(pricing.BlockSize)
	return cost, true
}
