package anthropic

// BuildSystemBlocks splits the system prompt into its fixed instructions and
// the data context. When cache is set the context block carries an ephemeral
// cache breakpoint, so repeated questions against the same tables reuse it.
func BuildSystemBlocks(instructions, context string, cache bool) []SystemBlock {
	var blocks []SystemBlock
	if instructions != "" {
		blocks = append(blocks, SystemBlock{Text: instructions})
	}
	if context == "" {
		return blocks
	}
	block := SystemBlock{Text: context}
	if cache {
		block.CacheControl = &CacheControl{TTL: "5m"}
	}
	return append(blocks, block)
}
