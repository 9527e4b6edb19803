package llmcontext

import "strings"

// Instructions is the fixed part of the system prompt.
const Instructions = `You are a helpful assistant that answers questions about water supply risk levels and potential new home construction in UK local authority districts.
You have access to forecast data for all years, given below.

Please provide accurate and concise answers based on this data.
When discussing trends or changes, consider the full range of available years.
You can also discuss:
- Trends (improving, deteriorating, or stable)
- 5-year percentage changes
- Risk level changes over time

Note:
- Water supply data is categorized into risk levels based on the value:
  * High capacity (>1): Sufficient water for new homes
  * Low capacity (0-1): Limited water availability
  * Low risk deficit (-1 to 0): Minor water deficit
  * High risk deficit (<-1): Significant water deficit
- Positive values indicate water capacity for new homes
- Negative values indicate water deficit
- Energy data represents the number of new homes that could be built based on the energy surplus or deficit in each region.
- Home capacity is the energy figure wherever water supply is positive, and zero otherwise.

Make your answer incredibly concise. Only respond with borough names, values and trends.`

// Render returns the data part of the system prompt.
func (c Context) Render() string {
	var sb strings.Builder
	sb.WriteString("New homes capability based on water supply risk levels:\n")
	sb.WriteString(c.Water)
	sb.WriteString("\n\nNew homes capability based on energy surplus/deficit:\n")
	sb.WriteString(c.Energy)
	sb.WriteString("\n\nNew homes capacity combining water and energy:\n")
	sb.WriteString(c.Capacity)
	return sb.String()
}

// SystemPrompt returns the instructions followed by the rendered data.
func (c Context) SystemPrompt() string {
	return Instructions + "\n\n" + c.Render()
}
