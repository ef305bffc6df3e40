package intent

import "fmt"

const systemPrompt = `You are an analyst helping someone evaluate a neighborhood.
Given a description of the person, extract their structured intent and pick
the metrics most relevant to them from the provided catalog.

Respond with a single JSON object and nothing else:
{
  "profile_type": "short label for this person",
  "priorities": ["what matters most to them, in order"],
  "concerns": ["what they want to avoid"],
  "lifestyle": "one-line lifestyle summary",
  "reasoning": "one or two sentences on why these metrics",
  "selected_metrics": ["metric ids from the catalog, 5 to 8 of them, most relevant first"]
}

Use only metric ids that appear in the catalog. Do not invent ids.`

func userPrompt(profile, promptCatalog string) string {
	return fmt.Sprintf("Person:\n%s\n\nMetric catalog:\n%s", profile, promptCatalog)
}
