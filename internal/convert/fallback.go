package convert

import (
	"encoding/json"
	"time"
)

const missingPromptPlaceholder = "No prompt provided"

// fallbackDocument mirrors the field order of a successful conversion so
// clients can render both the same way. Struct fields marshal in
// declaration order, a map would not.
type fallbackDocument struct {
	TaskType       string             `json:"task_type"`
	Intent         string             `json:"intent"`
	Parameters     fallbackParameters `json:"parameters"`
	Constraints    []string           `json:"constraints"`
	Context        string             `json:"context"`
	ExpectedOutput string             `json:"expected_output"`
	Complexity     string             `json:"complexity"`
	Domain         string             `json:"domain"`
	Metadata       fallbackMetadata   `json:"metadata"`
}

type fallbackParameters struct {
	OriginalPrompt string `json:"original_prompt"`
}

type fallbackMetadata struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// BuildFallback renders the document returned when the model cannot
// produce usable JSON. It performs no I/O and the result always parses.
func BuildFallback(prompt, reason string, now time.Time) string {
	if prompt == "" {
		prompt = missingPromptPlaceholder
	}

	doc := fallbackDocument{
		TaskType: "general",
		Intent:   "User request processing",
		Parameters: fallbackParameters{
			OriginalPrompt: prompt,
		},
		Constraints:    []string{},
		Context:        "Generated due to conversion error",
		ExpectedOutput: "Processed user request",
		Complexity:     "medium",
		Domain:         "general",
		Metadata: fallbackMetadata{
			Error:     reason,
			Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		},
	}

	// Marshalling a struct of strings cannot fail.
	out, _ := json.MarshalIndent(doc, "", "  ")
	return string(out)
}
