package services

import (
	"fmt"
	"strings"

	"titanic_chat_backend/platform/dataset"
)

const finalAnswerMarker = "FINAL ANSWER:"

// BuildSystemPrompt describes the loaded table and the execution protocol so
// the model references real columns and emits runnable snippets.
func BuildSystemPrompt(t *dataset.Table) string {
	var builder strings.Builder
	builder.WriteString("You are a data analysis agent answering questions about the Titanic passenger manifest.\n\n")

	builder.WriteString(fmt.Sprintf("The dataset has %d rows with these EXACT columns:\n", t.NumRows()))
	for _, spec := range t.Schema() {
		builder.WriteString(fmt.Sprintf("- %s (%s): %s\n", spec.Name, spec.Kind, spec.Desc))
	}

	builder.WriteString(`
Data access is through the virtual package "dataset":
  dataset.NumRows() int
  dataset.Columns() []string
  dataset.Ints(name string) []int         // int columns
  dataset.Floats(name string) []float64   // any numeric column
  dataset.Strings(name string) []string   // string columns

Charts are drawn through the virtual package "chart":
  chart.Bar(title, xLabel, yLabel string, labels []string, values []float64)
  chart.Hist(title, xLabel, yLabel string, values []float64, bins int)
  chart.Line(title, xLabel, yLabel string, xs, ys []float64)

RULES you MUST follow:
1. ALWAYS compute answers by executing Go code - never guess or make up numbers.
2. Use ONLY the exact column names listed above.
3. To execute code, reply with exactly one fenced block:
   ` + "```go" + `
   import "dataset"

   func Run() (string, error) {
       // your analysis
       return result, nil
   }
   ` + "```" + `
   Allowed imports: fmt, strings, strconv, math, sort, errors, dataset, chart.
4. The execution result comes back as an observation; then either run more
   code or answer.
5. Draw the whole chart in ONE code block, with a title and axis labels.
6. When computing percentages, round to 2 decimal places.
7. Complete the task in as few executions as possible - ideally ONE.
8. When you know the answer, reply on a single line:
   FINAL ANSWER: <the answer>
`)
	return builder.String()
}

// extractCodeBlock pulls the first fenced Go block out of a model reply.
// The longer fence goes first so "```golang" is not mistaken for "```go"
// followed by stray text.
func extractCodeBlock(reply string) (string, bool) {
	for _, fence := range []string{"```golang", "```go"} {
		start := strings.Index(reply, fence)
		if start < 0 {
			continue
		}
		rest := reply[start+len(fence):]
		end := strings.Index(rest, "```")
		if end < 0 {
			return "", false
		}
		code := strings.TrimSpace(rest[:end])
		if code == "" {
			return "", false
		}
		return code, true
	}
	return "", false
}

func extractFinalAnswer(reply string) (string, bool) {
	idx := strings.Index(reply, finalAnswerMarker)
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(reply[idx+len(finalAnswerMarker):]), true
}
