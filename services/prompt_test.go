package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titanic_chat_backend/platform/dataset"
)

const promptSampleCSV = `PassengerId,Survived,Pclass,Name,Sex,Age,SibSp,Parch,Ticket,Fare,Embarked
1,0,3,"Braund, Mr. Owen Harris",male,22,1,0,A/5 21171,7.25,S
2,1,1,"Cumings, Mrs. John Bradley",female,38,1,0,PC 17599,71.2833,C
`

func loadPromptTable(t *testing.T) *dataset.Table {
	t.Helper()
	table, err := dataset.Read(strings.NewReader(promptSampleCSV))
	require.NoError(t, err)
	return table
}

func TestBuildSystemPromptDescribesTable(t *testing.T) {
	prompt := BuildSystemPrompt(loadPromptTable(t))

	assert.Contains(t, prompt, "2 rows")
	for _, col := range []string{"Survived", "Pclass", "Age", "Embarked"} {
		assert.Contains(t, prompt, col)
	}
	assert.NotContains(t, prompt, "Cabin")
	assert.Contains(t, prompt, "FINAL ANSWER:")
	assert.Contains(t, prompt, "chart.Bar")
}

func TestExtractCodeBlock(t *testing.T) {
	reply := "Let me compute that.\n```go\nfunc Run() (string, error) { return \"ok\", nil }\n```\nDone."
	code, ok := extractCodeBlock(reply)
	require.True(t, ok)
	assert.Equal(t, `func Run() (string, error) { return "ok", nil }`, code)
}

func TestExtractCodeBlockGolangFence(t *testing.T) {
	reply := "```golang\nimport \"dataset\"\n```"
	code, ok := extractCodeBlock(reply)
	require.True(t, ok)
	assert.Equal(t, `import "dataset"`, code)
}

func TestExtractCodeBlockMissing(t *testing.T) {
	_, ok := extractCodeBlock("no code here")
	assert.False(t, ok)

	_, ok = extractCodeBlock("```go\nunterminated fence")
	assert.False(t, ok)

	_, ok = extractCodeBlock("```go\n\n```")
	assert.False(t, ok)
}

func TestExtractFinalAnswer(t *testing.T) {
	answer, ok := extractFinalAnswer("FINAL ANSWER: 342 passengers survived.")
	require.True(t, ok)
	assert.Equal(t, "342 passengers survived.", answer)

	_, ok = extractFinalAnswer("still thinking")
	assert.False(t, ok)
}
