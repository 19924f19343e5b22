package executor

import "strings"

// OutputType classifies what kind of content the agent produced.
type OutputType string

const (
	OutputDiff        OutputType = "diff"
	OutputCode        OutputType = "code"
	OutputExplanation OutputType = "explanation"
)

var codeMarkers = []string{"file:", "class ", "function ", "def ", "import "}

// DetectType inspects agent output and classifies it. Unified diffs win over
// fenced code blocks; anything without code markers is an explanation.
func DetectType(stdout string) OutputType {
	if strings.Contains(stdout, "--- a/") && strings.Contains(stdout, "+++ b/") {
		return OutputDiff
	}
	if strings.Count(stdout, "```") >= 2 {
		return OutputCode
	}
	lower := strings.ToLower(stdout)
	for _, marker := range codeMarkers {
		if strings.Contains(lower, marker) {
			return OutputCode
		}
	}
	return OutputExplanation
}
