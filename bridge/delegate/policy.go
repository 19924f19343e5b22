package delegate

import (
	"fmt"
	"strings"

	"github.com/codexbridge/codex-bridge/bridge/delegate/ports"
)

// minTaskWords is the floor below which a task is judged too vague to be
// worth an external round trip.
const minTaskWords = 2

// HeuristicPolicy is the default DecisionPolicy. It declines tasks that are
// empty or too vague to act on and shapes prompts around the requested
// output format.
type HeuristicPolicy struct{}

// NewHeuristicPolicy creates the default policy.
func NewHeuristicPolicy() *HeuristicPolicy {
	return &HeuristicPolicy{}
}

// ShouldDelegate accepts any task with enough substance to describe work.
func (p *HeuristicPolicy) ShouldDelegate(task string) (bool, string) {
	trimmed := strings.TrimSpace(task)
	if trimmed == "" {
		return false, "task is empty"
	}
	if len(strings.Fields(trimmed)) < minTaskWords {
		return false, "task is too vague to delegate"
	}
	return true, "task accepted"
}

// PreparePrompt appends format instructions matching the requested output
// shape so the agent's response can be consumed mechanically.
func (p *HeuristicPolicy) PreparePrompt(task, outputFormat string) string {
	var instruction string
	switch OutputFormat(outputFormat) {
	case FormatDiff:
		instruction = "Provide your response as a unified diff that can be applied with standard patch tools. Do not include commentary outside the diff."
	case FormatFullFile:
		instruction = "Provide the complete contents of every modified file, each preceded by its path."
	case FormatExplanation:
		instruction = "Provide a clear explanation of your analysis and any recommended changes. Do not modify files."
	default:
		return task
	}
	return fmt.Sprintf("%s\n\n%s", task, instruction)
}

// Ensure HeuristicPolicy implements the DecisionPolicy interface.
var _ ports.DecisionPolicy = (*HeuristicPolicy)(nil)
