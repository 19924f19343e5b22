package ports

// DecisionPolicy owns the judgement calls around a delegation: whether a
// task should be sent out at all, and how its prompt is shaped before
// execution.
type DecisionPolicy interface {
	// ShouldDelegate reports whether the task is worth sending to the
	// external agent, with a short human-readable reason either way.
	ShouldDelegate(task string) (bool, string)

	// PreparePrompt rewrites the raw task into the prompt handed to the
	// executor.
	PreparePrompt(task, outputFormat string) string
}
