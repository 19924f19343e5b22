package executor

import "fmt"

var refactorDescriptions = map[string]string{
	"general":     "Perform general code refactoring to improve code quality",
	"performance": "Refactor code to improve performance and efficiency",
	"readability": "Refactor code to improve readability and maintainability",
	"structure":   "Refactor code structure to improve architectural design",
}

// RefactorTask renders the task sent for a refactoring request.
func RefactorTask(filePath, refactorType string) string {
	description, ok := refactorDescriptions[refactorType]
	if !ok {
		description = "Refactor code"
	}
	return fmt.Sprintf(
		"Please %s for the file '%s'. Keep the original functionality unchanged, but improve code quality, readability, and maintainability.",
		description, filePath)
}

// GenerateTestsTask renders the task sent for a test-generation request.
func GenerateTestsTask(filePath, framework string) string {
	return fmt.Sprintf(
		"Generate comprehensive %s test cases for file '%s'.\n\n"+
			"Requirements:\n"+
			"1. Cover all public functions and methods\n"+
			"2. Include normal cases and edge condition tests\n"+
			"3. Add exception handling tests\n"+
			"4. Ensure test cases are clear and well-described\n"+
			"5. Follow %s best practices",
		framework, filePath, framework)
}
