package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/codexbridge/codex-bridge/bridge/executor"
)

func registerPrompts(s *server.MCPServer) {
	s.AddPrompt(refactorPromptDefinition(), handleRefactorPrompt)
	s.AddPrompt(generateTestsPromptDefinition(), handleGenerateTestsPrompt)
}

func refactorPromptDefinition() mcp.Prompt {
	return mcp.NewPrompt("refactor_code",
		mcp.WithPromptDescription("Template for delegating a refactoring task"),
		mcp.WithArgument("file_path",
			mcp.ArgumentDescription("Path of the file to refactor"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("refactor_type",
			mcp.ArgumentDescription("One of: general, performance, readability, structure"),
		),
	)
}

func handleRefactorPrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	filePath := req.Params.Arguments["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("file_path argument is required")
	}
	refactorType := req.Params.Arguments["refactor_type"]
	if refactorType == "" {
		refactorType = "general"
	}

	task := executor.RefactorTask(filePath, refactorType)

	return mcp.NewGetPromptResult(
		fmt.Sprintf("Refactor %s (%s)", filePath, refactorType),
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(
				fmt.Sprintf("Task: %s", task))),
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(
				"Set the working directory to the project root, then call the codex_delegate tool with this task.")),
		},
	), nil
}

func generateTestsPromptDefinition() mcp.Prompt {
	return mcp.NewPrompt("generate_tests",
		mcp.WithPromptDescription("Template for delegating test generation"),
		mcp.WithArgument("file_path",
			mcp.ArgumentDescription("Path of the file to generate tests for"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("test_framework",
			mcp.ArgumentDescription("Testing framework to target (e.g. go test, pytest, jest)"),
		),
	)
}

func handleGenerateTestsPrompt(_ context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	filePath := req.Params.Arguments["file_path"]
	if filePath == "" {
		return nil, fmt.Errorf("file_path argument is required")
	}
	framework := req.Params.Arguments["test_framework"]
	if framework == "" {
		framework = "go test"
	}

	task := executor.GenerateTestsTask(filePath, framework)

	return mcp.NewGetPromptResult(
		fmt.Sprintf("Generate %s tests for %s", framework, filePath),
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(
				fmt.Sprintf("Task: %s", task))),
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(
				"Set the working directory to the project root, then call the codex_delegate tool with this task.")),
		},
	), nil
}
