package delegate

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// requestSchema validates the wire shape of a delegation request before any
// of its fields are acted on.
const requestSchema = `{
	"type": "object",
	"required": ["task", "working_directory"],
	"properties": {
		"task": {"type": "string", "minLength": 1, "maxLength": 65536},
		"working_directory": {"type": "string", "minLength": 1, "pattern": "^/"},
		"execution_mode": {"enum": ["untrusted", "on-failure", "on-request", "never"]},
		"sandbox_mode": {"enum": ["read-only", "workspace-write", "danger-full-access"]},
		"output_format": {"enum": ["diff", "full_file", "explanation"]}
	}
}`

// Guardrails enforces request shape and scrubs credentials from agent
// output before it is cached or returned.
type Guardrails struct {
	schema        *gojsonschema.Schema
	outputFilters []*regexp.Regexp
}

// NewGuardrails compiles the request schema and redaction patterns.
func NewGuardrails() (*Guardrails, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(requestSchema))
	if err != nil {
		return nil, fmt.Errorf("compiling request schema: %w", err)
	}
	return &Guardrails{
		schema: schema,
		outputFilters: []*regexp.Regexp{
			regexp.MustCompile(`(?i)password[:=]\s*\S+`),
			regexp.MustCompile(`(?i)api[_-]?key[:=]\s*\S+`),
			regexp.MustCompile(`(?i)secret[:=]\s*\S+`),
			regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-_.~+/]+=*`),
			regexp.MustCompile(`(?i)token[:=]\s*\S+`),
		},
	}, nil
}

// ValidateRequest checks raw request JSON against the schema.
func (g *Guardrails) ValidateRequest(raw json.RawMessage) error {
	result, err := g.schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("request validation failed: %w", err)
	}
	if !result.Valid() {
		var problems []string
		for _, e := range result.Errors() {
			problems = append(problems, e.String())
		}
		return fmt.Errorf("invalid request: %s", strings.Join(problems, "; "))
	}
	return nil
}

// SanitizeOutput masks credential-shaped substrings in agent output.
func (g *Guardrails) SanitizeOutput(output string) string {
	sanitized := output
	for _, filter := range g.outputFilters {
		sanitized = filter.ReplaceAllString(sanitized, "[REDACTED]")
	}
	return sanitized
}
