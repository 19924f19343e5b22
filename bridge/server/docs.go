package server

const usageGuide = `# Codex Bridge - Usage Guide

This server delegates code analysis, planning, and implementation tasks to
the codex CLI, with content-addressed result caching.

## Core workflow

1. Call codex_delegate with a task description and an absolute working
   directory. The directory must exist, be readable, and fall outside
   protected system paths.
2. The result is cached against the exact content of the directory. Repeat
   the same task against an unchanged tree and the cached result returns
   instantly. Change any file and a fresh run happens automatically.
3. Inspect the cache with cache_stats; reset it with cache_clear or
   cache_purge_expired.
4. Review past runs with delegation_history.

## Read-only by default

Unless the server was started with writes enabled, every delegation is
forced to the read-only sandbox regardless of the requested sandbox_mode.
Use this mode to analyze, review, and plan without touching the tree.

## Output formats

- diff: a unified diff suitable for patch tools
- full_file: complete contents of each modified file
- explanation: prose analysis, no file changes

## Prompts

- refactor_code(file_path, refactor_type): builds a refactoring task
- generate_tests(file_path, test_framework): builds a test-generation task
`

const bestPractices = `# Best Practices for Delegation Tasks

## Be specific

A task like "fix it" will be declined as too vague. Describe the goal, the
relevant files or subsystems, and any constraints:

- Good: "Analyze the authentication middleware in internal/auth for race
  conditions and propose fixes as a unified diff"
- Poor: "check auth"

## Plan first, write later

Start in read-only mode with output_format=explanation to understand the
problem, then request a diff once the approach is settled. Enable writes
only when you are ready to apply changes.

## Work with the cache

The cache key covers the task text, the directory path, the effective
sandbox mode, the output format, and a fingerprint of every file's content.
Rephrasing a task or touching any file produces a fresh run; repeating an
identical request is free.

## Scope the directory

Point working_directory at the smallest tree that contains the relevant
code. Smaller trees fingerprint faster and produce more focused results.
`
