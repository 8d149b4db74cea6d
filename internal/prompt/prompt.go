// Package prompt turns ranked files into the messages sent to the completion
// provider.
package prompt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/saeedalam/projectassistant/internal/imports"
	"github.com/saeedalam/projectassistant/pkg/types"
)

// File is one context file keyed by its project-relative path
type File struct {
	Path    string
	Content string
}

// Context is everything known about the project for one task
type Context struct {
	Files       []File
	Components  []string
	Imports     []string
	Hooks       []string
	ProjectInfo types.ProjectInfo
}

// Paths returns the relative paths of the context files in order
func (c Context) Paths() []string {
	paths := make([]string, 0, len(c.Files))
	for _, f := range c.Files {
		paths = append(paths, f.Path)
	}
	return paths
}

// Build assembles a Context from ranked files
func Build(files []types.RelevantFile, projectDir string, info types.ProjectInfo) Context {
	ctx := Context{ProjectInfo: info}
	collector := imports.NewCollector()

	for _, f := range files {
		rel, err := filepath.Rel(projectDir, f.Path)
		if err != nil {
			rel = f.Path
		}
		ctx.Files = append(ctx.Files, File{Path: filepath.ToSlash(rel), Content: f.Content})
		collector.Add(f.Content)
	}

	r := collector.Result()
	ctx.Components = r.Components
	ctx.Imports = r.Sources
	ctx.Hooks = r.Hooks
	return ctx
}

// Limits caps how much context is rendered into the prompt
type Limits struct {
	Entries int // per collection
	Files   int
	Lines   int // per file
}

// DefaultLimits mirrors what fits comfortably in a single request
func DefaultLimits() Limits {
	return Limits{Entries: 10, Files: 3, Lines: 200}
}

// Messages is a rendered system/user pair
type Messages struct {
	System string
	User   string
}

// Render produces the system and user messages for a task
func Render(c Context, taskType, description string, limits Limits) Messages {
	if limits.Entries <= 0 || limits.Files <= 0 || limits.Lines <= 0 {
		limits = DefaultLimits()
	}
	return Messages{
		System: renderSystem(c.ProjectInfo, taskType),
		User:   renderUser(c, description, limits),
	}
}

func renderSystem(info types.ProjectInfo, taskType string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert developer assistant specializing in Next.js, React, TypeScript, and modern web development.\n")
	sb.WriteString("Your task is to generate high-quality code based on the user's request, following the project's existing patterns.\n\n")

	sb.WriteString("Project Information:\n")
	sb.WriteString(fmt.Sprintf("- Framework: %s\n", info.Framework))
	sb.WriteString(fmt.Sprintf("- Router: %s\n", info.RouterType))
	sb.WriteString(fmt.Sprintf("- TypeScript: %s\n", yesNo(info.HasTypeScript)))
	sb.WriteString(fmt.Sprintf("- Styling: %s\n", joinOr(info.Styling, "None detected")))
	sb.WriteString(fmt.Sprintf("- State Management: %s\n", joinOr(info.StateManagement, "None detected")))
	sb.WriteString(fmt.Sprintf("- UI Libraries: %s\n\n", joinOr(info.UILibraries, "None detected")))

	sb.WriteString(fmt.Sprintf("Task Type: %s\n\n", taskType))

	sb.WriteString("When generating code:\n")
	sb.WriteString("1. Maintain consistency with the project's coding style and patterns\n")
	sb.WriteString("2. Use appropriate TypeScript types if the project uses TypeScript\n")
	sb.WriteString("3. Format your response with:\n")
	sb.WriteString("   - A brief explanation\n")
	sb.WriteString("   - The generated code in a code block\n")
	sb.WriteString("   - Implementation instructions if needed\n")
	return sb.String()
}

func renderUser(c Context, description string, limits Limits) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Task: %s\n\n", description))
	sb.WriteString("Here are excerpts from relevant files in the project:\n\n")

	files := c.Files
	if len(files) > limits.Files {
		files = files[:limits.Files]
	}
	for i, f := range files {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("--- %s ---\n%s\n", f.Path, firstLines(f.Content, limits.Lines)))
	}

	sb.WriteString("\nAdditional Context:\n")
	sb.WriteString(fmt.Sprintf("- Components: %s\n", strings.Join(head(c.Components, limits.Entries), ", ")))
	sb.WriteString(fmt.Sprintf("- Common imports: %s\n", strings.Join(head(c.Imports, limits.Entries), ", ")))
	sb.WriteString(fmt.Sprintf("- Custom hooks: %s\n\n", strings.Join(head(c.Hooks, limits.Entries), ", ")))

	sb.WriteString("Please provide a complete solution based on this context.\n")
	return sb.String()
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}

func head(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
