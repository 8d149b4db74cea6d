// Package imports extracts ES module imports and React hook declarations
// from JavaScript and TypeScript sources.
package imports

import (
	"regexp"
	"strings"
)

var (
	// import Default, { A, B as C } from 'x' / import * as NS from 'x'
	// Braced specifier lists may span lines and carry comments.
	importFrom = regexp.MustCompile(`import\s+(?:type\s+)?((?:[\w*\s,$]|\{[^}]*\})+?)\s+from\s+['"]([^'"]+)['"]`)

	comment = regexp.MustCompile(`//[^\n]*|/\*[\s\S]*?\*/`)

	// import './styles.css'
	importSideEffect = regexp.MustCompile(`import\s+['"]([^'"]+)['"]`)

	hookDecl = regexp.MustCompile(`function\s+(use[A-Z][A-Za-z0-9_]*)`)
)

// Result holds what one or more sources import and declare
type Result struct {
	Sources    []string // module specifiers, first occurrence order, unique
	Components []string // uppercase imported names, unique
	Hooks      []string // declared hooks, every occurrence
}

// Collector accumulates scan results across files
type Collector struct {
	result         Result
	seenSources    map[string]bool
	seenComponents map[string]bool
}

// NewCollector creates an empty collector
func NewCollector() *Collector {
	return &Collector{
		seenSources:    make(map[string]bool),
		seenComponents: make(map[string]bool),
	}
}

// Scan extracts imports and hooks from a single source text
func Scan(content string) Result {
	c := NewCollector()
	c.Add(content)
	return c.Result()
}

// Add scans content and merges it into the collector
func (c *Collector) Add(content string) {
	type hit struct {
		pos    int
		source string
	}
	var hits []hit

	for _, m := range importFrom.FindAllStringSubmatchIndex(content, -1) {
		clause := content[m[2]:m[3]]
		hits = append(hits, hit{pos: m[0], source: content[m[4]:m[5]]})
		for _, name := range clauseNames(clause) {
			c.addComponent(name)
		}
	}
	for _, m := range importSideEffect.FindAllStringSubmatchIndex(content, -1) {
		hits = append(hits, hit{pos: m[0], source: content[m[2]:m[3]]})
	}

	// Keep sources in textual order regardless of which pattern found them
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].pos < hits[j-1].pos; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	for _, h := range hits {
		c.addSource(h.source)
	}

	for _, m := range hookDecl.FindAllStringSubmatch(content, -1) {
		c.result.Hooks = append(c.result.Hooks, m[1])
	}
}

// Result returns a copy of everything collected so far
func (c *Collector) Result() Result {
	return Result{
		Sources:    append([]string(nil), c.result.Sources...),
		Components: append([]string(nil), c.result.Components...),
		Hooks:      append([]string(nil), c.result.Hooks...),
	}
}

func (c *Collector) addSource(s string) {
	if c.seenSources[s] {
		return
	}
	c.seenSources[s] = true
	c.result.Sources = append(c.result.Sources, s)
}

func (c *Collector) addComponent(name string) {
	if name == "" || name[0] < 'A' || name[0] > 'Z' {
		return
	}
	if c.seenComponents[name] {
		return
	}
	c.seenComponents[name] = true
	c.result.Components = append(c.result.Components, name)
}

// clauseNames returns the local binding names of an import clause, using the
// exported name for `A as B` specifiers.
func clauseNames(clause string) []string {
	var names []string
	clause = comment.ReplaceAllString(clause, "")

	named := ""
	if open := strings.Index(clause, "{"); open >= 0 {
		rest := clause[open+1:]
		after := ""
		if end := strings.Index(rest, "}"); end >= 0 {
			named, after = rest[:end], rest[end+1:]
		} else {
			named = rest
		}
		clause = clause[:open] + after
	}

	for _, part := range strings.Split(clause, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "*") {
			// * as Namespace
			fields := strings.Fields(strings.TrimPrefix(part, "*"))
			if len(fields) == 2 && fields[0] == "as" {
				names = append(names, fields[1])
			}
			continue
		}
		names = append(names, part)
	}

	for _, spec := range strings.Split(named, ",") {
		fields := strings.Fields(spec)
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "type" && len(fields) > 1 {
			fields = fields[1:]
		}
		names = append(names, fields[0])
	}
	return names
}
