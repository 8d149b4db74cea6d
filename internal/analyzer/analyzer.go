// Package analyzer fingerprints a JavaScript project from its package.json
// and directory layout.
package analyzer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/saeedalam/projectassistant/pkg/types"
)

const (
	FrameworkNext    = "Next.js"
	FrameworkReact   = "React"
	FrameworkVue     = "Vue"
	FrameworkAngular = "Angular"
	Unknown          = "Unknown"

	RouterApp   = "App Router"
	RouterPages = "Pages Router"
)

// rule maps any of a set of dependency names to a label
type rule struct {
	deps  []string
	label string
}

// Framework rules are checked in precedence order; the first match wins.
var frameworkRules = []rule{
	{[]string{"next"}, FrameworkNext},
	{[]string{"react"}, FrameworkReact},
	{[]string{"vue"}, FrameworkVue},
	{[]string{"angular", "@angular/core"}, FrameworkAngular},
}

var stylingRules = []rule{
	{[]string{"tailwindcss"}, "Tailwind CSS"},
	{[]string{"styled-components"}, "styled-components"},
	{[]string{"@emotion/react"}, "Emotion"},
	{[]string{"sass", "sass-loader"}, "Sass"},
}

var stateRules = []rule{
	{[]string{"redux", "@reduxjs/toolkit"}, "Redux"},
	{[]string{"mobx"}, "MobX"},
	{[]string{"recoil"}, "Recoil"},
	{[]string{"zustand"}, "Zustand"},
}

var uiRules = []rule{
	{[]string{"@mui/material", "@material-ui/core"}, "Material UI"},
	{[]string{"@chakra-ui/react"}, "Chakra UI"},
	{[]string{"antd"}, "Ant Design"},
}

type packageJSON struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// Default returns a ProjectInfo with every field set to its unknown value
func Default() types.ProjectInfo {
	return types.ProjectInfo{
		Framework:       Unknown,
		RouterType:      Unknown,
		Styling:         []string{},
		StateManagement: []string{},
		UILibraries:     []string{},
		Dependencies:    map[string]string{},
		DevDependencies: map[string]string{},
	}
}

// Analyze inspects root. The returned info is always complete; a non-nil
// error means package.json could not be read or parsed and the info holds
// defaults.
func Analyze(root string) (types.ProjectInfo, error) {
	info := Default()

	pkgPath := filepath.Join(root, "package.json")
	data, err := os.ReadFile(pkgPath)
	switch {
	case err == nil:
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return info, fmt.Errorf("parse %s: %w", pkgPath, err)
		}
		if pkg.Dependencies != nil {
			info.Dependencies = pkg.Dependencies
		}
		if pkg.DevDependencies != nil {
			info.DevDependencies = pkg.DevDependencies
		}
	case !os.IsNotExist(err):
		return info, fmt.Errorf("read %s: %w", pkgPath, err)
	}

	all := make(map[string]string, len(info.Dependencies)+len(info.DevDependencies))
	for k, v := range info.Dependencies {
		all[k] = v
	}
	for k, v := range info.DevDependencies {
		all[k] = v
	}

	for _, r := range frameworkRules {
		if r.matches(all) {
			info.Framework = r.label
			break
		}
	}

	_, hasTS := all["typescript"]
	info.HasTypeScript = hasTS || exists(filepath.Join(root, "tsconfig.json"))

	info.Styling = collect(stylingRules, all)
	info.StateManagement = collect(stateRules, all)
	info.UILibraries = collect(uiRules, all)

	if info.Framework == FrameworkNext {
		switch {
		case isDir(filepath.Join(root, "app")):
			info.RouterType = RouterApp
		case isDir(filepath.Join(root, "pages")):
			info.RouterType = RouterPages
		}
	}

	return info, nil
}

func (r rule) matches(deps map[string]string) bool {
	for _, d := range r.deps {
		if _, ok := deps[d]; ok {
			return true
		}
	}
	return false
}

func collect(rules []rule, deps map[string]string) []string {
	out := []string{}
	for _, r := range rules {
		if r.matches(deps) {
			out = append(out, r.label)
		}
	}
	return out
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
