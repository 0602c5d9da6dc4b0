package classify

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ConfigRule maps a config-surface category to the patterns that identify it.
// Patterns with '*' are globs against the relative path or the base name;
// the rest must equal one of them.
type ConfigRule struct {
	Category string
	Patterns []string
}

// ConfigRules is evaluated in order; a file may fall into several categories.
var ConfigRules = []ConfigRule{
	{"package", []string{
		"package.json", "pyproject.toml", "Cargo.toml", "go.mod", "go.sum", "Gemfile",
		"composer.json", "pom.xml", "build.gradle", "build.gradle.kts", "requirements.txt",
		"setup.py", "setup.cfg", "pnpm-workspace.yaml",
	}},
	{"typescript", []string{"tsconfig.json", "tsconfig.*.json", "jsconfig.json"}},
	{"build", []string{
		"webpack.config.*", "vite.config.*", "rollup.config.*", "esbuild.config.*",
		"babel.config.*", ".babelrc*", "metro.config.*", "next.config.*", "nuxt.config.*",
		"svelte.config.*", "astro.config.*",
	}},
	{"ci", []string{
		".github/workflows/*.yml", ".github/workflows/*.yaml", ".gitlab-ci.yml", "Jenkinsfile",
		".circleci/config.yml", ".travis.yml", "azure-pipelines.yml", "bitbucket-pipelines.yml",
	}},
	{"docker", []string{
		"Dockerfile", "Dockerfile.*", "docker-compose.yml", "docker-compose.*.yml",
		"compose.yml", "compose.*.yml", ".dockerignore",
	}},
	{"infrastructure", []string{
		"*.tf", "*.tfvars", "terraform.tfstate", "kubernetes/*.yaml", "k8s/*.yaml",
		"helm/**/*.yaml", "Chart.yaml", "values.yaml",
	}},
	{"env", []string{".env.example", ".env.sample", ".env.template", ".env.local.example"}},
	{"linting", []string{
		".eslintrc*", ".prettierrc*", ".stylelintrc*", ".editorconfig", "biome.json",
		".biomeignore", "deno.json", "deno.jsonc", ".pylintrc", "pyproject.toml", "setup.cfg",
		".flake8", ".ruff.toml", "ruff.toml",
	}},
}

func (r ConfigRule) matches(relPath, name string) bool {
	for _, pattern := range r.Patterns {
		if strings.Contains(pattern, "*") {
			if globMatch(pattern, relPath) || globMatch(pattern, name) {
				return true
			}
			continue
		}
		if name == pattern || relPath == pattern {
			return true
		}
	}
	return false
}

// ConfigCategories returns every category relPath belongs to, in table order.
func ConfigCategories(relPath string) []string {
	name := path.Base(relPath)
	var categories []string
	for _, rule := range ConfigRules {
		if rule.matches(relPath, name) {
			categories = append(categories, rule.Category)
		}
	}
	return categories
}

func globMatch(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, name)
	return err == nil && ok
}
