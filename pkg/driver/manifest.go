package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// ManifestFileNames lists the manifest names looked up in a package
// directory, in priority order. JSON manifests are read with the YAML
// decoder, JSON being a subset of YAML.
var ManifestFileNames = []string{"pyg.json", "pyg.yml", "pyg.yaml"}

// Manifest represents the parsed contents of a package's pyg.json.
type Manifest struct {
	Path         string
	Dir          string
	Name         string
	Version      string
	Description  string
	Main         string
	License      string
	Dependencies []*Dependency
}

// Dependency is one entry of a manifest's dependencies, in declaration order.
type Dependency struct {
	Name    string
	Version string
	Git     string
	Rev     string
	Tag     string
	Branch  string
}

// IsGit reports whether the dependency is fetched from a git remote.
func (d *Dependency) IsGit() bool {
	return d != nil && strings.TrimSpace(d.Git) != ""
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed")
	if e.Path != "" {
		b.WriteString(" for ")
		b.WriteString(e.Path)
	}
	b.WriteString(":")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

var errManifestNotFound = errors.New("manifest not found")

// FindManifest returns the path of the manifest inside dir.
func FindManifest(dir string) (string, error) {
	for _, name := range ManifestFileNames {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("manifest: stat %s: %w", candidate, err)
		}
	}
	return "", fmt.Errorf("%w in %s", errManifestNotFound, dir)
}

type manifestFile struct {
	Name         string    `yaml:"name"`
	Version      string    `yaml:"version"`
	Description  string    `yaml:"description"`
	Main         string    `yaml:"main"`
	License      string    `yaml:"license"`
	Dependencies yaml.Node `yaml:"dependencies"`
}

type dependencyFile struct {
	Version string `yaml:"version"`
	Git     string `yaml:"git"`
	Rev     string `yaml:"rev"`
	Tag     string `yaml:"tag"`
	Branch  string `yaml:"branch"`
}

// LoadManifest parses and validates the manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: read %s: %w", absPath, err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("manifest: %s is empty", absPath)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}
	issues, err := validateManifestDocument(doc)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Path: absPath, Issues: issues}
	}

	var raw manifestFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}
	manifest, err := raw.toManifest(absPath)
	if err != nil {
		return nil, err
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (raw manifestFile) toManifest(path string) (*Manifest, error) {
	dir := filepath.Dir(path)
	m := &Manifest{
		Path:        path,
		Dir:         dir,
		Name:        strings.TrimSpace(raw.Name),
		Version:     strings.TrimSpace(raw.Version),
		Description: raw.Description,
		Main:        raw.Main,
		License:     raw.License,
	}
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	deps, err := decodeDependencies(&raw.Dependencies)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", path, err)
	}
	m.Dependencies = deps
	return m, nil
}

// decodeDependencies accepts a list of names or a mapping of name to a
// version string or dependency table, preserving declaration order.
func decodeDependencies(node *yaml.Node) ([]*Dependency, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		deps := make([]*Dependency, 0, len(node.Content))
		for _, item := range node.Content {
			deps = append(deps, &Dependency{Name: strings.TrimSpace(item.Value)})
		}
		return deps, nil
	case yaml.MappingNode:
		deps := make([]*Dependency, 0, len(node.Content)/2)
		for idx := 0; idx+1 < len(node.Content); idx += 2 {
			name := strings.TrimSpace(node.Content[idx].Value)
			value := node.Content[idx+1]
			dep := &Dependency{Name: name}
			switch value.Kind {
			case yaml.ScalarNode:
				dep.Version = strings.TrimSpace(value.Value)
			case yaml.MappingNode:
				var desc dependencyFile
				if err := value.Decode(&desc); err != nil {
					return nil, fmt.Errorf("dependency %q: %w", name, err)
				}
				dep.Version = strings.TrimSpace(desc.Version)
				dep.Git = strings.TrimSpace(desc.Git)
				dep.Rev = strings.TrimSpace(desc.Rev)
				dep.Tag = strings.TrimSpace(desc.Tag)
				dep.Branch = strings.TrimSpace(desc.Branch)
			default:
				return nil, fmt.Errorf("dependency %q: unsupported descriptor", name)
			}
			deps = append(deps, dep)
		}
		return deps, nil
	default:
		return nil, fmt.Errorf("dependencies must be a list or a mapping")
	}
}

func (m *Manifest) validate() error {
	var issues []string
	if !semver.IsValid(canonicalVersion(m.Version)) {
		issues = append(issues, fmt.Sprintf("version %q is not a valid semantic version", m.Version))
	}
	seen := make(map[string]bool, len(m.Dependencies))
	for _, dep := range m.Dependencies {
		switch {
		case dep.Name == "":
			issues = append(issues, "dependency with empty name")
		case !isPackageName(dep.Name):
			issues = append(issues, fmt.Sprintf("dependency %q: name must be a single path segment", dep.Name))
		case seen[dep.Name]:
			issues = append(issues, fmt.Sprintf("dependency %q declared more than once", dep.Name))
		}
		seen[dep.Name] = true
		if !dep.IsGit() && (dep.Rev != "" || dep.Tag != "" || dep.Branch != "") {
			issues = append(issues, fmt.Sprintf("dependency %q: rev, tag and branch require git", dep.Name))
		}
		if countNonEmpty(dep.Rev, dep.Tag, dep.Branch) > 1 {
			issues = append(issues, fmt.Sprintf("dependency %q: specify only one of rev, tag or branch", dep.Name))
		}
	}
	if len(issues) > 0 {
		return &ValidationError{Path: m.Path, Issues: issues}
	}
	return nil
}

// isPackageName reports whether name is usable as a directory under the
// packages directory.
func isPackageName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

func canonicalVersion(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

func countNonEmpty(values ...string) int {
	n := 0
	for _, v := range values {
		if v != "" {
			n++
		}
	}
	return n
}
