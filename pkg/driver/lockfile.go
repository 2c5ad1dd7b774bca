package driver

import (
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"
	"gopkg.in/yaml.v3"
)

// LockfileName is written into the packages directory after an install.
const LockfileName = "pyg.lock"

// Lockfile models the pyg.lock contents.
type Lockfile struct {
	Path      string
	Root      string
	Generated string
	Tool      string
	Packages  []*LockedPackage
}

// LockedPackage captures a single installed package.
type LockedPackage struct {
	Name         string
	Version      string
	Source       string
	Checksum     string
	Dependencies []string
}

type lockfileDisk struct {
	Root      string              `yaml:"root"`
	Generated string              `yaml:"generated"`
	Tool      string              `yaml:"tool"`
	Packages  []lockedPackageDisk `yaml:"packages"`
}

type lockedPackageDisk struct {
	Name         string   `yaml:"name"`
	Version      string   `yaml:"version"`
	Source       string   `yaml:"source"`
	Checksum     string   `yaml:"checksum,omitempty"`
	Dependencies []string `yaml:"dependencies,omitempty"`
}

// NewLockfile constructs a lockfile with metadata seeded for the provided root.
func NewLockfile(root, tool string) *Lockfile {
	return &Lockfile{
		Root:      strings.TrimSpace(root),
		Generated: time.Now().UTC().Format(time.RFC3339),
		Tool:      strings.TrimSpace(tool),
		Packages:  []*LockedPackage{},
	}
}

// LoadLockfile parses pyg.lock from disk.
func LoadLockfile(path string) (*Lockfile, error) {
	if path == "" {
		return nil, fmt.Errorf("lockfile: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("lockfile: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var raw lockfileDisk
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", abs, err)
	}

	lock := &Lockfile{Path: abs, Root: raw.Root, Generated: raw.Generated, Tool: raw.Tool}
	for _, pkg := range raw.Packages {
		lock.Packages = append(lock.Packages, &LockedPackage{
			Name:         pkg.Name,
			Version:      pkg.Version,
			Source:       pkg.Source,
			Checksum:     pkg.Checksum,
			Dependencies: pkg.Dependencies,
		})
	}
	lock.normalize()
	return lock, nil
}

// WriteLockfile serialises the lockfile to path.
func WriteLockfile(lock *Lockfile, path string) error {
	if lock == nil {
		return fmt.Errorf("lockfile: nil lockfile")
	}
	lock.normalize()
	raw := lockfileDisk{Root: lock.Root, Generated: lock.Generated, Tool: lock.Tool}
	for _, pkg := range lock.Packages {
		raw.Packages = append(raw.Packages, lockedPackageDisk{
			Name:         pkg.Name,
			Version:      pkg.Version,
			Source:       pkg.Source,
			Checksum:     pkg.Checksum,
			Dependencies: pkg.Dependencies,
		})
	}
	data, err := yaml.Marshal(&raw)
	if err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("lockfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", path, err)
	}
	lock.Path = path
	return nil
}

// Find returns the locked entry for name.
func (l *Lockfile) Find(name string) (*LockedPackage, bool) {
	if l == nil {
		return nil, false
	}
	for _, pkg := range l.Packages {
		if pkg.Name == name {
			return pkg, true
		}
	}
	return nil, false
}

// merge replaces entries for the given packages and keeps every other entry.
func (l *Lockfile) merge(pkgs map[string]*LockedPackage) {
	kept := l.Packages[:0]
	for _, pkg := range l.Packages {
		if _, replaced := pkgs[pkg.Name]; !replaced {
			kept = append(kept, pkg)
		}
	}
	l.Packages = kept
	for _, pkg := range pkgs {
		l.Packages = append(l.Packages, pkg)
	}
	l.normalize()
}

func (l *Lockfile) normalize() {
	sort.Slice(l.Packages, func(a, b int) bool {
		return l.Packages[a].Name < l.Packages[b].Name
	})
	for _, pkg := range l.Packages {
		sort.Strings(pkg.Dependencies)
	}
}

// dirChecksum hashes file names and contents under path, skipping VCS metadata.
func dirChecksum(path string) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
