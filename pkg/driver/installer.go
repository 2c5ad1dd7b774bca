package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// DefaultPackagesDir is where packages are looked up when nothing else is configured.
const DefaultPackagesDir = "pyg_packages"

// PackageNotFoundError reports a package without a directory or manifest.
type PackageNotFoundError struct {
	Name       string
	Dir        string
	Suggestion string
}

func (e *PackageNotFoundError) Error() string {
	msg := fmt.Sprintf("Package %q not found.", e.Name)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" Did you mean %q?", e.Suggestion)
	}
	return msg
}

// Installer installs packages from a packages directory, depth-first, each
// package at most once per Installer.
type Installer struct {
	packagesDir string
	out         io.Writer
	logger      *slog.Logger

	installed map[string]*LockedPackage
}

// NewInstaller creates an installer rooted at packagesDir. Progress lines go
// to out; logger receives operational detail.
func NewInstaller(packagesDir string, out io.Writer, logger *slog.Logger) *Installer {
	if packagesDir == "" {
		packagesDir = DefaultPackagesDir
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Installer{
		packagesDir: packagesDir,
		out:         out,
		logger:      logger,
		installed:   make(map[string]*LockedPackage),
	}
}

// Install installs name and its dependencies, then records them in the
// packages directory's lockfile next to entries from earlier installs.
func (in *Installer) Install(ctx context.Context, name string) (*Lockfile, error) {
	if !isPackageName(name) {
		return nil, fmt.Errorf("package name %q must be a single path segment", name)
	}
	if err := in.install(ctx, &Dependency{Name: name}); err != nil {
		return nil, err
	}

	lockPath := filepath.Join(in.packagesDir, LockfileName)
	lock, err := LoadLockfile(lockPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		lock = NewLockfile(name, "pygs")
	case err != nil:
		return nil, err
	default:
		lock.Root = name
		lock.Generated = time.Now().UTC().Format(time.RFC3339)
	}
	lock.merge(in.installed)
	if err := WriteLockfile(lock, lockPath); err != nil {
		return nil, err
	}
	in.logger.Debug("wrote lockfile", "path", lockPath, "packages", len(lock.Packages))
	return lock, nil
}

func (in *Installer) install(ctx context.Context, dep *Dependency) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, done := in.installed[dep.Name]; done {
		in.logger.Debug("package already installed", "name", dep.Name)
		return nil
	}

	dir := filepath.Join(in.packagesDir, dep.Name)
	manifestPath, source, err := in.locate(ctx, dir, dep)
	if err != nil {
		return err
	}
	manifest, err := LoadManifest(manifestPath)
	if err != nil {
		return err
	}

	fmt.Fprintf(in.out, "Installing package: %s@%s\n", dep.Name, manifest.Version)
	in.logger.Info("installing package", "name", dep.Name, "version", manifest.Version, "source", source)

	locked := &LockedPackage{Name: dep.Name, Version: manifest.Version, Source: source}
	in.installed[dep.Name] = locked
	for _, child := range manifest.Dependencies {
		locked.Dependencies = append(locked.Dependencies, child.Name)
		if err := in.install(ctx, child); err != nil {
			return fmt.Errorf("%s: %w", dep.Name, err)
		}
	}

	checksum, err := dirChecksum(dir)
	if err != nil {
		return fmt.Errorf("checksum %s: %w", dir, err)
	}
	locked.Checksum = checksum

	fmt.Fprintf(in.out, "Package %s successfully installed.\n", dep.Name)
	return nil
}

// locate returns the manifest path for dep, cloning git dependencies that
// are not present yet.
func (in *Installer) locate(ctx context.Context, dir string, dep *Dependency) (string, string, error) {
	manifestPath, err := FindManifest(dir)
	if err == nil {
		return manifestPath, "path:" + filepath.ToSlash(dir), nil
	}
	if !errors.Is(err, errManifestNotFound) {
		return "", "", err
	}
	if !dep.IsGit() {
		return "", "", in.notFound(dep.Name, dir)
	}
	if _, statErr := os.Stat(dir); statErr == nil {
		return "", "", fmt.Errorf("package %q: %s exists but has no manifest", dep.Name, dir)
	}

	in.logger.Info("cloning dependency", "name", dep.Name, "url", dep.Git)
	commit, err := cloneDependency(ctx, dir, dep)
	if err != nil {
		return "", "", fmt.Errorf("package %q: %w", dep.Name, err)
	}
	manifestPath, err = FindManifest(dir)
	if err != nil {
		return "", "", fmt.Errorf("package %q: cloned repository has no manifest: %w", dep.Name, err)
	}
	return manifestPath, fmt.Sprintf("git+%s@%s", dep.Git, commit), nil
}

func (in *Installer) notFound(name, dir string) error {
	return &PackageNotFoundError{Name: name, Dir: dir, Suggestion: in.suggest(name)}
}

// suggest picks the closest installed package name.
func (in *Installer) suggest(name string) string {
	entries, err := os.ReadDir(in.packagesDir)
	if err != nil {
		return ""
	}
	candidates := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() != name {
			candidates = append(candidates, entry.Name())
		}
	}
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
