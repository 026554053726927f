package workspace

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"fglsense/internal/provider"
)

// ManifestName is the project file looked up from the working directory.
const ManifestName = "fglsense.toml"

var (
	// ErrProjectSectionMissing indicates that [project] is missing in the manifest.
	ErrProjectSectionMissing = errors.New("missing [project]")
	// ErrManifestNotFound is returned by FindManifest when no fglsense.toml
	// exists up to the filesystem root.
	ErrManifestNotFound = errors.New(ManifestName + " not found")
)

// Manifest is the decoded fglsense.toml.
type Manifest struct {
	Project struct {
		Name       string   `toml:"name"`
		Sources    []string `toml:"sources"`
		References []string `toml:"references"`
		Includes   []string `toml:"includes"`
	} `toml:"project"`
	Resolve struct {
		ProviderMode string `toml:"provider_mode"`
	} `toml:"resolve"`
	Completion struct {
		Grammar string `toml:"grammar"`
	} `toml:"completion"`
	Schema struct {
		File string `toml:"file"`
	} `toml:"schema"`

	// Dir is the directory holding the manifest; relative paths are taken
	// from here.
	Dir string `toml:"-"`
	// Unknown lists keys the decoder did not recognise.
	Unknown []string `toml:"-"`
}

// LoadManifest parses the manifest at path. Missing optional keys get
// their defaults: project name from the directory, sources ".", provider
// mode "deferred".
func LoadManifest(fs afero.Fs, path string) (*Manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return nil, fmt.Errorf("%s: %w", path, ErrProjectSectionMissing)
	}
	for _, key := range meta.Undecoded() {
		m.Unknown = append(m.Unknown, key.String())
	}

	m.Dir = filepath.Dir(path)
	if strings.TrimSpace(m.Project.Name) == "" {
		m.Project.Name = filepath.Base(m.Dir)
	}
	if len(m.Project.Sources) == 0 {
		m.Project.Sources = []string{"."}
	}
	if m.Resolve.ProviderMode == "" {
		m.Resolve.ProviderMode = provider.ModeDeferred.String()
	}
	if _, err := provider.ParseMode(m.Resolve.ProviderMode); err != nil {
		return nil, fmt.Errorf("%s: [resolve].provider_mode: %w", path, err)
	}
	return &m, nil
}

// DefaultManifest describes a directory without fglsense.toml: every
// *.4gl below dir belongs to one project named after it.
func DefaultManifest(dir string) *Manifest {
	var m Manifest
	m.Dir = dir
	m.Project.Name = filepath.Base(dir)
	m.Project.Sources = []string{"."}
	m.Resolve.ProviderMode = provider.ModeDeferred.String()
	return &m
}

// FindManifest walks up from startDir to locate fglsense.toml.
func FindManifest(fs afero.Fs, startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		ok, err := afero.Exists(fs, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		if ok {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrManifestNotFound
		}
		dir = parent
	}
}

// Abs resolves a manifest-relative path.
func (m *Manifest) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
