package common

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Set with -ldflags "-X github.com/bobmcallan/lexicon/internal/common.Version=...".
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version string `json:"version" yaml:"version"`
	Build   string `json:"build" yaml:"build"`
	Commit  string `json:"commit" yaml:"commit"`
}

// String formats as "1.2.0 (build: ..., commit: ...)".
func (b BuildInfo) String() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", b.Version, b.Build, b.Commit)
}

var versionFileOnce sync.Once

// CurrentBuild returns the build info, filling ldflags gaps from a
// .version file beside the executable on first call.
func CurrentBuild() BuildInfo {
	versionFileOnce.Do(func() {
		exe, err := os.Executable()
		if err != nil {
			return
		}
		_ = mergeVersionFile(filepath.Join(filepath.Dir(exe), ".version"))
	})
	return BuildInfo{Version: Version, Build: Build, Commit: GitCommit}
}

// mergeVersionFile reads a YAML file of version/build/commit keys. Values
// only replace fields still at their defaults. A missing file is not an error.
func mergeVersionFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var file BuildInfo
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if Version == "dev" && file.Version != "" {
		Version = file.Version
	}
	if Build == "unknown" && file.Build != "" {
		Build = file.Build
	}
	if GitCommit == "unknown" && file.Commit != "" {
		GitCommit = file.Commit
	}
	return nil
}
