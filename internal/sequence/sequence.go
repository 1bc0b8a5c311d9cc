// Package sequence reconstructs the ordered module sequence of every
// configured (path, stage) pair and assigns each module its role.
//
// Ordering comes from configuration. A stage configured without modules falls
// back to discovery: scanned files in the stage directory matching the module
// pattern, in natural order. Configured modules that are not present in the
// scanned set are dropped before roles are assigned, and stages that end up
// with no modules produce no positions at all.
package sequence

import (
	"fmt"
	"path"
	"sort"

	"github.com/conneroisu/navcheck/internal/config"
)

// Role is a module's structural position within its stage.
type Role int

const (
	RoleFirst Role = iota
	RoleMiddle
	RoleLast
)

// String returns the string representation of the Role
func (r Role) String() string {
	switch r {
	case RoleFirst:
		return "first"
	case RoleMiddle:
		return "middle"
	case RoleLast:
		return "last"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	if r < RoleFirst || r > RoleLast {
		return nil, fmt.Errorf("unknown role %d", int(r))
	}
	return []byte(r.String()), nil
}

// RoleFor returns the role of position index in a sequence of length n.
// First wins over Last for a single-module stage.
func RoleFor(index, n int) Role {
	switch {
	case index == 0:
		return RoleFirst
	case index == n-1:
		return RoleLast
	default:
		return RoleMiddle
	}
}

// ModulePosition places one module file within its stage.
type ModulePosition struct {
	PathName   string `json:"path" yaml:"path"`
	StageName  string `json:"stage" yaml:"stage"`
	Index      int    `json:"index" yaml:"index"`
	FileName   string `json:"fileName" yaml:"fileName"`
	Role       Role   `json:"role" yaml:"role"`
	FinalStage bool   `json:"finalStage" yaml:"finalStage"`
	// File is the root-relative path of the module.
	File string `json:"file" yaml:"file"`
}

// Stage is the reconstructed sequence of one (path, stage) pair.
type Stage struct {
	PathName string
	Name     string
	// Dir is the root-relative stage directory.
	Dir string
	// IndexDocument is the root-relative stage index page.
	IndexDocument string
	Final         bool
	Modules       []ModulePosition
}

// Key returns the stage key used in reports ("path/stage").
func (s *Stage) Key() string {
	return s.PathName + "/" + s.Name
}

// Previous returns the module before index, if any.
func (s *Stage) Previous(index int) (ModulePosition, bool) {
	if index <= 0 || index > len(s.Modules) {
		return ModulePosition{}, false
	}
	return s.Modules[index-1], true
}

// Next returns the module after index, if any.
func (s *Stage) Next(index int) (ModulePosition, bool) {
	if index < 0 || index+1 >= len(s.Modules) {
		return ModulePosition{}, false
	}
	return s.Modules[index+1], true
}

// Model builds stages from configuration.
type Model struct {
	sequences     []config.SequenceConfig
	finals        map[string]string
	pathsDir      string
	indexFile     string
	modulePattern string
}

// NewModel creates a model for cfg.
func NewModel(cfg *config.Config) *Model {
	return &Model{
		sequences:     cfg.Sequences,
		finals:        cfg.FinalStages(),
		pathsDir:      cfg.Site.PathsDir,
		indexFile:     cfg.Site.IndexFile,
		modulePattern: cfg.Check.ModulePattern,
	}
}

// StageDir returns the root-relative directory of a (path, stage) pair.
func (m *Model) StageDir(pathName, stageName string) string {
	return path.Join(m.pathsDir, pathName, stageName)
}

// Build reconstructs every configured stage against files, the set of
// readable root-relative content paths. Stages keep configuration order;
// stages without modules are omitted.
func (m *Model) Build(files []string) []*Stage {
	available := make(map[string]bool, len(files))
	for _, f := range files {
		available[f] = true
	}

	stages := make([]*Stage, 0, len(m.sequences))
	for _, seq := range m.sequences {
		dir := m.StageDir(seq.Path, seq.Stage)

		var names []string
		if len(seq.Modules) == 0 {
			names = m.discover(dir, files)
		} else {
			for _, name := range seq.Modules {
				if available[path.Join(dir, name)] {
					names = append(names, name)
				}
			}
		}
		if len(names) == 0 {
			continue
		}

		stage := &Stage{
			PathName:      seq.Path,
			Name:          seq.Stage,
			Dir:           dir,
			IndexDocument: path.Join(dir, m.indexFile),
			Final:         m.finals[seq.Path] == seq.Stage,
			Modules:       make([]ModulePosition, len(names)),
		}
		for i, name := range names {
			stage.Modules[i] = ModulePosition{
				PathName:   seq.Path,
				StageName:  seq.Stage,
				Index:      i,
				FileName:   name,
				Role:       RoleFor(i, len(names)),
				FinalStage: stage.Final,
				File:       path.Join(dir, name),
			}
		}
		stages = append(stages, stage)
	}

	return stages
}

func (m *Model) discover(dir string, files []string) []string {
	var names []string
	for _, f := range files {
		if path.Dir(f) != dir {
			continue
		}
		name := path.Base(f)
		if ok, err := path.Match(m.modulePattern, name); err == nil && ok {
			names = append(names, name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return NaturalLess(names[i], names[j])
	})
	return names
}
