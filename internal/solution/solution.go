package solution

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/util/sets"
)

// Solution is the root of a loaded solution. It is read-only after Load
// returns, except for the selection held by Matrix.
type Solution struct {
	Path          string // absolute path of the .sln file
	Dir           string
	FormatVersion string

	Definitions []ProjectDefinition
	Projects    []*Project
	Roots       []*Project
	Matrix      *ConfigMatrix

	// Diagnostics collects the non-fatal problems found while loading.
	Diagnostics []*ferrors.ClassifiedError

	byID map[string]*Project
}

// Option configures Load and Parse.
type Option func(*loadOptions)

type loadOptions struct {
	logger *slog.Logger
}

// WithLogger routes load diagnostics to logger instead of slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

var (
	reFormatVersion = regexp.MustCompile(`Format Version ([^\n]*)`)
	reProjectBlock  = regexp.MustCompile(`(?ms)^Project.*?^EndProject$`)
	reProjectFields = regexp.MustCompile(`Project\("(?P<type>.*?)"\)\s*=\s*"(?P<name>.*?)"\s*,\s*"(?P<path>.*?)"\s*,\s*"(?P<id>.*?)"`)

	reSolutionConfigs = regexp.MustCompile(`(?s)GlobalSection\(SolutionConfigurationPlatforms\)\s*=\s*preSolution(.*?)EndGlobalSection`)
	reSolutionConfig  = regexp.MustCompile(`^\s*(.*?)\|(.*?)\s*=.*$`)

	reProjectConfigs = regexp.MustCompile(`(?s)GlobalSection\(ProjectConfigurationPlatforms\)\s*=\s*postSolution(.*?)EndGlobalSection`)
	reProjectConfig  = regexp.MustCompile(`^\s*(\{[A-Za-z0-9-]*\})\.(.*?)\|(.*?)\.(.*?)\s*=\s*(.*?)\|(.*?)\s*$`)

	reNested     = regexp.MustCompile(`(?s)GlobalSection\(NestedProjects\)\s*=\s*preSolution(.*?)EndGlobalSection`)
	reNestedItem = regexp.MustCompile(`^\s*(\{[A-Za-z0-9-]*\})\s*=\s*(\{[A-Za-z0-9-]*\})\s*$`)
)

// Project configuration properties understood by the loader.
const (
	propActiveCfg = "ActiveCfg"
	propBuild     = "Build.0"
)

// Load reads and parses the solution file at path.
func Load(path string, opts ...Option) (*Solution, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryIO, "cannot resolve solution path").
			WithContext("path", path).Build()
	}
	data, err := readText(abs)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryIO, "cannot read solution file").
			Fatal().
			WithContext("path", abs).
			Build()
	}
	return Parse(abs, string(data), opts...)
}

// Parse builds a Solution from already read text. path locates the solution
// on disk and anchors relative project paths.
func Parse(path, text string, opts ...Option) (*Solution, error) {
	o := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(logfields.Solution(path))

	text = strings.ReplaceAll(text, "\r\n", "\n")

	m := reFormatVersion.FindStringSubmatch(text)
	if m == nil || strings.TrimSpace(m[1]) == "" {
		return nil, ferrors.MalformedFormatError("solution file has no format version").
			WithContext("path", path).
			Build()
	}

	s := &Solution{
		Path:          path,
		Dir:           filepath.Dir(path),
		FormatVersion: strings.TrimSpace(m[1]),
		Matrix:        NewConfigMatrix(),
		byID:          make(map[string]*Project),
	}

	s.parseProjects(text, logger)
	s.parseSolutionConfigs(text)
	s.parseProjectConfigs(text)
	s.parseNesting(text)

	for _, def := range s.Definitions {
		p, diag := loadProject(def, s, logger)
		if diag != nil {
			s.Diagnostics = append(s.Diagnostics, diag)
		}
		s.Projects = append(s.Projects, p)
		s.byID[canonicalID(def.ID)] = p
	}
	s.buildForest()

	logger.Debug("Solution loaded",
		slog.String("format_version", s.FormatVersion),
		logfields.Count(len(s.Projects)),
		slog.Int("diagnostics", len(s.Diagnostics)))
	return s, nil
}

func (s *Solution) parseProjects(text string, logger *slog.Logger) {
	for _, block := range reProjectBlock.FindAllString(text, -1) {
		m := reProjectFields.FindStringSubmatch(block)
		if m == nil {
			header, _, _ := strings.Cut(block, "\n")
			diag := ferrors.MalformedProjectError("project record could not be parsed").
				WithContext("record", header).
				Build()
			s.Diagnostics = append(s.Diagnostics, diag)
			logger.Warn("Skipping malformed project record", slog.String("record", header))
			continue
		}
		def := ProjectDefinition{
			TypeID: m[reProjectFields.SubexpIndex("type")],
			Name:   m[reProjectFields.SubexpIndex("name")],
			Path:   m[reProjectFields.SubexpIndex("path")],
			ID:     m[reProjectFields.SubexpIndex("id")],
		}
		kind, known := ResolveKind(def.TypeID)
		def.Kind = kind
		if !known {
			diag := ferrors.MalformedProjectError("unknown project type, treating as native").
				Warning().
				WithContext("project", def.Name).
				WithContext("type", def.TypeID).
				Build()
			s.Diagnostics = append(s.Diagnostics, diag)
			logger.Warn("Unknown project type",
				logfields.Project(def.Name), slog.String("type", def.TypeID))
		}
		s.Definitions = append(s.Definitions, def)
	}
}

func (s *Solution) parseSolutionConfigs(text string) {
	section := reSolutionConfigs.FindStringSubmatch(text)
	if section == nil {
		return
	}
	for _, line := range strings.Split(section[1], "\n") {
		m := reSolutionConfig.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		s.Matrix.AddVariant(strings.TrimSpace(m[1]), strings.TrimSpace(m[2]))
	}
}

func (s *Solution) parseProjectConfigs(text string) {
	section := reProjectConfigs.FindStringSubmatch(text)
	if section == nil {
		return
	}
	known := make(sets.Set[string], len(s.Definitions))
	for _, def := range s.Definitions {
		known.Add(canonicalID(def.ID))
	}
	for _, line := range strings.Split(section[1], "\n") {
		m := reProjectConfig.FindStringSubmatch(line)
		if m == nil || !known.Has(canonicalID(m[1])) {
			continue
		}
		entry := s.Matrix.GetOrCreate(m[1], strings.TrimSpace(m[2]), strings.TrimSpace(m[3]))
		switch prop := strings.TrimSpace(m[4]); prop {
		case propActiveCfg:
			s.Matrix.SetActiveCfg(entry, strings.TrimSpace(m[5]), strings.TrimSpace(m[6]))
		case propBuild:
			s.Matrix.MarkBuilds(entry)
		}
	}
}

func (s *Solution) parseNesting(text string) {
	section := reNested.FindStringSubmatch(text)
	if section == nil {
		return
	}
	index := make(map[string]int, len(s.Definitions))
	for i, def := range s.Definitions {
		index[canonicalID(def.ID)] = i
	}
	for _, line := range strings.Split(section[1], "\n") {
		m := reNestedItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if i, ok := index[canonicalID(m[1])]; ok {
			s.Definitions[i].ParentID = m[2]
		}
	}
}

// buildForest links every project to its parent in a single pass over the
// already resolved ids. A parent id that names no project, or the project
// itself, leaves the project at the root.
func (s *Solution) buildForest() {
	for _, p := range s.Projects {
		if p.ParentID == "" {
			s.Roots = append(s.Roots, p)
			continue
		}
		parent, ok := s.byID[canonicalID(p.ParentID)]
		if !ok || parent == p {
			s.Roots = append(s.Roots, p)
			continue
		}
		p.Parent = parent
		parent.Children = append(parent.Children, p)
	}
}

// Project returns the project with the given id.
func (s *Solution) Project(id string) (*Project, bool) {
	p, ok := s.byID[canonicalID(id)]
	return p, ok
}

// FileName is the base name of the solution file.
func (s *Solution) FileName() string {
	return filepath.Base(s.Path)
}

// WalkProjects visits the forest depth first from the roots. Each project is
// visited at most once.
func (s *Solution) WalkProjects(fn func(p *Project, depth int)) {
	seen := make(sets.Set[*Project], len(s.Projects))
	var visit func(*Project, int)
	visit = func(p *Project, depth int) {
		if seen.Has(p) {
			return
		}
		seen.Add(p)
		fn(p, depth)
		for _, c := range p.Children {
			visit(c, depth+1)
		}
	}
	for _, r := range s.Roots {
		visit(r, 0)
	}
}
