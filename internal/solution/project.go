package solution

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
	"git.home.luguber.info/inful/solvent/internal/logfields"
	"git.home.luguber.info/inful/solvent/internal/util/sets"
)

// Project is one loaded project: its definition, its file tree and its place
// in the nesting forest.
type Project struct {
	ProjectDefinition

	// Root coincides with the project itself and holds its file tree.
	Root *Node
	// Files lists every file node in manifest order.
	Files []*Node
	// Loaded is false when no manifest could be read.
	Loaded bool
	// Manifest is the file the tree was read from.
	Manifest string
	// Namespace of the manifest root element.
	Namespace string

	Parent   *Project
	Children []*Project

	solution *Solution
}

// Solution returns the owning solution.
func (p *Project) Solution() *Solution { return p.solution }

// AbsolutePath is the project manifest path on disk.
func (p *Project) AbsolutePath() string {
	return p.ProjectDefinition.AbsolutePath(p.solution.Dir)
}

// AbsoluteDir is the directory project file paths are relative to.
func (p *Project) AbsoluteDir() string {
	return p.ProjectDefinition.AbsoluteDir(p.solution.Dir)
}

// manifest holds the root element name and every ItemGroup of a project or
// filter manifest in document order, including groups nested under
// conditional elements such as Choose/When. Element names match in any
// namespace.
type manifest struct {
	XMLName    xml.Name
	ItemGroups []manifestItemGroup
}

type manifestItemGroup struct {
	Label string         `xml:"Label,attr"`
	Items []manifestItem `xml:",any"`
}

type manifestItem struct {
	XMLName xml.Name
	Include *string `xml:"Include,attr"`
	Filter  string  `xml:"Filter"`
}

// Item tags that never denote a source file.
var skippedItemTags = sets.New("Filter", "ProjectReference")

// loadProject builds the Project for a definition. Generic projects get an
// empty tree. Native projects read <path>.filters and fall back to <path>;
// when both fail the project is returned unloaded with a diagnostic.
func loadProject(def ProjectDefinition, s *Solution, logger *slog.Logger) (*Project, *ferrors.ClassifiedError) {
	p := &Project{ProjectDefinition: def, solution: s}
	p.Root = &Node{Kind: NodeProjectRoot, Name: def.Name, project: p}

	if def.Kind == KindGeneric {
		p.Loaded = true
		return p, nil
	}

	abs := p.AbsolutePath()
	candidates := []string{abs + ".filters", abs}
	var lastErr error
	for _, candidate := range candidates {
		data, err := readText(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		doc, err := parseManifest(data)
		if err != nil {
			lastErr = err
			logger.Debug("Project manifest unparseable",
				logfields.Project(def.Name), logfields.Path(candidate), logfields.Error(err))
			continue
		}
		p.Manifest = candidate
		p.Namespace = doc.XMLName.Space
		p.populate(doc)
		p.Loaded = true
		return p, nil
	}

	diag := ferrors.WrapError(lastErr, ferrors.CategoryMissingProjectFile, "project manifest could not be opened").
		Warning().
		WithContext("project", def.Name).
		WithContext("path", abs).
		Build()
	logger.Warn("Project not loaded",
		logfields.Project(def.Name), logfields.Path(abs), logfields.Error(lastErr))
	return p, diag
}

func parseManifest(data []byte) (*manifest, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	// Input has already been decoded to UTF-8 whatever the prolog claims.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) { return input, nil }
	var doc manifest
	rooted := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if !rooted {
			doc.XMLName = se.Name
			rooted = true
			continue
		}
		if se.Name.Local != "ItemGroup" {
			continue
		}
		var group manifestItemGroup
		if err := dec.DecodeElement(&group, &se); err != nil {
			return nil, err
		}
		doc.ItemGroups = append(doc.ItemGroups, group)
	}
	if !rooted {
		return nil, io.ErrUnexpectedEOF
	}
	return &doc, nil
}

func (p *Project) populate(doc *manifest) {
	for _, group := range doc.ItemGroups {
		if group.Label != "" {
			continue
		}
		for _, item := range group.Items {
			if item.Include == nil || skippedItemTags.Has(item.XMLName.Local) {
				continue
			}
			folder := p.Root
			if filter := strings.TrimSpace(item.Filter); filter != "" {
				for _, segment := range strings.Split(filter, `\`) {
					if segment == "" {
						continue
					}
					folder = folder.child(segment)
				}
			}
			p.Files = append(p.Files, folder.addFile(*item.Include))
		}
	}
}
