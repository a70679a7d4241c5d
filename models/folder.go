package models

// RootPath is the path key of the scanned root folder.
const RootPath = "/"

// RemoteEntry is one item returned by a single listing call against the remote store.
type RemoteEntry struct {
	ID       string
	Name     string
	IsFolder bool
	ViewURL  string
}

// FolderSection groups the files found directly inside one folder.
// Source is nil for folders synthesized from custom links.
type FolderSection struct {
	Path   string
	Source *RemoteEntry
	Files  []RemoteEntry
}

// Title is the display name of the section: the folder's own name for
// scanned folders and the raw key for synthetic ones.
func (f *FolderSection) Title() string {
	if f.Source != nil && f.Source.Name != "" {
		return f.Source.Name
	}
	return f.Path
}

// URL returns the folder's view URL, or "" if unknown.
func (f *FolderSection) URL() string {
	if f.Source == nil {
		return ""
	}
	return f.Source.ViewURL
}

// JoinPath computes the path of a child discovered under parent.
// Children of the root are addressed by their bare name.
func JoinPath(parent, name string) string {
	if parent == RootPath || parent == "" {
		return name
	}
	return parent + "/" + name
}

// FolderMap is an insertion-ordered mapping from folder path to section.
type FolderMap struct {
	keys     []string
	sections map[string]*FolderSection
}

func NewFolderMap() *FolderMap {
	return &FolderMap{sections: make(map[string]*FolderSection)}
}

// Add inserts section under its path. If the path is already present the
// files are appended to the existing section and false is returned.
func (m *FolderMap) Add(section *FolderSection) bool {
	if existing, ok := m.sections[section.Path]; ok {
		existing.Files = append(existing.Files, section.Files...)
		return false
	}
	m.keys = append(m.keys, section.Path)
	m.sections[section.Path] = section
	return true
}

func (m *FolderMap) Get(path string) (*FolderSection, bool) {
	s, ok := m.sections[path]
	return s, ok
}

func (m *FolderMap) Len() int {
	return len(m.keys)
}

// Sections returns the sections in insertion order.
func (m *FolderMap) Sections() []*FolderSection {
	out := make([]*FolderSection, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.sections[k])
	}
	return out
}
