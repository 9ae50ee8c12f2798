// Package style discovers the CSS styles a resume can be rendered with.
//
// A style is a CSS file whose first line names it and credits its author:
//
//	/* Cloyola Grey $ https://github.com/cloyola */
package style

import (
	"bufio"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/resume-builder/internal/logging"
)

//go:embed styles/*.css
var builtin embed.FS

// CreateStyleChoice is the last entry of the style menu; picking it points the
// user at TutorialURL instead of generating a resume.
const CreateStyleChoice = "Create your resume style in CSS"

// TutorialURL explains how to contribute a new style.
const TutorialURL = "https://github.com/feder-cr/lib_resume_builder_AIHawk/blob/main/how_to_contribute/web_designer.md"

// ErrNotFound is returned for an unknown style name.
var ErrNotFound = errors.New("style not found")

// Style is one discovered stylesheet.
type Style struct {
	Name       string
	File       string
	AuthorLink string
}

// Choice formats the style as a menu entry.
func (s Style) Choice() string {
	return fmt.Sprintf("%s (style author -> %s)", s.Name, s.AuthorLink)
}

// NameFromChoice recovers the style name from a menu entry.
func NameFromChoice(choice string) string {
	name, _, _ := strings.Cut(choice, " (")
	return name
}

// Manager lists and reads styles from a file system.
type Manager struct {
	fsys fs.FS
	dir  string
	log  logrus.FieldLogger
}

// NewManager returns a Manager over fsys. dir is only used to build Path results.
func NewManager(fsys fs.FS, dir string, log logrus.FieldLogger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{fsys: fsys, dir: dir, log: log}
}

// NewDirManager returns a Manager over a styles directory.
func NewDirManager(dir string, log logrus.FieldLogger) *Manager {
	return NewManager(os.DirFS(dir), dir, log)
}

// Builtin returns a Manager over the styles shipped with the binary.
func Builtin(log logrus.FieldLogger) *Manager {
	sub, err := fs.Sub(builtin, "styles")
	if err != nil {
		panic(err)
	}
	return NewManager(sub, "", log)
}

// Styles returns the discovered styles sorted by name. An unreadable
// directory yields no styles and a warning.
func (m *Manager) Styles() []Style {
	entries, err := fs.ReadDir(m.fsys, ".")
	if err != nil {
		m.log.WithError(err).WithField("dir", m.dir).Warn("cannot read styles directory")
		return nil
	}

	seen := make(map[string]bool)
	var styles []Style
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name, link, err := m.readHeader(entry.Name())
		if err != nil {
			m.log.WithError(err).WithField("file", entry.Name()).Warn("skipping style file")
			continue
		}
		if seen[name] {
			m.log.WithFields(logrus.Fields{"file": entry.Name(), "style": name}).Warn("duplicate style name, keeping the first")
			continue
		}
		seen[name] = true
		styles = append(styles, Style{Name: name, File: entry.Name(), AuthorLink: link})
	}

	sort.Slice(styles, func(i, j int) bool { return styles[i].Name < styles[j].Name })
	return styles
}

func (m *Manager) readHeader(file string) (string, string, error) {
	f, err := m.fsys.Open(file)
	if err != nil {
		return "", "", err
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", "", err
		}
		return "", "", errors.New("file is empty")
	}
	return ParseHeader(scanner.Text())
}

// ParseHeader parses a "/* Name $ link */" first line.
func ParseHeader(line string) (name, authorLink string, err error) {
	line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
	if !strings.HasPrefix(line, "/*") || !strings.HasSuffix(line, "*/") || len(line) < 4 {
		return "", "", errors.New("first line is not a comment header")
	}
	content := strings.TrimSpace(line[2 : len(line)-2])
	name, authorLink, ok := strings.Cut(content, "$")
	if !ok {
		return "", "", errors.New("missing '$' separator in header")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", errors.New("style name is empty")
	}
	return name, strings.TrimSpace(authorLink), nil
}

// Choices returns the menu entries of every style followed by CreateStyleChoice.
func (m *Manager) Choices() []string {
	styles := m.Styles()
	choices := make([]string, 0, len(styles)+1)
	for _, s := range styles {
		choices = append(choices, s.Choice())
	}
	return append(choices, CreateStyleChoice)
}

// Lookup finds a style by name.
func (m *Manager) Lookup(name string) (Style, error) {
	for _, s := range m.Styles() {
		if s.Name == name {
			return s, nil
		}
	}
	return Style{}, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Path returns the location of a style's file.
func (m *Manager) Path(name string) (string, error) {
	s, err := m.Lookup(name)
	if err != nil {
		return "", err
	}
	if m.dir == "" {
		return path.Join("styles", s.File), nil
	}
	return filepath.Join(m.dir, s.File), nil
}

// Read returns a style's CSS.
func (m *Manager) Read(name string) (string, error) {
	s, err := m.Lookup(name)
	if err != nil {
		return "", err
	}
	css, err := fs.ReadFile(m.fsys, s.File)
	if err != nil {
		return "", fmt.Errorf("failed to read style %q: %w", name, err)
	}
	return string(css), nil
}
