package canvas

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// FontOptions describes how a registered font file is selected.
type FontOptions struct {
	Family string `json:"family" toml:"family" yaml:"family"`
	Weight string `json:"weight,omitempty" toml:"weight" yaml:"weight"`
	Style  string `json:"style,omitempty" toml:"style" yaml:"style"`
}

// Font is a parsed CSS font shorthand.
type Font struct {
	Style    string
	Weight   string
	Size     float64
	Families []string
}

// String renders f back into CSS shorthand.
func (f Font) String() string {
	var b strings.Builder
	if f.Style != "" && f.Style != "normal" {
		b.WriteString(f.Style)
		b.WriteByte(' ')
	}
	if f.Weight != "" && f.Weight != "400" {
		b.WriteString(f.Weight)
		b.WriteByte(' ')
	}
	b.WriteString(strconv.FormatFloat(f.Size, 'f', -1, 64))
	b.WriteString("px ")
	b.WriteString(strings.Join(f.Families, ", "))
	return b.String()
}

// Bold reports whether the weight is 600 or heavier.
func (f Font) Bold() bool {
	w, err := strconv.Atoi(f.Weight)
	return err == nil && w >= 600
}

// Italic reports whether the style is italic or oblique.
func (f Font) Italic() bool {
	return f.Style == "italic" || f.Style == "oblique"
}

// ParseFont parses CSS font shorthand such as
// "bold 12px 'Helvetica Neue', Helvetica, Arial, sans-serif".
func ParseFont(s string) (Font, error) {
	f := Font{Style: "normal", Weight: "400"}
	fields := strings.Fields(s)
	for i, tok := range fields {
		lower := strings.ToLower(tok)
		switch lower {
		case "normal", "small-caps":
			continue
		case "italic", "oblique":
			f.Style = lower
			continue
		}
		if w := normalizeWeight(lower); w != "" {
			f.Weight = w
			continue
		}

		size, ok := parseFontSize(lower)
		if !ok {
			return Font{}, fmt.Errorf("font %q: missing size", s)
		}
		f.Size = size
		f.Families = splitFamilies(strings.Join(fields[i+1:], " "))
		if len(f.Families) == 0 {
			return Font{}, fmt.Errorf("font %q: missing family", s)
		}
		return f, nil
	}
	return Font{}, fmt.Errorf("font %q: missing size", s)
}

func parseFontSize(tok string) (float64, bool) {
	if slash := strings.IndexByte(tok, '/'); slash >= 0 {
		tok = tok[:slash]
	}
	scale := 1.0
	switch {
	case strings.HasSuffix(tok, "px"):
		tok = strings.TrimSuffix(tok, "px")
	case strings.HasSuffix(tok, "pt"):
		tok = strings.TrimSuffix(tok, "pt")
		scale = 4.0 / 3.0
	default:
		return 0, false
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * scale, true
}

func splitFamilies(s string) []string {
	var out []string
	for _, fam := range strings.Split(s, ",") {
		fam = strings.Trim(strings.TrimSpace(fam), `"'`)
		if fam != "" {
			out = append(out, fam)
		}
	}
	return out
}

func normalizeWeight(w string) string {
	switch strings.ToLower(strings.TrimSpace(w)) {
	case "", "normal":
		return ""
	case "bold", "bolder":
		return "700"
	case "lighter":
		return "300"
	}
	if n, err := strconv.Atoi(w); err == nil && n >= 100 && n <= 900 && n%100 == 0 {
		return w
	}
	return ""
}

type fontKey struct {
	family string
	bold   bool
	italic bool
}

type fontEntry struct {
	source *text.FontSource
	data   []byte
	key    fontKey
}

type faceKey struct {
	entry *fontEntry
	size  float64
}

// fontRegistry holds registered font files and the built-in Go fonts.
type fontRegistry struct {
	mu      sync.RWMutex
	entries map[fontKey]*fontEntry
	faces   map[faceKey]text.Face
}

const defaultFamily = "go"

func newFontRegistry() (*fontRegistry, error) {
	r := &fontRegistry{
		entries: make(map[fontKey]*fontEntry),
		faces:   make(map[faceKey]text.Face),
	}
	builtins := []struct {
		data         []byte
		bold, italic bool
	}{
		{goregular.TTF, false, false},
		{gobold.TTF, true, false},
		{goitalic.TTF, false, true},
		{gobolditalic.TTF, true, true},
	}
	for _, b := range builtins {
		if err := r.add(defaultFamily, b.bold, b.italic, b.data); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *fontRegistry) register(path string, opts FontOptions) error {
	if strings.TrimSpace(opts.Family) == "" {
		return fmt.Errorf("register font %s: family is required", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("register font: %w", err)
	}
	spec := Font{Weight: normalizeWeight(opts.Weight), Style: strings.ToLower(opts.Style)}
	if err := r.add(opts.Family, spec.Bold(), spec.Italic(), data); err != nil {
		return fmt.Errorf("register font %s: %w", path, err)
	}
	return nil
}

func (r *fontRegistry) add(family string, bold, italic bool, data []byte) error {
	src, err := text.NewFontSource(data)
	if err != nil {
		return err
	}
	key := fontKey{family: strings.ToLower(family), bold: bold, italic: italic}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.entries[key]; ok {
		for fk := range r.faces {
			if fk.entry == old {
				delete(r.faces, fk)
			}
		}
	}
	r.entries[key] = &fontEntry{source: src, data: data, key: key}
	return nil
}

// lookup picks the best registered entry for f, falling back to the Go fonts.
func (r *fontRegistry) lookup(f Font) *fontEntry {
	bold, italic := f.Bold(), f.Italic()

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fam := range f.Families {
		fam = strings.ToLower(fam)
		if e, ok := r.entries[fontKey{fam, bold, italic}]; ok {
			return e
		}
		if e, ok := r.entries[fontKey{fam, false, false}]; ok {
			return e
		}
	}
	return r.entries[fontKey{defaultFamily, bold, italic}]
}

func (r *fontRegistry) face(f Font) (text.Face, *fontEntry) {
	e := r.lookup(f)
	k := faceKey{entry: e, size: f.Size}

	r.mu.RLock()
	face, ok := r.faces[k]
	r.mu.RUnlock()
	if ok {
		return face, e
	}

	face = e.source.Face(f.Size)
	r.mu.Lock()
	r.faces[k] = face
	r.mu.Unlock()
	return face, e
}
