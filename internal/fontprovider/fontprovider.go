// Package fontprovider defines the Font/Provider collaborator the layout
// engine uses to measure text, and a deterministic default implementation
// so the rest of the module can run headlessly, without a real font
// backend (spec.md §1's "FontProvider" opaque collaborator).
package fontprovider

// Font measures a single (family, size, weight, style) combination, the
// same quantities original_source ui.py pulls off a tkinter.font.Font via
// measure()/metrics().
type Font interface {
	// Measure returns the rendered width of text in pixels.
	Measure(text string) int
	// Ascent is the pixel distance from the baseline to the font's top.
	Ascent() int
	// Descent is the pixel distance from the baseline to the font's bottom.
	Descent() int
	// LineHeight is the recommended distance between successive baselines.
	LineHeight() int
}

// Provider resolves a Font for a given style triple, caching as it sees
// fit. Implementations must be safe for concurrent use since layout may be
// invoked from multiple tabs.
type Provider interface {
	Font(sizePx int, weight, style string) Font
}

// Default is a deterministic, backend-free Provider: every glyph is
// sizePx*0.6 pixels wide (a reasonable proportional-to-monospace
// approximation), bold/italic add no width adjustment since no real
// glyph table exists to consult. It exists so layout and paint can be
// exercised in tests without a GUI toolkit or system fonts.
type Default struct{}

// Font implements Provider.
func (Default) Font(sizePx int, weight, style string) Font {
	return defaultFont{size: sizePx}
}

type defaultFont struct {
	size int
}

func (f defaultFont) Measure(text string) int {
	return len([]rune(text)) * (f.size * 3 / 5)
}

func (f defaultFont) Ascent() int     { return f.size * 3 / 4 }
func (f defaultFont) Descent() int    { return f.size / 4 }
func (f defaultFont) LineHeight() int { return f.size + f.size/4 }
