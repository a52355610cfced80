package ui

// StyleFunc renders one table cell or line. Keeping these as plain
// functions keeps the render helpers free of any styling dependency.
type StyleFunc func(string) string

type Styles struct {
	Header           StyleFunc
	Normal           StyleFunc
	Selected         StyleFunc
	Disabled         StyleFunc
	DisabledSelected StyleFunc
	Secondary        StyleFunc
}

// PlainStyles renders everything unstyled; used in tests and when color
// output is disabled.
func PlainStyles() Styles {
	identity := func(s string) string { return s }
	return Styles{
		Header:           identity,
		Normal:           identity,
		Selected:         identity,
		Disabled:         identity,
		DisabledSelected: identity,
		Secondary:        identity,
	}
}

// PadOrTrim fits s into exactly width cells, padding with spaces or
// trimming with a trailing ellipsis.
func PadOrTrim(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		if width == 1 {
			return "…"
		}
		return string(runes[:width-1]) + "…"
	}
	for len(runes) < width {
		runes = append(runes, ' ')
	}
	return string(runes)
}
