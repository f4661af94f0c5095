package domain

// StyleSource discriminates the active style reference kind.
type StyleSource string

const (
	StylePreset StyleSource = "preset"
	StyleUpload StyleSource = "upload"
)

// StylePresetInfo is a tenant-configured style a visitor can pick.
type StylePresetInfo struct {
	ID            string
	Name          string
	Description   string
	ReferenceURL  string
	PricePerFtMin float64
	PricePerFtMax float64
}

// Monetized reports whether the preset carries a price-per-foot range and
// therefore routes through the estimate funnel.
func (p StylePresetInfo) Monetized() bool {
	return p.PricePerFtMin > 0 && p.PricePerFtMax > 0
}

// StyleReference is a tagged union: exactly one of Preset or Upload is set,
// keyed by Source.
type StyleReference struct {
	Source StyleSource
	Preset *StylePresetInfo
	Upload []byte
}

// Valid reports whether the union holds exactly the variant its tag names.
func (s StyleReference) Valid() bool {
	switch s.Source {
	case StylePreset:
		return s.Preset != nil && len(s.Upload) == 0
	case StyleUpload:
		return len(s.Upload) > 0 && s.Preset == nil
	}
	return false
}

// Name returns a human-readable label for the active style.
func (s StyleReference) Name() string {
	if s.Source == StylePreset && s.Preset != nil {
		return s.Preset.Name
	}
	return "custom style"
}
