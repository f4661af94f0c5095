package domain

// TenantSettings is the per-customer configuration the embedded tool needs:
// which domains may embed it, which logos watermark exports, and which style
// presets are offered.
type TenantSettings struct {
	ID             string
	Name           string
	EmbedWhitelist []string
	// WatermarkURL is the tenant's dedicated watermark image; when empty the
	// tenant's main logo is used instead.
	WatermarkURL string
	LogoURL      string
	Presets      []StylePresetInfo
}

// TenantWatermark resolves the image used for the tenant's corner watermark.
func (t TenantSettings) TenantWatermark() string {
	if t.WatermarkURL != "" {
		return t.WatermarkURL
	}
	return t.LogoURL
}

// PresetByID returns the preset with the given id, if configured.
func (t TenantSettings) PresetByID(id string) (StylePresetInfo, bool) {
	for _, p := range t.Presets {
		if p.ID == id {
			return p, true
		}
	}
	return StylePresetInfo{}, false
}
