package generate

import (
	"fmt"
	"strings"

	"stairviz/internal/domain"
)

// BuildInstruction composes the fixed edit instruction sent with every
// generation request. The wording is deliberately constant apart from the
// style descriptor so renders stay comparable across tenants.
func BuildInstruction(style domain.StyleReference) string {
	parts := []string{
		"Edit the uploaded staircase photo into a photorealistic render.",
	}
	switch style.Source {
	case domain.StylePreset:
		if style.Preset != nil {
			parts = append(parts, fmt.Sprintf("Apply the %q style.", style.Preset.Name))
			if desc := strings.TrimSpace(style.Preset.Description); desc != "" {
				parts = append(parts, "Style notes: "+desc+".")
			}
		}
	case domain.StyleUpload:
		parts = append(parts, "Apply the materials and finish shown in the attached style reference image.")
	}
	parts = append(parts,
		"Keep the staircase geometry, camera angle and room layout unchanged.",
		"Do not add or remove steps, railings or walls.",
		"Natural lighting, no blur, no artifacts.")
	return strings.Join(parts, " ")
}
