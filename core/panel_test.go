package core

import (
	"testing"

	"pkt.systems/lumina/schema"
)

func TestNextPanel(t *testing.T) {
	for _, current := range schema.Panels() {
		for _, selected := range schema.Panels() {
			got := nextPanel(current, selected)
			want := selected
			if current == selected {
				want = schema.PanelNone
			}
			if got != want {
				t.Fatalf("nextPanel(%q, %q) = %q, want %q", current, selected, got, want)
			}
		}
	}
}
