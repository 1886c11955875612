package catalog

const (
	// PanelTop is how many leading members the side panel lists.
	PanelTop = 5
	// PanelTail is how many trailing members the side panel lists.
	PanelTail = 2
)

// PanelSelection returns the members listed in the side panel: the first
// PanelTop points followed by the last PanelTail, in order. Indices shared
// by both ranges appear once, so groups smaller than PanelTop+PanelTail are
// listed in full.
func PanelSelection(g *Group) []Point {
	if g == nil {
		return nil
	}
	n := len(g.Artists)
	top := min(PanelTop, n)
	out := make([]Point, 0, top+PanelTail)
	out = append(out, g.Artists[:top]...)

	tailStart := max(n-PanelTail, top)
	out = append(out, g.Artists[tailStart:]...)
	return out
}

// SplitPanel separates a panel selection back into its leading and trailing
// parts for display under separate headings.
func SplitPanel(sel []Point) (top, tail []Point) {
	if len(sel) <= PanelTop {
		return sel, nil
	}
	return sel[:PanelTop], sel[PanelTop:]
}
