package panels

import (
	"constellation/internal/app"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// InfoBar shows the back control, the current or hovered cluster name,
// the search entry and the status message.
type InfoBar struct {
	container *fyne.Container
	back      *widget.Button
	info      *widget.Label
	search    *widget.Entry
	status    *widget.Label

	onBack   func()
	onSearch func(query string)
}

// NewInfoBar creates the info bar. The search entry is omitted when
// searchEnabled is false.
func NewInfoBar(searchEnabled bool) *InfoBar {
	ib := &InfoBar{}

	ib.back = widget.NewButtonWithIcon("Back", theme.NavigateBackIcon(), func() {
		if ib.onBack != nil {
			ib.onBack()
		}
	})
	ib.back.Hide()

	ib.info = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	ib.info.Truncation = fyne.TextTruncateEllipsis
	ib.status = widget.NewLabel("")

	ib.search = widget.NewEntry()
	ib.search.SetPlaceHolder("Search artist...")
	ib.search.OnSubmitted = func(q string) {
		if ib.onSearch != nil {
			ib.onSearch(q)
		}
	}

	right := container.NewHBox(ib.status)
	if searchEnabled {
		right.Add(container.NewGridWrap(fyne.NewSize(220, ib.search.MinSize().Height), ib.search))
	}
	ib.container = container.NewBorder(nil, nil, ib.back, right, ib.info)
	return ib
}

// Container returns the bar container.
func (ib *InfoBar) Container() fyne.CanvasObject {
	return ib.container
}

// OnBack sets the callback for the back button.
func (ib *InfoBar) OnBack(callback func()) {
	ib.onBack = callback
}

// OnSearch sets the callback for a submitted search.
func (ib *InfoBar) OnSearch(callback func(query string)) {
	ib.onSearch = callback
}

// Update reflects v.
func (ib *InfoBar) Update(v app.View) {
	if v.CanBack() {
		ib.back.Show()
	} else {
		ib.back.Hide()
	}
	ib.info.SetText(v.Info())
	ib.status.SetText(v.Status)
}

// SetStatus replaces the status message.
func (ib *InfoBar) SetStatus(msg string) {
	ib.status.SetText(msg)
}
