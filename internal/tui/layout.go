package tui

// columnLayout holds calculated column widths for the View
type columnLayout struct {
	sidebarWidth   int
	gridWidth      int
	inspectorWidth int // 0 if not shown
}

// calculateColumnLayout splits the width into sidebar, grid and inspector
func (m Model) calculateColumnLayout(availableWidth int) columnLayout {
	applyMin := func(width int) int {
		return max(width, MinColumnWidth)
	}

	layout := columnLayout{
		sidebarWidth: applyMin(availableWidth * SidebarPercent / 100),
	}
	if m.ShowInspector {
		layout.inspectorWidth = applyMin(availableWidth * InspectorPercent / 100)
	}
	layout.gridWidth = applyMin(availableWidth - layout.sidebarWidth - layout.inspectorWidth)
	return layout
}

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := m.Height - ChromeHeight
	layout := m.calculateColumnLayout(m.Width)

	m.Sidebar.SetSize(layout.sidebarWidth, contentHeight)
	m.Grid.SetSize(layout.gridWidth, contentHeight)
	if m.ShowInspector {
		m.Inspector.SetSize(layout.inspectorWidth, contentHeight)
	}
	m.Omnibar.SetSize(m.Width, m.Height)
	m.Help.Width = m.Width
}
