package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jewgo/jewgo/internal/location"
	"github.com/jewgo/jewgo/internal/tui/styles"
)

// View renders the whole screen
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	if m.State == StateSearching {
		return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, m.Omnibar.View())
	}

	columns := []string{m.Sidebar.View(), m.Grid.View()}
	if m.ShowInspector {
		// Hearts can flip between frames, so read them at render time
		m.syncInspector()
		columns = append(columns, m.Inspector.View())
	}
	content := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), content, m.renderFooter())
}

// renderHeader shows the location and the account on one line
func (m Model) renderHeader() string {
	where := location.FormatDisplay(m.Where.Location)
	switch {
	case m.Where.Loading:
		where = m.Spinner.View() + " Locating..."
	case m.Where.PermissionDenied:
		where = "Location permission denied"
	}

	account := "Guest"
	if m.account != "" {
		account = m.account
	}
	if m.favorites != nil {
		account += fmt.Sprintf(" · %s %d", styles.FavoriteChar, m.favorites.Count())
	}

	left := styles.AccentStyle.Render("📍 " + where)
	right := styles.DimStyle.Render(account)
	gap := max(m.Width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

// renderFooter shows the status message, or the short help
func (m Model) renderFooter() string {
	if m.StatusMsg != "" {
		style := styles.SuccessStyle
		if m.StatusIsErr {
			style = styles.ErrorStyle
		}
		return style.Render(styles.Truncate(m.StatusMsg, m.Width))
	}
	if m.Snapshot.Loading || m.Snapshot.Refreshing {
		return m.Spinner.View() + " " + styles.DimStyle.Render(m.Help.View(Keys))
	}
	return m.Help.View(Keys)
}

func (m Model) renderHelp() string {
	title := styles.ModalTitleStyle.Render("Keyboard shortcuts")
	body := m.Help.View(Keys)
	box := styles.ModalStyle.Render(title + "\n" + body)
	return lipgloss.Place(m.Width, m.Height, lipgloss.Center, lipgloss.Center, box)
}
