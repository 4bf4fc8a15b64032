package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/poparab/jarz-pos-terminal/internal/board"
	"github.com/poparab/jarz-pos-terminal/internal/cart"
)

// View renders the current view.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var content string

	switch m.viewState {
	case ViewProfilePicker:
		content = m.viewProfilePicker()
	case ViewCatalog:
		content = m.viewCatalog()
	case ViewBundlePicker:
		content = m.viewBundlePicker()
	case ViewCart:
		content = m.viewCart()
	case ViewCustomerSearch:
		content = m.viewCustomerSearch()
	case ViewNewCustomer:
		content = m.viewNewCustomer()
	case ViewDelivery:
		content = m.viewDelivery()
	case ViewCheckout:
		content = m.viewCheckout()
	case ViewBoard:
		content = m.viewBoard()
	case ViewConfirmation:
		content = m.viewConfirmation()
	}

	return m.styles.App.Render(content)
}

func (m Model) header(title string) string {
	h := m.styles.HeaderTitle.Render(title)
	if m.activeProfile != "" {
		h += m.styles.Subtle.Render("  [" + m.activeProfile + "]")
	}
	if m.pendingLen > 0 {
		h += m.styles.Warning.Render(fmt.Sprintf("  %d pending sync", m.pendingLen))
	}
	return m.styles.Header.Render(h)
}

func (m Model) errorLine() string {
	if m.err == nil {
		return ""
	}
	return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n"
}

func (m Model) viewProfilePicker() string {
	var sb strings.Builder
	sb.WriteString(m.header("Select POS Profile"))
	sb.WriteString("\n")
	sb.WriteString(m.errorLine())

	if m.loadingProfiles {
		sb.WriteString(m.spin.View())
		sb.WriteString(" Loading profiles...")
	} else if len(m.profiles) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No profiles available"))
	} else {
		for i, p := range m.profiles {
			line := "  " + p.Name
			if i == m.profileIdx {
				line = m.styles.Highlight.Render("> " + p.Name)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("up/down select - enter open - r refresh - q quit"))
	return sb.String()
}

func (m Model) viewCatalog() string {
	var sb strings.Builder
	sb.WriteString(m.header("Catalog"))
	sb.WriteString("\n")
	sb.WriteString(m.errorLine())

	productsTab := "Products"
	bundlesTab := "Bundles"
	if m.catalogTab == TabProducts {
		productsTab = m.styles.Highlight.Render(productsTab)
		bundlesTab = m.styles.Subtle.Render(bundlesTab)
	} else {
		productsTab = m.styles.Subtle.Render(productsTab)
		bundlesTab = m.styles.Highlight.Render(bundlesTab)
	}
	sb.WriteString(productsTab + "  " + bundlesTab)
	sb.WriteString("\n")

	if m.filtering || m.filterInput.Value() != "" {
		sb.WriteString("Filter: ")
		sb.WriteString(m.filterInput.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if m.loadingCatalog {
		sb.WriteString(m.spin.View())
		sb.WriteString(" Loading catalog...")
	} else if m.catalogTab == TabProducts {
		visible := m.visibleProducts()
		if len(visible) == 0 {
			sb.WriteString(m.styles.Subtle.Render("No products for this profile"))
		}
		for i, p := range visible {
			cursor := "  "
			name := m.styles.ItemName.Render(p.Name)
			if i == m.catalogIdx {
				cursor = m.styles.Highlight.Render("> ")
				name = m.styles.Highlight.Render(p.Name)
			}
			line := fmt.Sprintf("%s%s  %s", cursor, name, m.styles.ItemPrice.Render(m.moneyFmt.Format(p.Price)))
			if p.ItemGroup != "" {
				line += "  " + m.styles.ItemGroup.Render(p.ItemGroup)
			}
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	} else {
		visible := m.visibleBundles()
		if len(visible) == 0 {
			sb.WriteString(m.styles.Subtle.Render("No bundles for this profile"))
		}
		for i, b := range visible {
			cursor := "  "
			name := m.styles.ItemName.Render(b.Name)
			if i == m.catalogIdx {
				cursor = m.styles.Highlight.Render("> ")
				name = m.styles.Highlight.Render(b.Name)
			}
			sb.WriteString(fmt.Sprintf("%s%s  %s  %s",
				cursor, name,
				m.styles.ItemPrice.Render(m.moneyFmt.Format(b.Price)),
				m.styles.ItemGroup.Render(fmt.Sprintf("%d groups", len(b.Groups)))))
			sb.WriteString("\n")
		}
	}

	cartInfo := ""
	if m.localCart.ItemCount() > 0 {
		totals := cart.ComputeTotals(m.localCart.Items, m.localCart.DeliveryIncome)
		cartInfo = fmt.Sprintf(" - cart: %d items (%s)", m.localCart.ItemCount(), m.moneyFmt.Format(totals.GrandTotal))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("tab switch - / filter - enter add - c cart - b board - r refresh - q quit" + cartInfo))
	return sb.String()
}

func (m Model) viewBundlePicker() string {
	if m.bundleSel == nil {
		return "No bundle selected"
	}
	b := m.bundleSel.Bundle()

	var sb strings.Builder
	sb.WriteString(m.styles.ListTitle.Render(fmt.Sprintf("%s  %s", b.Name, m.moneyFmt.Format(b.Price))))
	sb.WriteString("\n\n")

	for gi, g := range b.Groups {
		title := fmt.Sprintf("%s (%d/%d)", g.Name, m.bundleSel.GroupTotal(g.Name), g.Quantity)
		if m.bundleSel.GroupTotal(g.Name) == g.Quantity {
			title += " " + m.styles.Success.Render("ok")
		}
		if gi == m.bundleGroupIdx {
			sb.WriteString(m.styles.Highlight.Render(title))
		} else {
			sb.WriteString(m.styles.Subtle.Render(title))
		}
		sb.WriteString("\n")

		for ii, item := range g.Items {
			cursor := "    "
			if gi == m.bundleGroupIdx && ii == m.bundleItemIdx {
				cursor = m.styles.Highlight.Render("  > ")
			}
			count := m.bundleSel.Count(g.Name, item.ID)
			marker := "   "
			if count > 0 {
				marker = m.styles.Success.Render(fmt.Sprintf("x%d ", count))
			}
			sb.WriteString(fmt.Sprintf("%s%s%s", cursor, marker, item.Name))
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	help := "left/right group - up/down item - +/- pick - esc cancel"
	if m.bundleSel.IsComplete() {
		help += " - " + m.styles.Success.Render("enter confirm")
	}
	sb.WriteString(m.styles.HelpBar.Render(help))
	return m.styles.Box.Render(sb.String())
}

func (m Model) viewCart() string {
	var sb strings.Builder
	sb.WriteString(m.header("Cart"))
	sb.WriteString("\n")

	if m.localCart.IsEmpty() {
		sb.WriteString(m.styles.Subtle.Render("Cart is empty"))
		sb.WriteString("\n\n")
		sb.WriteString(m.styles.HelpBar.Render("esc back to catalog"))
		return sb.String()
	}

	for i, item := range m.localCart.Items {
		cursor := "  "
		if i == m.cartIdx {
			cursor = m.styles.Highlight.Render("> ")
		}
		line := fmt.Sprintf("%s%s  %s x%d = %s",
			cursor, item.Name,
			m.moneyFmt.Format(item.Price), item.Qty,
			m.moneyFmt.Format(item.LineTotal()))
		if item.IsDelivery {
			line += "  " + m.styles.ItemGroup.Render("delivery")
		}
		if i == m.cartIdx {
			sb.WriteString(m.styles.Highlight.Render(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")

		for _, sub := range item.SubItems {
			sb.WriteString(m.styles.Subtle.Render("      - " + sub.Name))
			sb.WriteString("\n")
		}
	}

	totals := cart.ComputeTotals(m.localCart.Items, m.localCart.DeliveryIncome)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Net: %s\n", m.moneyFmt.Format(totals.Net)))
	if !totals.DeliveryIncome.IsZero() {
		sb.WriteString(fmt.Sprintf("Delivery: %s\n", m.moneyFmt.Format(totals.DeliveryIncome)))
	}
	sb.WriteString(m.styles.ItemPrice.Render(fmt.Sprintf("Total: %s", m.moneyFmt.Format(totals.GrandTotal))))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.HelpBar.Render("up/down select - +/- qty - d delete - enter checkout - esc back"))
	return sb.String()
}

func (m Model) viewCustomerSearch() string {
	var sb strings.Builder
	sb.WriteString(m.header("Customer"))
	sb.WriteString("\n")
	sb.WriteString(m.errorLine())

	sb.WriteString("Search: ")
	sb.WriteString(m.searchInput.View())
	sb.WriteString("\n\n")

	visible := m.visibleCustomers()
	if m.searchInput.Value() == "" && len(visible) > 0 {
		sb.WriteString(m.styles.Subtle.Render("Recent:"))
		sb.WriteString("\n")
	}

	if m.searching {
		sb.WriteString(m.spin.View())
		sb.WriteString(" Searching...")
		sb.WriteString("\n")
	}

	for i, c := range visible {
		cursor := "  "
		if i == m.resultIdx {
			cursor = m.styles.Highlight.Render("> ")
		}
		line := fmt.Sprintf("%s%s", cursor, c.CustomerName)
		if c.MobileNo != "" {
			line += "  " + m.styles.Subtle.Render(c.MobileNo)
		}
		if i == m.resultIdx {
			sb.WriteString(m.styles.Highlight.Render(line))
		} else {
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	if m.searchInput.Value() != "" && !m.searching && len(visible) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No matches"))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("type to search - up/down select - enter choose - ctrl+n new customer - esc back"))
	return sb.String()
}

func (m Model) viewNewCustomer() string {
	var sb strings.Builder
	sb.WriteString(m.styles.ListTitle.Render("New Customer"))
	sb.WriteString("\n\n")
	sb.WriteString(m.errorLine())

	if m.submitting {
		sb.WriteString(m.spin.View())
		sb.WriteString(" Creating customer...")
	} else if m.customerForm != nil {
		sb.WriteString(m.customerForm.View())
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("esc back"))
	return m.styles.Box.Render(sb.String())
}

func (m Model) viewDelivery() string {
	var sb strings.Builder
	sb.WriteString(m.header("Delivery"))
	sb.WriteString("\n")
	sb.WriteString(m.errorLine())

	if m.selectedTarget != nil {
		sb.WriteString(fmt.Sprintf("Customer: %s\n\n", m.selectedTarget.CustomerName))
	}

	if m.loadingCities {
		sb.WriteString(m.spin.View())
		sb.WriteString(" Loading cities...")
	} else if len(m.cities) == 0 {
		sb.WriteString(m.styles.Subtle.Render("No deliverable cities"))
	} else {
		sb.WriteString(m.styles.Subtle.Render("Deliver to:"))
		sb.WriteString("\n")
		for i, city := range m.cities {
			cursor := "  "
			if i == m.cityIdx {
				cursor = m.styles.Highlight.Render("> ")
			}
			line := fmt.Sprintf("%s%s  %s", cursor, city.CityName,
				m.styles.ItemPrice.Render(m.moneyFmt.Format(city.DeliveryIncome)))
			if i == m.cityIdx {
				sb.WriteString(m.styles.Highlight.Render(line))
			} else {
				sb.WriteString(line)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("up/down city - enter deliver - p pickup - esc back"))
	return sb.String()
}

func (m Model) viewCheckout() string {
	var sb strings.Builder
	sb.WriteString(m.header("Checkout"))
	sb.WriteString("\n")
	sb.WriteString(m.errorLine())

	if m.submitting {
		sb.WriteString(m.spin.View())
		sb.WriteString(" Submitting invoice...")
		return sb.String()
	}

	if m.selectedTarget != nil {
		sb.WriteString(fmt.Sprintf("Customer: %s\n", m.selectedTarget.CustomerName))
	}
	if m.localCart.CityName != "" {
		sb.WriteString(fmt.Sprintf("City: %s\n", m.localCart.CityName))
	} else {
		sb.WriteString("Pickup order\n")
	}
	sb.WriteString("\n")

	for _, item := range m.localCart.Items {
		sb.WriteString(fmt.Sprintf("  %s x%d = %s\n", item.Name, item.Qty, m.moneyFmt.Format(item.LineTotal())))
	}

	totals := cart.ComputeTotals(m.localCart.Items, m.localCart.DeliveryIncome)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Net: %s\n", m.moneyFmt.Format(totals.Net)))
	if !totals.DeliveryIncome.IsZero() {
		sb.WriteString(fmt.Sprintf("Delivery: %s\n", m.moneyFmt.Format(totals.DeliveryIncome)))
	}
	sb.WriteString(m.styles.ItemPrice.Render(fmt.Sprintf("Total: %s", m.moneyFmt.Format(totals.GrandTotal))))
	sb.WriteString("\n\n")
	sb.WriteString(m.styles.HelpBar.Render("enter submit - esc back"))
	return sb.String()
}

func (m Model) viewBoard() string {
	var sb strings.Builder
	sb.WriteString(m.header("Order Board"))
	sb.WriteString("\n")
	sb.WriteString(m.errorLine())

	if m.loadingBoard {
		sb.WriteString(m.spin.View())
		sb.WriteString(" Loading invoices...")
		sb.WriteString("\n")
		return sb.String()
	}

	colWidth := (m.width - 12) / len(board.Columns)
	if colWidth < 16 {
		colWidth = 16
	}

	columns := make([]string, 0, len(board.Columns))
	for ci, col := range board.Columns {
		var cb strings.Builder
		cb.WriteString(m.styles.BoardColumnTitle.Render(fmt.Sprintf("%s (%d)", col, len(m.grouped[col]))))
		cb.WriteString("\n")

		for ri, inv := range m.grouped[col] {
			card := fmt.Sprintf("%s\n%s - %d items", inv.Name, m.moneyFmt.Format(inv.Amount), inv.Items)
			if created := inv.CreationTime(); !created.IsZero() {
				card += "\n" + humanize.Time(created)
			}
			if inv.Courier != "" {
				card += "\n" + inv.Courier
			}
			style := m.styles.BoardCard
			if ci == m.boardCol && ri == m.boardRow {
				style = m.styles.BoardCardSelected
			}
			cb.WriteString(style.Render(card))
			cb.WriteString("\n\n")
		}

		colStyle := m.styles.BoardColumn
		if ci == m.boardCol {
			colStyle = m.styles.BoardColumnActive
		}
		columns = append(columns, colStyle.Width(colWidth).Render(cb.String()))
	}
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, columns...))

	if m.notice != "" {
		sb.WriteString("\n")
		sb.WriteString(m.styles.Success.Render(m.notice))
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("left/right column - up/down card - enter advance - r refresh - esc back"))
	return sb.String()
}

func (m Model) viewConfirmation() string {
	var sb strings.Builder

	if m.queuedOffline {
		sb.WriteString(m.styles.Warning.Render("Saved offline"))
		sb.WriteString("\n\n")
		sb.WriteString("The backend is unreachable. The invoice was queued and\n")
		sb.WriteString("will sync automatically when the connection returns.\n")
		sb.WriteString(fmt.Sprintf("\nPending invoices: %d\n", m.pendingLen))
	} else {
		sb.WriteString(m.styles.Success.Render("Invoice submitted"))
		sb.WriteString("\n\n")
		if m.confirmedName != "" {
			sb.WriteString(fmt.Sprintf("Invoice: %s\n", m.confirmedName))
		}
	}

	sb.WriteString("\n")
	sb.WriteString(m.styles.HelpBar.Render("enter back to catalog"))
	return m.styles.Box.Render(sb.String())
}
