// Command shop-cli is a terminal storefront: browse the catalog, fill the
// cart and check out against a running API server.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-api/pkg/client"
)

type view int

const (
	viewCatalog view = iota
	viewCart
	viewOrders
)

type model struct {
	api    *client.Client
	cart   *client.CartMirror
	view   view
	status string
	busy   bool

	products []client.Product
	orders   []client.Order
	cursor   int
}

func initialModel(api *client.Client) model {
	return model{
		api:    api,
		cart:   client.NewCartMirror(api),
		status: "Loading catalog...",
		busy:   true,
	}
}

type catalogLoaded struct {
	products []client.Product
	err      error
}

type ordersLoaded struct {
	orders []client.Order
	err    error
}

type actionDone struct {
	status string
}

func rpcCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func (m model) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := rpcCtx()
		defer cancel()
		products, err := m.api.Products(ctx, client.ListOptions{})
		if err == nil {
			err = m.cart.Refresh(ctx)
		}
		return catalogLoaded{products: products, err: err}
	}
}

func (m model) loadOrders() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := rpcCtx()
		defer cancel()
		orders, err := m.api.Orders(ctx)
		return ordersLoaded{orders: orders, err: err}
	}
}

func (m model) addToCart(productID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := rpcCtx()
		defer cancel()
		if err := m.cart.Add(ctx, productID, 1); err != nil {
			return actionDone{status: fmt.Sprintf("Add failed: %v", err)}
		}
		return actionDone{status: "Added to cart"}
	}
}

func (m model) removeFromCart(itemID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := rpcCtx()
		defer cancel()
		if err := m.cart.Remove(ctx, itemID); err != nil {
			return actionDone{status: fmt.Sprintf("Remove failed: %v", err)}
		}
		return actionDone{status: "Removed from cart"}
	}
}

func (m model) checkout() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := rpcCtx()
		defer cancel()
		o, err := m.cart.Checkout(ctx, "Set your address via the API", "credit_card", uuid.NewString())
		if err != nil {
			return actionDone{status: fmt.Sprintf("Checkout failed: %v", err)}
		}
		return actionDone{status: fmt.Sprintf("Order %s placed, total %.2f", o.ID, o.TotalAmount)}
	}
}

func (m model) Init() tea.Cmd {
	return m.loadCatalog()
}

func (m model) listLen() int {
	switch m.view {
	case viewCart:
		return m.cart.Len()
	case viewOrders:
		return len(m.orders)
	default:
		return len(m.products)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down":
			if m.cursor < m.listLen()-1 {
				m.cursor++
			}
		case "tab":
			m.view = (m.view + 1) % 3
			m.cursor = 0
			if m.view == viewOrders {
				return m, m.loadOrders()
			}
		case "r":
			m.busy = true
			m.status = "Refreshing..."
			return m, m.loadCatalog()
		case "enter":
			if m.busy {
				return m, nil
			}
			switch m.view {
			case viewCatalog:
				if m.cursor < len(m.products) {
					m.busy = true
					return m, m.addToCart(m.products[m.cursor].ID)
				}
			case viewCart:
				items := m.cart.Items()
				if m.cursor < len(items) {
					m.busy = true
					return m, m.removeFromCart(items[m.cursor].ID)
				}
			}
		case "o":
			if m.view == viewCart && !m.busy && m.cart.Len() > 0 {
				m.busy = true
				m.status = "Placing order..."
				return m, m.checkout()
			}
		}
	case catalogLoaded:
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("Load failed: %v", msg.err)
		} else {
			m.products = msg.products
			m.status = fmt.Sprintf("%d products", len(m.products))
		}
	case ordersLoaded:
		if msg.err != nil {
			m.status = fmt.Sprintf("Orders load failed: %v", msg.err)
		} else {
			m.orders = msg.orders
			m.status = fmt.Sprintf("%d orders", len(m.orders))
		}
	case actionDone:
		m.busy = false
		m.status = msg.status
		if m.cursor >= m.listLen() && m.cursor > 0 {
			m.cursor--
		}
	}
	return m, nil
}

func (m model) View() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "shop-cli  [catalog | cart (%d) | orders]  tab to switch\n\n", m.cart.TotalQuantity())

	switch m.view {
	case viewCatalog:
		for i, p := range m.products {
			marker := " "
			if i == m.cursor {
				marker = ">"
			}
			fmt.Fprintf(b, " %s %-25s %8.2f  %-13s stock %d\n", marker, p.Name, p.Price, p.Category, p.Stock)
		}
		fmt.Fprintln(b, "\nenter: add to cart")
	case viewCart:
		for i, it := range m.cart.Items() {
			marker := " "
			if i == m.cursor {
				marker = ">"
			}
			name := it.ProductID
			if it.Product != nil {
				name = it.Product.Name
			}
			fmt.Fprintf(b, " %s %dx %-25s\n", marker, it.Quantity, name)
		}
		fmt.Fprintf(b, "\nsubtotal: %.2f\nenter: remove item, o: checkout\n", m.cart.Subtotal())
	case viewOrders:
		for i, o := range m.orders {
			marker := " "
			if i == m.cursor {
				marker = ">"
			}
			fmt.Fprintf(b, " %s %s  %-10s %8.2f  %s\n", marker, o.OrderDate.Format("2006-01-02"), o.Status, o.TotalAmount, o.ID)
		}
	}

	fmt.Fprintf(b, "\nStatus: %s\n", m.status)
	fmt.Fprintln(b, "Controls: up/down move, tab switch view, r refresh, q quit")
	return b.String()
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	baseURL := getenv("SHOP_BASE_URL", "http://localhost:8080")
	token := os.Getenv("SHOP_TOKEN")
	if token == "" {
		fmt.Fprintln(os.Stderr, "SHOP_TOKEN is required (run cmd/seed to get one)")
		os.Exit(1)
	}

	api := client.New(baseURL, token)
	if _, err := tea.NewProgram(initialModel(api)).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
