package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nazeru/storefront-orders-go/internal/auth"
	"github.com/nazeru/storefront-orders-go/internal/board"
	catalog "github.com/nazeru/storefront-orders-go/internal/catalog/domain"
	"github.com/nazeru/storefront-orders-go/internal/listing"
	"github.com/nazeru/storefront-orders-go/internal/order/domain"
	"github.com/nazeru/storefront-orders-go/internal/order/fulfillment"
	"github.com/nazeru/storefront-orders-go/internal/order/stats"
	"github.com/nazeru/storefront-orders-go/internal/storeapi"
	"github.com/nazeru/storefront-orders-go/pkg/config"
	"github.com/nazeru/storefront-orders-go/pkg/notify"
	"github.com/nazeru/storefront-orders-go/pkg/query"
)

const pageWindow = 5

func main() {
	runCmd := flag.String("run", "", "print and exit: orders|summary|products")
	role := flag.String("role", "store", "store|customer")
	storeID := flag.String("store", "", "store id for -run products")
	q := flag.String("q", "", "search text for -run orders|products")
	sort := flag.String("sort", string(query.SortNewest), "sort key")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}

	cred := auth.Bearer(getenv("STOREFRONT_TOKEN", ""), auth.RoleCustomer)
	if *role == "store" {
		cred.Role = auth.RoleStore
	}

	api := storeapi.NewClient(cfg.APIBaseURL, cfg.RequestTimeout)
	load := api.CustomerOrders
	if cred.Role == auth.RoleStore {
		load = api.StoreOrders
	}
	orders := board.New(orderLoader(load, cred))

	if *runCmd != "" {
		spec := query.NewSpec(cfg.PageSize).WithText(*q).WithSort(query.SortKey(*sort))
		if err := runOnce(context.Background(), os.Stdout, *runCmd, api, orders, cred, *storeID, spec); err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		return
	}

	// The TUI owns the terminal, so notices go nowhere but the status line.
	actions := fulfillment.NewService(api, fulfillment.WithNotifier(notify.Multi{}))
	p := tea.NewProgram(initialModel(orders, actions, cred, cfg.PageSize, cfg.RequestTimeout))
	if _, err := p.Run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

// orderLoader binds cred to load. Customers get orders without staff-only
// fields, so neither the board nor the summary can show them.
func orderLoader(load func(context.Context, auth.Credential) ([]domain.Order, error), cred auth.Credential) board.Loader[domain.Order] {
	return func(ctx context.Context) ([]domain.Order, error) {
		orders, err := load(ctx, cred)
		if err != nil || cred.Role == auth.RoleStore {
			return orders, err
		}
		return domain.CustomerView(orders), nil
	}
}

type productSource interface {
	StoreProducts(ctx context.Context, storeID string) ([]catalog.Product, error)
}

func runOnce(ctx context.Context, w io.Writer, what string, products productSource, orders *board.Board[domain.Order], cred auth.Credential, storeID string, spec query.Spec) error {
	if !spec.Sort.Valid() {
		return fmt.Errorf("unknown sort key %q", spec.Sort)
	}
	switch what {
	case "orders", "summary":
		items, err := orders.Reload(ctx)
		if err != nil {
			return err
		}
		if what == "summary" {
			return printJSON(w, stats.Summarize(items))
		}
		viewer := listing.ViewerCustomer
		if cred.Role == auth.RoleStore {
			viewer = listing.ViewerStore
		}
		res := board.View(items, spec, listing.Orders(viewer))
		for _, o := range res.Items {
			fmt.Fprintf(w, "#%s\t%s\t%s\t%s\n", o.Code(), o.Status, o.TotalAmount.StringFixed(0), o.CreatedAt.Format("2006-01-02"))
		}
		fmt.Fprintf(w, "page %d/%d (%d matched)\n", res.Page, res.TotalPages, res.Matched)
		return nil
	case "products":
		if storeID == "" {
			return fmt.Errorf("-store is required")
		}
		items, err := products.StoreProducts(ctx, storeID)
		if err != nil {
			return err
		}
		res := board.View(items, spec, listing.Products)
		for _, p := range res.Items {
			line := fmt.Sprintf("%s\t%s\t%s", p.ID, p.Title, p.Price.StringFixed(0))
			if d := p.DiscountPercent(); d > 0 {
				line += fmt.Sprintf("\t-%d%%", d)
			}
			fmt.Fprintln(w, line)
		}
		fmt.Fprintf(w, "categories: %s\n", strings.Join(catalog.Categories(items), ", "))
		fmt.Fprintf(w, "page %d/%d (%d matched)\n", res.Page, res.TotalPages, res.Matched)
		return nil
	default:
		return fmt.Errorf("unknown -run %q", what)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
