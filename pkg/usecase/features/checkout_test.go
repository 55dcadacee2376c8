package features

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/sokoide/workshop/software/canteen/pkg/domain"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/clock"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/memory"
	"github.com/sokoide/workshop/software/canteen/pkg/infra/util"
	"github.com/sokoide/workshop/software/canteen/pkg/usecase"
)

var start = time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

type checkoutTestContext struct {
	items   []domain.CatalogItem
	catalog *memory.Catalog
	history *memory.History
	clock   *clock.Manual
	session *usecase.Session
	last    domain.Order
	err     error
}

func (c *checkoutTestContext) reset() {
	c.items = nil
	c.catalog = nil
	c.history = nil
	c.clock = nil
	c.session = nil
	c.last = domain.Order{}
	c.err = nil
}

// ensureSession builds the session lazily so Given steps can shape the catalog first.
func (c *checkoutTestContext) ensureSession() *usecase.Session {
	if c.session == nil {
		c.catalog = memory.NewCatalog(c.items)
		c.history = memory.NewHistory()
		c.clock = clock.NewManual(start)
		c.session = usecase.NewSession(usecase.SessionDeps{
			Catalog:   c.catalog,
			History:   c.history,
			Clock:     c.clock,
			Scheduler: c.clock,
			IDs:       &util.UUIDGenerator{},
		})
	}
	return c.session
}

func (c *checkoutTestContext) theCatalogHasItemPricedWithStock(id string, price, stock int) error {
	c.items = append(c.items, domain.CatalogItem{
		ID:      domain.ItemID(id),
		Price:   int64(price),
		Stock:   stock,
		Product: domain.Product{Name: id},
	})
	return nil
}

func (c *checkoutTestContext) iAddToTheCart(id string) error {
	c.err = c.ensureSession().AddItem(context.Background(), domain.ItemID(id))
	return nil
}

func (c *checkoutTestContext) iCheckOut() error {
	order, err := c.ensureSession().Checkout(context.Background())
	c.err = err
	if err == nil {
		c.last = order
	}
	return nil
}

func (c *checkoutTestContext) iPay() error {
	order, err := c.ensureSession().Pay(context.Background())
	c.last, c.err = order, err
	return nil
}

func (c *checkoutTestContext) iCancel() error {
	order, err := c.ensureSession().Cancel(context.Background())
	c.last, c.err = order, err
	return nil
}

func (c *checkoutTestContext) minutesPass(n int) error {
	c.ensureSession()
	c.clock.Advance(time.Duration(n) * time.Minute)
	return nil
}

func (c *checkoutTestContext) theCartHoldsOfForATotalOf(qty int, id string, total int) error {
	view := c.ensureSession().Cart()
	if len(view.Lines) != 1 {
		return fmt.Errorf("expected 1 cart line, got %d", len(view.Lines))
	}
	line := view.Lines[0]
	if string(line.ItemID) != id || line.Quantity != qty {
		return fmt.Errorf("expected %d of %s, got %d of %s", qty, id, line.Quantity, line.ItemID)
	}
	if view.Total != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, view.Total)
	}
	return nil
}

func (c *checkoutTestContext) theRequestFailsWith(code string) error {
	if c.err == nil {
		return fmt.Errorf("expected %s, got no error", code)
	}
	if got := domain.Code(c.err); got != code {
		return fmt.Errorf("expected %s, got %s (%v)", code, got, c.err)
	}
	return nil
}

func (c *checkoutTestContext) thePendingOrderTotalsAndExpiresIn(total, minutes int) error {
	view, ok := c.ensureSession().Pending()
	if !ok {
		return fmt.Errorf("no pending order")
	}
	if view.Order.Total != int64(total) {
		return fmt.Errorf("expected total %d, got %d", total, view.Order.Total)
	}
	if want := start.Add(time.Duration(minutes) * time.Minute); !view.Order.ExpiresAt.Equal(want) {
		return fmt.Errorf("expected expiry %s, got %s", want, view.Order.ExpiresAt)
	}
	return nil
}

func (c *checkoutTestContext) theLastOrderIs(status string) error {
	if c.err != nil {
		return fmt.Errorf("unexpected error: %w", c.err)
	}
	if c.last.Status.String() != status {
		return fmt.Errorf("expected %s, got %s", status, c.last.Status)
	}
	return nil
}

func (c *checkoutTestContext) theCatalogStockOfIs(id string, stock int) error {
	item, err := c.catalog.Get(context.Background(), domain.ItemID(id))
	if err != nil {
		return err
	}
	if item.Stock != stock {
		return fmt.Errorf("expected stock %d, got %d", stock, item.Stock)
	}
	return nil
}

func (c *checkoutTestContext) theHistoryHoldsOrder(n int, status string) error {
	orders, err := c.history.List(context.Background())
	if err != nil {
		return err
	}
	if len(orders) != n {
		return fmt.Errorf("expected %d orders, got %d", n, len(orders))
	}
	for _, o := range orders {
		if o.Status.String() != status {
			return fmt.Errorf("expected %s order, got %s", status, o.Status)
		}
	}
	return nil
}

func (c *checkoutTestContext) theCartIsEmpty() error {
	if lines := c.ensureSession().Cart().Lines; len(lines) != 0 {
		return fmt.Errorf("expected empty cart, got %d lines", len(lines))
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})
	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if tc.session != nil {
			tc.session.Close()
		}
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog has item "([^"]*)" priced (\d+) with stock (\d+)$`, tc.theCatalogHasItemPricedWithStock)

	// When steps
	ctx.Step(`^I add "([^"]*)" to the cart$`, tc.iAddToTheCart)
	ctx.Step(`^I check out$`, tc.iCheckOut)
	ctx.Step(`^I pay$`, tc.iPay)
	ctx.Step(`^I cancel$`, tc.iCancel)
	ctx.Step(`^(\d+) minutes pass$`, tc.minutesPass)

	// Then steps
	ctx.Step(`^the cart holds (\d+) of "([^"]*)" for a total of (\d+)$`, tc.theCartHoldsOfForATotalOf)
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.theRequestFailsWith)
	ctx.Step(`^the pending order totals (\d+) and expires in (\d+) minutes$`, tc.thePendingOrderTotalsAndExpiresIn)
	ctx.Step(`^the last order is "([^"]*)"$`, tc.theLastOrderIs)
	ctx.Step(`^the catalog stock of "([^"]*)" is (\d+)$`, tc.theCatalogStockOfIs)
	ctx.Step(`^the history holds (\d+) "([^"]*)" orders?$`, tc.theHistoryHoldsOrder)
	ctx.Step(`^the cart is empty$`, tc.theCartIsEmpty)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
