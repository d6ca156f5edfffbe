package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/billing"
	"github.com/Mohammad-Mahdi82/NexusCafe/server/models"
)

const helpText = " [TAB] Table | [s] Start [m] Model [c] Pads | [p] Pause/Resume | [x] Stop | [r] Reset | [ ] Product [+/-] Order | [t] Transfer | [a/d] Add/Del | [ESC] Exit "

// console is the operator screen. All fields below app are owned by the
// tview event loop and only touched from input handlers or queued updates.
type console struct {
	desk *desk
	app  *tview.Application
	log  *zap.Logger

	columns *tview.Flex
	status  *tview.TextView

	entries  []billing.Entry
	selected int
	product  int
	model    models.PSModel
	count    models.ControllerCount
}

func newConsole(d *desk, log *zap.Logger) *console {
	c := &console{
		desk:    d,
		app:     tview.NewApplication(),
		log:     log,
		columns: tview.NewFlex().SetDirection(tview.FlexColumn),
		status:  tview.NewTextView().SetDynamicColors(true),
		model:   models.PS4,
		count:   models.TwoControllers,
	}

	footer := tview.NewTextView().SetText(helpText).
		SetTextAlign(tview.AlignCenter).SetTextColor(tcell.ColorYellow)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.columns, 0, 1, true).
		AddItem(c.status, 1, 0, false).
		AddItem(footer, 1, 0, false)

	c.app.SetRoot(root, true).SetInputCapture(c.handleKey)
	return c
}

// Run blocks until the operator quits or ctx is cancelled.
func (c *console) Run(ctx context.Context, watcher billing.Watcher) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.desk.tables.OnChange(func(list []models.TableSession) {
		entries := billing.ProjectAll(list, c.desk.tables.Now())
		c.app.QueueUpdateDraw(func() { c.render(entries) })
	})
	go func() {
		_ = watcher.Run(ctx, c.desk.tables.Tables, func(entries []billing.Entry) {
			c.app.QueueUpdateDraw(func() { c.render(entries) })
		})
	}()
	go func() {
		<-ctx.Done()
		c.app.Stop()
	}()

	c.showStatus(c.tierLabel())
	return c.app.Run()
}

func (c *console) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape:
		c.app.Stop()
		return nil
	case tcell.KeyTab:
		c.moveSelection(1)
		return nil
	case tcell.KeyBacktab:
		c.moveSelection(-1)
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	t, ok := c.current()
	switch event.Rune() {
	case 'm':
		c.model = cycle(models.PSModels, c.model)
		c.showStatus(c.tierLabel())
	case 'c':
		c.count = cycle(models.ControllerCounts, c.count)
		c.showStatus(c.tierLabel())
	case '[':
		c.moveProduct(-1)
	case ']':
		c.moveProduct(1)
	case 'a':
		c.run("add table", func(ctx context.Context) error {
			_, err := c.desk.tables.AddTable(ctx)
			return err
		})
	}
	if !ok {
		return nil
	}

	switch event.Rune() {
	case 's':
		model, count := c.model, c.count
		c.run("start "+t.Label(), func(ctx context.Context) error {
			return c.desk.startSession(ctx, t.ID, model, count)
		})
	case 'p':
		switch t.Status {
		case models.StatusActive:
			c.run("pause "+t.Label(), func(ctx context.Context) error { return c.desk.tables.Pause(ctx, t.ID) })
		case models.StatusPaused:
			c.run("resume "+t.Label(), func(ctx context.Context) error { return c.desk.tables.Resume(ctx, t.ID) })
		}
	case 'x':
		c.run("stop "+t.Label(), func(ctx context.Context) error { return c.desk.tables.Stop(ctx, t.ID) })
	case 'r':
		c.run("reset "+t.Label(), func(ctx context.Context) error { return c.desk.tables.Reset(ctx, t.ID) })
	case '+':
		if p, ok := c.currentProduct(); ok {
			c.run("order "+p.Name, func(ctx context.Context) error { return c.desk.orderProduct(ctx, t.ID, p.ID) })
		}
	case '-':
		if p, ok := c.currentProduct(); ok {
			c.run("remove "+p.Name, func(ctx context.Context) error {
				return c.desk.tables.RemoveProduct(ctx, t.ID, p.ID)
			})
		}
	case 't':
		if len(c.entries) > 1 {
			to := c.entries[(c.selected+1)%len(c.entries)].Table
			c.run(fmt.Sprintf("transfer %s to %s", t.Label(), to.Label()), func(ctx context.Context) error {
				return c.desk.tables.Transfer(ctx, t.ID, to.ID)
			})
		}
	case 'd':
		c.run("delete "+t.Label(), func(ctx context.Context) error { return c.desk.deleteIdleTable(ctx, t.ID) })
	}
	return nil
}

// run dispatches off the event loop; persistence may block on disk.
func (c *console) run(what string, fn func(ctx context.Context) error) {
	go func() {
		if err := fn(context.Background()); err != nil {
			c.log.Warn("operator action failed", zap.String("action", what), zap.Error(err))
			c.app.QueueUpdateDraw(func() { c.showStatus("[red]" + what + ": " + err.Error()) })
			return
		}
		c.app.QueueUpdateDraw(func() { c.showStatus(what) })
	}()
}

func (c *console) current() (models.TableSession, bool) {
	if c.selected < 0 || c.selected >= len(c.entries) {
		return models.TableSession{}, false
	}
	return c.entries[c.selected].Table, true
}

func (c *console) currentProduct() (models.Product, bool) {
	products := c.desk.catalog.List()
	if len(products) == 0 {
		return models.Product{}, false
	}
	return products[c.product%len(products)], true
}

func (c *console) moveSelection(step int) {
	if len(c.entries) == 0 {
		return
	}
	c.selected = (c.selected + step + len(c.entries)) % len(c.entries)
	c.render(c.entries)
}

func (c *console) moveProduct(step int) {
	n := len(c.desk.catalog.List())
	if n == 0 {
		return
	}
	c.product = (c.product%n + step + n) % n
	if p, ok := c.currentProduct(); ok {
		c.showStatus(fmt.Sprintf("product: %s (%s)", p.Name, billing.FormatMoney(p.Price)))
	}
}

func (c *console) tierLabel() string {
	rate := c.desk.pricing.HourlyRate(c.model, c.count)
	return fmt.Sprintf("next start: %s / %d pads @ %s per hour", c.model, c.count, billing.FormatMoney(rate))
}

func (c *console) showStatus(text string) {
	c.status.SetText(" " + text)
}

func (c *console) render(entries []billing.Entry) {
	c.entries = entries
	if c.selected >= len(entries) {
		c.selected = max(len(entries)-1, 0)
	}

	c.columns.Clear()
	if len(entries) == 0 {
		empty := tview.NewTextView().SetText("\n\nNo tables. Press [a] to add one.").SetTextAlign(tview.AlignCenter)
		c.columns.AddItem(empty, 0, 1, false)
		return
	}

	for i, e := range entries {
		col := tview.NewFlex().SetDirection(tview.FlexRow)
		col.SetBorder(true).SetTitle(fmt.Sprintf(" %s ", e.Table.Label())).
			SetBorderAttributes(tcell.AttrBold).SetBorderPadding(0, 0, 1, 1)
		if i == c.selected {
			col.SetBorderColor(tcell.ColorYellow)
		}

		header := tview.NewTextView().SetDynamicColors(true).SetText(headerText(e))
		col.AddItem(header, 3, 0, false)
		col.AddItem(ordersTable(e.Table.OrderedProducts), 0, 1, false)

		total := e.Projection.Price
		if e.Table.TransferredAmount != nil {
			total = total.Add(*e.Table.TransferredAmount)
		}
		footer := tview.NewTable().SetBorders(false)
		footer.SetCell(0, 0, tview.NewTableCell(" TOTAL").SetTextColor(tcell.ColorBlack).SetBackgroundColor(tcell.ColorYellow).SetAttributes(tcell.AttrBold))
		footer.SetCell(0, 1, tview.NewTableCell(billing.FormatMoney(total)+" ").SetTextColor(tcell.ColorBlack).SetBackgroundColor(tcell.ColorYellow).SetAlign(tview.AlignRight).SetExpansion(1))
		col.AddItem(footer, 1, 0, false)

		c.columns.AddItem(col, 30, 0, false)
	}
	c.columns.AddItem(nil, 0, 1, false)
}

func headerText(e billing.Entry) string {
	color := map[models.TableStatus]string{
		models.StatusIdle:   "gray",
		models.StatusActive: "green",
		models.StatusPaused: "yellow",
		models.StatusDone:   "aqua",
	}[e.Table.Status]

	tier := "-"
	if cfg := e.Table.GamingConfig; cfg != nil {
		tier = fmt.Sprintf("%s x%d", cfg.PSModel, cfg.ControllerCount)
	}
	text := fmt.Sprintf("[%s]%s[-]  %s\n%s  %s",
		color, e.Table.Status, tier,
		billing.FormatDuration(e.Projection.Elapsed), billing.FormatMoney(e.Projection.Price))
	if e.Table.TransferredAmount != nil {
		text += fmt.Sprintf("\n[aqua]+%s transferred[-]", billing.FormatMoney(*e.Table.TransferredAmount))
	}
	return text
}

type orderLine struct {
	name  string
	qty   int
	total decimal.Decimal
}

// groupOrders folds repeated products into one line, keeping first-seen order.
func groupOrders(products []models.Product) []orderLine {
	var lines []orderLine
	index := make(map[string]int)
	for _, p := range products {
		i, ok := index[p.ID]
		if !ok {
			i = len(lines)
			index[p.ID] = i
			lines = append(lines, orderLine{name: p.Name, total: decimal.Zero})
		}
		lines[i].qty++
		lines[i].total = lines[i].total.Add(p.Price)
	}
	return lines
}

func ordersTable(products []models.Product) *tview.Table {
	table := tview.NewTable().SetBorders(false)
	table.SetCell(0, 0, tview.NewTableCell("ITEM").SetTextColor(tcell.ColorYellow).SetAttributes(tcell.AttrBold))
	table.SetCell(0, 1, tview.NewTableCell("QTY").SetTextColor(tcell.ColorYellow).SetAttributes(tcell.AttrBold))
	table.SetCell(0, 2, tview.NewTableCell("SUM").SetTextColor(tcell.ColorYellow).SetAttributes(tcell.AttrBold))
	for row, line := range groupOrders(products) {
		table.SetCell(row+1, 0, tview.NewTableCell(line.name).SetExpansion(1))
		table.SetCell(row+1, 1, tview.NewTableCell(fmt.Sprintf("%d", line.qty)))
		table.SetCell(row+1, 2, tview.NewTableCell(billing.FormatMoney(line.total)).SetAlign(tview.AlignRight))
	}
	return table
}

func cycle[T comparable](values []T, current T) T {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
