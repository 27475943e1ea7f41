package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lox/casino/internal/bankroll"
)

// CatalogCmd prints the reward shop
type CatalogCmd struct {
	out io.Writer `kong:"-"`
}

func (c *CatalogCmd) Run(g *Globals) error {
	e, err := g.load("")
	if err != nil {
		return err
	}
	defer e.close()

	out := c.out
	if out == nil {
		out = os.Stdout
	}
	_, err = fmt.Fprintln(out, renderCatalog(e.cfg.Shop))
	return err
}

func renderCatalog(shop bankroll.Catalog) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "REWARD", "COST")
	for _, item := range shop {
		cost := strconv.Itoa(item.UnitCost)
		if item.Variable {
			cost += " each"
		}
		t.Row(item.ID, item.Name, cost)
	}
	return t.Render()
}
