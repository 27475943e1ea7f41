// Package config loads casino settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/game"
	"github.com/lox/casino/internal/store"
)

// DefaultFile is the config file read when none is given
const DefaultFile = "casino.hcl"

// Config is the resolved configuration with every default applied
type Config struct {
	Table  TableSettings
	Store  StoreSettings
	Server ServerSettings
	Log    LogSettings
	Shop   bankroll.Catalog
}

// TableSettings are the house rules and economy
type TableSettings struct {
	StartingBankroll int
	TopUpAmount      int
	TopUps           int
	ReshuffleBelow   int
	DealerDelay      time.Duration
	DealerStandsOn   int
	BlackjackPayout  decimal.Decimal
	WinPayout        decimal.Decimal
}

// StoreSettings select the bankroll backend
type StoreSettings struct {
	Backend string
	Path    string
}

// ServerSettings configure the websocket server
type ServerSettings struct {
	Address string
	Port    int
}

// LogSettings configure logging. An empty file means stderr.
type LogSettings struct {
	Level string
	File  string
}

// file mirrors the HCL layout. Every block and attribute is optional.
type file struct {
	Table   *tableBlock   `hcl:"table,block"`
	Store   *storeBlock   `hcl:"store,block"`
	Server  *serverBlock  `hcl:"server,block"`
	Log     *logBlock     `hcl:"log,block"`
	Rewards []rewardBlock `hcl:"reward,block"`
}

type tableBlock struct {
	StartingBankroll *int    `hcl:"starting_bankroll,optional"`
	TopUpAmount      *int    `hcl:"top_up_amount,optional"`
	TopUps           *int    `hcl:"top_ups,optional"`
	ReshuffleBelow   *int    `hcl:"reshuffle_below,optional"`
	DealerDelayMS    *int    `hcl:"dealer_delay_ms,optional"`
	DealerStandsOn   *int    `hcl:"dealer_stands_on,optional"`
	BlackjackPayout  *string `hcl:"blackjack_payout,optional"`
	WinPayout        *string `hcl:"win_payout,optional"`
}

type storeBlock struct {
	Backend string `hcl:"backend,optional"`
	Path    string `hcl:"path,optional"`
}

type serverBlock struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

type logBlock struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

type rewardBlock struct {
	ID       string `hcl:"id,label"`
	Name     string `hcl:"name,optional"`
	Cost     int    `hcl:"cost"`
	Variable bool   `hcl:"variable,optional"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	rules := game.DefaultRules()
	economy := bankroll.DefaultConfig()
	return &Config{
		Table: TableSettings{
			StartingBankroll: economy.StartingBalance,
			TopUpAmount:      economy.TopUpAmount,
			TopUps:           economy.TopUps,
			ReshuffleBelow:   rules.ReshuffleBelow,
			DealerDelay:      rules.DealerDelay,
			DealerStandsOn:   rules.DealerStandsOn,
			BlackjackPayout:  rules.Payouts.Blackjack,
			WinPayout:        rules.Payouts.Win,
		},
		Store: StoreSettings{
			Backend: store.BackendFile,
			Path:    "casino-bankroll.json",
		},
		Server: ServerSettings{
			Address: "localhost",
			Port:    8080,
		},
		Log: LogSettings{
			Level: "info",
		},
		Shop: economy.Catalog,
	}
}

// Load reads filename. A missing file yields the defaults.
func Load(filename string) (*Config, error) {
	src, err := os.ReadFile(filename)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(src, filename)
}

// Parse decodes HCL source over the defaults
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg := Default()
	if err := cfg.apply(&raw); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) apply(raw *file) error {
	if t := raw.Table; t != nil {
		setInt(&c.Table.StartingBankroll, t.StartingBankroll)
		setInt(&c.Table.TopUpAmount, t.TopUpAmount)
		setInt(&c.Table.TopUps, t.TopUps)
		setInt(&c.Table.ReshuffleBelow, t.ReshuffleBelow)
		setInt(&c.Table.DealerStandsOn, t.DealerStandsOn)
		if t.DealerDelayMS != nil {
			c.Table.DealerDelay = time.Duration(*t.DealerDelayMS) * time.Millisecond
		}
		if err := setDecimal(&c.Table.BlackjackPayout, t.BlackjackPayout, "blackjack_payout"); err != nil {
			return err
		}
		if err := setDecimal(&c.Table.WinPayout, t.WinPayout, "win_payout"); err != nil {
			return err
		}
	}

	if s := raw.Store; s != nil {
		if s.Backend != "" {
			c.Store.Backend = s.Backend
		}
		if s.Path != "" {
			c.Store.Path = s.Path
		}
	}

	if s := raw.Server; s != nil {
		if s.Address != "" {
			c.Server.Address = s.Address
		}
		if s.Port != 0 {
			c.Server.Port = s.Port
		}
	}

	if l := raw.Log; l != nil {
		if l.Level != "" {
			c.Log.Level = l.Level
		}
		c.Log.File = l.File
	}

	// reward blocks replace the whole shop
	if len(raw.Rewards) > 0 {
		c.Shop = make(bankroll.Catalog, 0, len(raw.Rewards))
		for _, r := range raw.Rewards {
			name := r.Name
			if name == "" {
				name = r.ID
			}
			c.Shop = append(c.Shop, bankroll.Item{
				ID:       r.ID,
				Name:     name,
				UnitCost: r.Cost,
				Variable: r.Variable,
			})
		}
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setDecimal(dst *decimal.Decimal, v *string, name string) error {
	if v == nil {
		return nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return fmt.Errorf("table.%s: %w", name, err)
	}
	*dst = d
	return nil
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Table.StartingBankroll <= 0 {
		return errors.New("table.starting_bankroll must be positive")
	}
	if c.Table.TopUpAmount <= 0 {
		return errors.New("table.top_up_amount must be positive")
	}
	if c.Table.TopUps < 0 {
		return errors.New("table.top_ups must not be negative")
	}
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}

	switch c.Store.Backend {
	case store.BackendMemory:
	case store.BackendFile, store.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s backend", c.Store.Backend)
		}
	default:
		return fmt.Errorf("invalid store backend: %s", c.Store.Backend)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if len(c.Shop) == 0 {
		return errors.New("at least one reward must be configured")
	}
	if err := c.Shop.Validate(); err != nil {
		return err
	}
	return nil
}

// Rules returns the house rules for new tables
func (c *Config) Rules() game.Rules {
	return game.Rules{
		DealerDelay:    c.Table.DealerDelay,
		ReshuffleBelow: c.Table.ReshuffleBelow,
		DealerStandsOn: c.Table.DealerStandsOn,
		Payouts: game.Payouts{
			Blackjack: c.Table.BlackjackPayout,
			Win:       c.Table.WinPayout,
		},
	}
}

// Ledger returns the bankroll economy
func (c *Config) Ledger() bankroll.Config {
	cfg := bankroll.DefaultConfig()
	cfg.StartingBalance = c.Table.StartingBankroll
	cfg.TopUpAmount = c.Table.TopUpAmount
	cfg.TopUps = c.Table.TopUps
	cfg.Catalog = c.Shop
	return cfg
}

// ServerAddress returns host:port for the websocket server
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

