package tui

import "github.com/charmbracelet/lipgloss"

// Table palette: felt, brass rails, chip red and card stock
const (
	feltColor   = lipgloss.Color("#0B6E4F")
	baizeColor  = lipgloss.Color("#2ECC71")
	brassColor  = lipgloss.Color("#D4A017")
	chipColor   = lipgloss.Color("#C0392B")
	stockColor  = lipgloss.Color("#F5F0E1")
	backColor   = lipgloss.Color("#3D5A80")
	smokeColor  = lipgloss.Color("#7F8C8D")
	violetColor = lipgloss.Color("#9B59B6")
)

// Pane borders
var (
	FocusedBorderColor = baizeColor
	IdleBorderColor    = smokeColor
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(stockColor).
			Background(feltColor).
			Bold(true)

	LogTextStyle = lipgloss.NewStyle().
			Foreground(stockColor)

	HandStyle = lipgloss.NewStyle().
			Foreground(baizeColor).
			Bold(true)

	BankrollStyle = lipgloss.NewStyle().
			Foreground(brassColor).
			Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(smokeColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(chipColor).
			Bold(true)
)

// Cards
var (
	RedSuitStyle = lipgloss.NewStyle().
			Foreground(chipColor).
			Bold(true)

	BlackSuitStyle = lipgloss.NewStyle().
			Foreground(stockColor).
			Bold(true)

	CardBackStyle = lipgloss.NewStyle().
			Foreground(stockColor).
			Background(backColor)
)

// Actions offered in the input pane
var (
	ActionsLabelStyle = lipgloss.NewStyle().
				Foreground(brassColor)

	ActionStyle = lipgloss.NewStyle().
			Foreground(baizeColor)

	RiskyActionStyle = lipgloss.NewStyle().
				Foreground(brassColor).
				Bold(true)
)

// Round outcomes
var (
	BlackjackStyle = lipgloss.NewStyle().
			Foreground(brassColor).
			Bold(true).
			Underline(true)

	WinStyle = lipgloss.NewStyle().
			Foreground(baizeColor).
			Bold(true)

	PushStyle = lipgloss.NewStyle().
			Foreground(violetColor)

	LoseStyle = lipgloss.NewStyle().
			Foreground(chipColor)
)
