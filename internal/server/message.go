package server

import (
	"encoding/json"

	"github.com/lox/casino/internal/bankroll"
	"github.com/lox/casino/internal/deck"
	"github.com/lox/casino/internal/game"
)

// MessageType names a websocket envelope
type MessageType string

const (
	// Client → Server
	MessageTypeAction MessageType = "action"

	// Server → Client
	MessageTypeState   MessageType = "state"
	MessageTypeCatalog MessageType = "catalog"
	MessageTypeError   MessageType = "error"
)

func (t MessageType) String() string { return string(t) }

// Message is the envelope for every websocket frame
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// NewMessage marshals data into an envelope
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{Type: messageType, Data: dataBytes}, nil
}

// Actions a client can request
const (
	ActionBet      = "bet"
	ActionClearBet = "clear_bet"
	ActionDeal     = "deal"
	ActionHit      = "hit"
	ActionStand    = "stand"
	ActionDouble   = "double"
	ActionNewHand  = "new_hand"
	ActionTopUp    = "top_up"
	ActionReset    = "reset"
	ActionRedeem   = "redeem"
)

// ActionData is a player request. Amount is a bet delta; Item and Quantity
// apply to redeem.
type ActionData struct {
	Action   string `json:"action"`
	Amount   int    `json:"amount,omitempty"`
	Item     string `json:"item,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CardView is a card as the client sees it. Face-down cards carry no rank
// or suit.
type CardView struct {
	Rank     string `json:"rank,omitempty"`
	Suit     string `json:"suit,omitempty"`
	FaceDown bool   `json:"faceDown,omitempty"`
}

type ReceiptView struct {
	Item     string `json:"item"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Total    int    `json:"total"`
	Balance  int    `json:"balance"`
}

type StateData struct {
	Session         string       `json:"session"`
	Round           int          `json:"round"`
	State           string       `json:"state"`
	Player          []CardView   `json:"player"`
	Dealer          []CardView   `json:"dealer"`
	PlayerValue     int          `json:"playerValue"`
	DealerValue     int          `json:"dealerValue"`
	Bankroll        int          `json:"bankroll"`
	Bet             int          `json:"bet"`
	Stake           int          `json:"stake"`
	Payout          int          `json:"payout"`
	TopUpsRemaining int          `json:"topUpsRemaining"`
	Outcome         string       `json:"outcome,omitempty"`
	Message         string       `json:"message"`
	CanDouble       bool         `json:"canDouble"`
	CardsRemaining  int          `json:"cardsRemaining"`
	Receipt         *ReceiptView `json:"receipt,omitempty"`
}

type CatalogItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	UnitCost int    `json:"unitCost"`
	Variable bool   `json:"variable"`
}

type CatalogData struct {
	Items []CatalogItem `json:"items"`
}

// StateFromSnapshot converts a table snapshot for the wire
func StateFromSnapshot(s game.Snapshot) StateData {
	data := StateData{
		Session:         s.Session,
		Round:           s.Round,
		State:           s.State.String(),
		Player:          cardViews(s.Player),
		Dealer:          cardViews(s.Dealer),
		PlayerValue:     s.PlayerValue,
		DealerValue:     s.DealerValue,
		Bankroll:        s.Bankroll,
		Bet:             s.Bet,
		Stake:           s.Stake,
		Payout:          s.Payout,
		TopUpsRemaining: s.TopUpsRemaining,
		Outcome:         s.Outcome.String(),
		Message:         s.Message,
		CanDouble:       s.CanDouble,
		CardsRemaining:  s.CardsRemaining,
	}
	if r := s.Receipt; r != nil {
		data.Receipt = &ReceiptView{
			Item:     r.Item.ID,
			Name:     r.Item.Name,
			Quantity: r.Quantity,
			Total:    r.Total,
			Balance:  r.Balance,
		}
	}
	return data
}

func cardViews(hand game.Hand) []CardView {
	views := make([]CardView, 0, len(hand))
	for _, c := range hand {
		views = append(views, cardView(c))
	}
	return views
}

func cardView(c deck.Card) CardView {
	if c.FaceDown {
		return CardView{FaceDown: true}
	}
	return CardView{Rank: c.Rank.String(), Suit: c.Suit.Name()}
}

// CatalogFromShop converts the reward shop for the wire
func CatalogFromShop(c bankroll.Catalog) CatalogData {
	items := make([]CatalogItem, 0, len(c))
	for _, item := range c {
		items = append(items, CatalogItem{
			ID:       item.ID,
			Name:     item.Name,
			UnitCost: item.UnitCost,
			Variable: item.Variable,
		})
	}
	return CatalogData{Items: items}
}
