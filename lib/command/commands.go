// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package command

// Empty is the params type of commands that take none.
type Empty struct{}

// Daemon.

// DaemonStatus reports daemon health and gateway connectivity.
var DaemonStatus = Define[Empty, DaemonStatusResult]("daemon.status", "Show daemon and gateway status")

// DaemonStatusResult is the result of daemon.status.
type DaemonStatusResult struct {
	Version        string `json:"version"`
	PID            int    `json:"pid"`
	UptimeSeconds  int64  `json:"uptime_seconds"`
	IBConnected    bool   `json:"ib_connected"`
	Account        string `json:"account,omitempty"`
	TradingHalted  bool   `json:"trading_halted"`
	Subscribers    int    `json:"subscribers"`
	MarketDataMode string `json:"market_data_mode,omitempty"`
}

// Market data.

// QuoteSnapshot returns the current top-of-book for a set of symbols.
var QuoteSnapshot = Define[QuoteSnapshotParams, QuoteSnapshotResult]("quote.snapshot", "Fetch current quotes")

// QuoteSnapshotParams are the params of quote.snapshot.
type QuoteSnapshotParams struct {
	Symbols []string `json:"symbols"`
}

// QuoteSnapshotResult is the result of quote.snapshot.
type QuoteSnapshotResult struct {
	Quotes []Quote `json:"quotes"`
}

// Quote is one symbol's top of book.
type Quote struct {
	Symbol    string  `json:"symbol"`
	Bid       float64 `json:"bid"`
	Ask       float64 `json:"ask"`
	Last      float64 `json:"last,omitempty"`
	BidSize   int64   `json:"bid_size,omitempty"`
	AskSize   int64   `json:"ask_size,omitempty"`
	Volume    int64   `json:"volume,omitempty"`
	Timestamp string  `json:"timestamp,omitempty"`
}

// Orders.

// OrderPlace submits an order after the daemon's risk checks pass.
var OrderPlace = Define[OrderPlaceParams, OrderPlaceResult]("order.place", "Place an order")

// OrderPlaceParams are the params of order.place and risk.check.
type OrderPlaceParams struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Qty           int64   `json:"qty"`
	OrderType     string  `json:"order_type,omitempty"`
	LimitPrice    float64 `json:"limit_price,omitempty"`
	TimeInForce   string  `json:"tif,omitempty"`
	ClientOrderID string  `json:"client_order_id,omitempty"`
}

// OrderPlaceResult is the result of order.place.
type OrderPlaceResult struct {
	OrderID       string `json:"order_id"`
	ClientOrderID string `json:"client_order_id,omitempty"`
	Status        string `json:"status"`
}

// OrderCancel cancels a working order.
var OrderCancel = Define[OrderCancelParams, OrderCancelResult]("order.cancel", "Cancel a working order")

// OrderCancelParams are the params of order.cancel.
type OrderCancelParams struct {
	OrderID string `json:"order_id"`
}

// OrderCancelResult is the result of order.cancel.
type OrderCancelResult struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// OrderList lists orders known to the daemon.
var OrderList = Define[OrderListParams, OrderListResult]("order.list", "List orders")

// OrderListParams are the params of order.list.
type OrderListParams struct {
	Status string `json:"status,omitempty"`
}

// OrderListResult is the result of order.list.
type OrderListResult struct {
	Orders []Order `json:"orders"`
}

// Order is one order as tracked by the daemon.
type Order struct {
	OrderID       string  `json:"order_id"`
	ClientOrderID string  `json:"client_order_id,omitempty"`
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	Qty           int64   `json:"qty"`
	FilledQty     int64   `json:"filled_qty"`
	OrderType     string  `json:"order_type"`
	LimitPrice    float64 `json:"limit_price,omitempty"`
	Status        string  `json:"status"`
	CreatedAt     string  `json:"created_at,omitempty"`
}

// Portfolio.

// PositionList lists open positions.
var PositionList = Define[Empty, PositionListResult]("position.list", "List open positions")

// PositionListResult is the result of position.list.
type PositionListResult struct {
	Positions []Position `json:"positions"`
}

// Position is one open position.
type Position struct {
	Symbol        string  `json:"symbol"`
	Qty           int64   `json:"qty"`
	AverageCost   float64 `json:"avg_cost"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// AccountSummary reports balances for the connected account.
var AccountSummary = Define[Empty, AccountSummaryResult]("account.summary", "Show account balances")

// AccountSummaryResult is the result of account.summary.
type AccountSummaryResult struct {
	Account       string  `json:"account"`
	Currency      string  `json:"currency"`
	NetLiquidity  float64 `json:"net_liquidation"`
	Cash          float64 `json:"cash"`
	BuyingPower   float64 `json:"buying_power"`
	RealizedPnL   float64 `json:"realized_pnl"`
	UnrealizedPnL float64 `json:"unrealized_pnl"`
}

// Risk.

// RiskCheck evaluates an order against the risk rules without placing
// it.
var RiskCheck = Define[OrderPlaceParams, RiskCheckResult]("risk.check", "Dry-run an order through risk checks")

// RiskCheckResult is the result of risk.check.
type RiskCheckResult struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

// RiskHalt stops all new order entry.
var RiskHalt = Define[RiskHaltParams, RiskStateResult]("risk.halt", "Halt trading")

// RiskResume re-enables order entry after a halt.
var RiskResume = Define[Empty, RiskStateResult]("risk.resume", "Resume trading")

// RiskHaltParams are the params of risk.halt.
type RiskHaltParams struct {
	Reason string `json:"reason,omitempty"`
}

// RiskStateResult is the result of risk.halt and risk.resume.
type RiskStateResult struct {
	Halted bool   `json:"halted"`
	Reason string `json:"reason,omitempty"`
}

// Events.

// EventsSubscribe opens a subscription. The result is the
// acknowledgement; events follow on the same connection.
var EventsSubscribe = DefineStream[EventsSubscribeParams, EventsSubscribeResult]("events.subscribe", "Stream daemon events")

// EventsSubscribeParams are the params of events.subscribe.
type EventsSubscribeParams struct {
	Topics []string `json:"topics"`
}

// EventsSubscribeResult is the subscription acknowledgement.
type EventsSubscribeResult struct {
	Subscribed []string `json:"subscribed"`
}

// Event topics published by the daemon.
const (
	TopicOrders    = "orders"
	TopicFills     = "fills"
	TopicRisk      = "risk"
	TopicQuotes    = "quotes"
	TopicPositions = "positions"
	TopicGateway   = "gateway"
)

// Topics returns the known event topics.
func Topics() []string {
	return []string{TopicOrders, TopicFills, TopicRisk, TopicQuotes, TopicPositions, TopicGateway}
}
