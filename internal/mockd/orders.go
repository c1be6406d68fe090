// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package mockd

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/service"
)

// Order statuses.
const (
	StatusSubmitted = "submitted"
	StatusFilled    = "filled"
	StatusCancelled = "cancelled"
)

const (
	sideBuy  = "buy"
	sideSell = "sell"

	orderTypeMarket = "market"
	orderTypeLimit  = "limit"
)

var validTimeInForce = map[string]bool{"DAY": true, "GTC": true, "IOC": true}

func (d *Daemon) handleStatus(ctx context.Context, request *service.Request) (any, error) {
	return d.Status(), nil
}

func (d *Daemon) handleQuoteSnapshot(ctx context.Context, request *service.Request) (any, error) {
	var params command.QuoteSnapshotParams
	if err := request.DecodeParams(&params); err != nil {
		return nil, err
	}
	if len(params.Symbols) == 0 {
		return nil, daemonerr.New(daemonerr.InvalidArgs, "at least one symbol is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.requireGatewayLocked(); err != nil {
		return nil, err
	}
	result := command.QuoteSnapshotResult{Quotes: make([]command.Quote, 0, len(params.Symbols))}
	for _, symbol := range params.Symbols {
		quote, err := d.quoteLocked(symbol)
		if err != nil {
			return nil, err
		}
		result.Quotes = append(result.Quotes, quote)
	}
	return result, nil
}

func (d *Daemon) handleOrderPlace(ctx context.Context, request *service.Request) (any, error) {
	var params command.OrderPlaceParams
	if err := request.DecodeParams(&params); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.requireGatewayLocked(); err != nil {
		return nil, err
	}
	quote, err := d.validateOrderLocked(&params)
	if err != nil {
		return nil, err
	}
	if d.halted {
		return nil, d.haltedErrorLocked()
	}
	if reasons := d.riskReasonsLocked(params, quote); len(reasons) > 0 {
		return nil, daemonerr.New(daemonerr.RiskCheckFailed, reasons[0]).
			WithDetail("reasons", reasons).
			WithDetail("symbol", params.Symbol)
	}
	if params.ClientOrderID != "" {
		if existing, ok := d.clientOrderIDs[params.ClientOrderID]; ok {
			return nil, daemonerr.Newf(daemonerr.DuplicateOrder, "client order id %q already used", params.ClientOrderID).
				WithDetail("order_id", existing)
		}
	}
	if err := d.rateLimitLocked(); err != nil {
		return nil, err
	}

	order := &command.Order{
		OrderID:       fmt.Sprintf("MOCK-%06d", d.nextOrderID),
		ClientOrderID: params.ClientOrderID,
		Symbol:        params.Symbol,
		Side:          params.Side,
		Qty:           params.Qty,
		OrderType:     params.OrderType,
		LimitPrice:    params.LimitPrice,
		Status:        StatusSubmitted,
		CreatedAt:     d.clock.Now().UTC().Format(time.RFC3339Nano),
	}
	d.nextOrderID++
	d.orders = append(d.orders, order)
	if order.ClientOrderID != "" {
		d.clientOrderIDs[order.ClientOrderID] = order.OrderID
	}
	d.logger.Info("order placed",
		"order_id", order.OrderID,
		"symbol", order.Symbol,
		"side", order.Side,
		"qty", order.Qty,
		"source", request.Source,
	)
	d.publishLocked(command.TopicOrders, orderEvent(order))

	if price, marketable := fillPrice(*order, quote); marketable {
		d.fillLocked(order, price)
	} else if params.TimeInForce == "IOC" {
		order.Status = StatusCancelled
		d.publishLocked(command.TopicOrders, orderEvent(order))
	}

	return command.OrderPlaceResult{
		OrderID:       order.OrderID,
		ClientOrderID: order.ClientOrderID,
		Status:        order.Status,
	}, nil
}

func (d *Daemon) handleOrderCancel(ctx context.Context, request *service.Request) (any, error) {
	var params command.OrderCancelParams
	if err := request.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.OrderID == "" {
		return nil, daemonerr.New(daemonerr.InvalidArgs, "order_id is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	order := d.findOrderLocked(params.OrderID)
	if order == nil {
		return nil, daemonerr.Newf(daemonerr.InvalidArgs, "unknown order %q", params.OrderID).
			WithDetail("order_id", params.OrderID).
			WithSuggestion("List orders with 'tradedesk order list'.")
	}
	if order.Status != StatusSubmitted {
		return nil, daemonerr.Newf(daemonerr.IBRejected, "order %s is already %s", order.OrderID, order.Status).
			WithDetail("order_id", order.OrderID).
			WithDetail("status", order.Status)
	}
	order.Status = StatusCancelled
	d.publishLocked(command.TopicOrders, orderEvent(order))
	return command.OrderCancelResult{OrderID: order.OrderID, Status: order.Status}, nil
}

func (d *Daemon) handleOrderList(ctx context.Context, request *service.Request) (any, error) {
	var params command.OrderListParams
	if err := request.DecodeParams(&params); err != nil {
		return nil, err
	}
	switch params.Status {
	case "", StatusSubmitted, StatusFilled, StatusCancelled:
	default:
		return nil, daemonerr.Newf(daemonerr.InvalidArgs, "unknown order status %q", params.Status).
			WithDetail("status", params.Status).
			WithSuggestion("Use one of: submitted, filled, cancelled.")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	result := command.OrderListResult{Orders: []command.Order{}}
	for _, order := range d.orders {
		if params.Status == "" || order.Status == params.Status {
			result.Orders = append(result.Orders, *order)
		}
	}
	return result, nil
}

func (d *Daemon) handleRiskCheck(ctx context.Context, request *service.Request) (any, error) {
	var params command.OrderPlaceParams
	if err := request.DecodeParams(&params); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	quote, err := d.validateOrderLocked(&params)
	if err != nil {
		return nil, err
	}
	var reasons []string
	if d.halted {
		reasons = append(reasons, "trading is halted")
	}
	reasons = append(reasons, d.riskReasonsLocked(params, quote)...)
	return command.RiskCheckResult{Allowed: len(reasons) == 0, Reasons: reasons}, nil
}

func (d *Daemon) handleRiskHalt(ctx context.Context, request *service.Request) (any, error) {
	var params command.RiskHaltParams
	if err := request.DecodeParams(&params); err != nil {
		return nil, err
	}
	if params.Reason == "" {
		params.Reason = "manual halt"
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = true
	d.haltReason = params.Reason
	d.logger.Warn("trading halted", "reason", params.Reason, "source", request.Source)
	d.publishLocked(command.TopicRisk, map[string]any{"halted": true, "reason": params.Reason})
	return command.RiskStateResult{Halted: true, Reason: params.Reason}, nil
}

func (d *Daemon) handleRiskResume(ctx context.Context, request *service.Request) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.halted = false
	d.haltReason = ""
	d.logger.Info("trading resumed", "source", request.Source)
	d.publishLocked(command.TopicRisk, map[string]any{"halted": false})
	return command.RiskStateResult{Halted: false}, nil
}

func (d *Daemon) requireGatewayLocked() error {
	if !d.gatewayConnected {
		return daemonerr.New(daemonerr.IBDisconnected, "gateway is not connected")
	}
	return nil
}

func (d *Daemon) haltedErrorLocked() error {
	return daemonerr.New(daemonerr.RiskHalted, "trading is halted").
		WithDetail("reason", d.haltReason)
}

func (d *Daemon) quoteLocked(symbol string) (command.Quote, error) {
	quote, ok := d.quotes[strings.ToUpper(symbol)]
	if !ok {
		return command.Quote{}, daemonerr.Newf(daemonerr.InvalidSymbol, "unknown symbol %q", symbol).
			WithDetail("symbol", symbol)
	}
	return quote, nil
}

// validateOrderLocked checks the shape of params and fills in the
// defaults for order type and time in force.
func (d *Daemon) validateOrderLocked(params *command.OrderPlaceParams) (command.Quote, error) {
	if params.Symbol == "" {
		return command.Quote{}, daemonerr.New(daemonerr.InvalidArgs, "symbol is required")
	}
	params.Symbol = strings.ToUpper(params.Symbol)
	quote, err := d.quoteLocked(params.Symbol)
	if err != nil {
		return command.Quote{}, err
	}

	params.Side = strings.ToLower(params.Side)
	if params.Side != sideBuy && params.Side != sideSell {
		return command.Quote{}, daemonerr.Newf(daemonerr.InvalidArgs, "side must be buy or sell, got %q", params.Side).
			WithDetail("side", params.Side)
	}
	if params.Qty <= 0 {
		return command.Quote{}, daemonerr.New(daemonerr.InvalidArgs, "qty must be positive").
			WithDetail("qty", params.Qty)
	}

	params.OrderType = strings.ToLower(params.OrderType)
	switch params.OrderType {
	case "":
		params.OrderType = orderTypeMarket
	case orderTypeMarket:
	case orderTypeLimit:
		if params.LimitPrice <= 0 {
			return command.Quote{}, daemonerr.New(daemonerr.InvalidArgs, "limit orders need a positive limit_price").
				WithDetail("limit_price", params.LimitPrice)
		}
	default:
		return command.Quote{}, daemonerr.Newf(daemonerr.InvalidArgs, "unknown order type %q", params.OrderType).
			WithDetail("order_type", params.OrderType)
	}

	params.TimeInForce = strings.ToUpper(params.TimeInForce)
	if params.TimeInForce == "" {
		params.TimeInForce = "DAY"
	}
	if !validTimeInForce[params.TimeInForce] {
		return command.Quote{}, daemonerr.Newf(daemonerr.InvalidArgs, "unknown time in force %q", params.TimeInForce).
			WithDetail("tif", params.TimeInForce)
	}
	return quote, nil
}

// riskReasonsLocked returns every risk rule params violates.
func (d *Daemon) riskReasonsLocked(params command.OrderPlaceParams, quote command.Quote) []string {
	var reasons []string
	if params.Qty > d.maxOrderQty {
		reasons = append(reasons, fmt.Sprintf("qty %d exceeds max order size %d", params.Qty, d.maxOrderQty))
	}
	price := quote.Ask
	if params.Side == sideSell {
		price = quote.Bid
	}
	if params.OrderType == orderTypeLimit {
		price = params.LimitPrice
	}
	notional := price * float64(params.Qty)
	if notional > d.maxNotional {
		reasons = append(reasons, fmt.Sprintf("notional %.2f exceeds limit %.2f", notional, d.maxNotional))
	}
	if params.Side == sideBuy && notional > d.cash {
		reasons = append(reasons, fmt.Sprintf("notional %.2f exceeds available cash %.2f", notional, d.cash))
	}
	return reasons
}

func (d *Daemon) rateLimitLocked() error {
	if d.maxOrdersPerSecond <= 0 {
		return nil
	}
	now := d.clock.Now()
	windowStart := now.Add(-time.Second)
	recent := d.recentOrders[:0]
	for _, placed := range d.recentOrders {
		if placed.After(windowStart) {
			recent = append(recent, placed)
		}
	}
	d.recentOrders = recent
	if len(recent) >= d.maxOrdersPerSecond {
		retryAfter := recent[0].Add(time.Second).Sub(now)
		return daemonerr.New(daemonerr.RateLimited, "order rate limit exceeded").
			WithDetail("limit_per_second", d.maxOrdersPerSecond).
			WithDetail("retry_after_ms", retryAfter.Milliseconds())
	}
	d.recentOrders = append(d.recentOrders, now)
	return nil
}

func (d *Daemon) findOrderLocked(orderID string) *command.Order {
	for _, order := range d.orders {
		if order.OrderID == orderID {
			return order
		}
	}
	return nil
}

// fillPrice reports the price an order would fill at against quote,
// and whether it is marketable at all.
func fillPrice(order command.Order, quote command.Quote) (float64, bool) {
	switch {
	case order.Side == sideBuy && (order.OrderType == orderTypeMarket || order.LimitPrice >= quote.Ask):
		return quote.Ask, true
	case order.Side == sideSell && (order.OrderType == orderTypeMarket || order.LimitPrice <= quote.Bid):
		return quote.Bid, true
	}
	return 0, false
}

func (d *Daemon) fillLocked(order *command.Order, price float64) {
	signed := order.Qty
	if order.Side == sideSell {
		signed = -signed
	}

	position, ok := d.positions[order.Symbol]
	if !ok {
		position = &command.Position{Symbol: order.Symbol}
		d.positions[order.Symbol] = position
	}
	switch {
	case position.Qty == 0 || (position.Qty > 0) == (signed > 0):
		total := abs(position.Qty) + abs(signed)
		position.AverageCost = roundCents((position.AverageCost*float64(abs(position.Qty)) + price*float64(abs(signed))) / float64(total))
		position.Qty += signed
	default:
		closed := min(abs(position.Qty), abs(signed))
		direction := 1.0
		if position.Qty < 0 {
			direction = -1.0
		}
		d.realizedPnL = roundCents(d.realizedPnL + float64(closed)*(price-position.AverageCost)*direction)
		wasLong := position.Qty > 0
		position.Qty += signed
		if position.Qty != 0 && (position.Qty > 0) != wasLong {
			position.AverageCost = price
		}
	}
	d.cash = roundCents(d.cash - float64(signed)*price)

	order.FilledQty = order.Qty
	order.Status = StatusFilled
	d.logger.Info("order filled", "order_id", order.OrderID, "price", price)

	d.publishLocked(command.TopicFills, map[string]any{
		"order_id": order.OrderID,
		"symbol":   order.Symbol,
		"side":     order.Side,
		"qty":      order.Qty,
		"price":    price,
	})
	d.publishLocked(command.TopicOrders, orderEvent(order))

	if position.Qty == 0 {
		delete(d.positions, order.Symbol)
		d.publishLocked(command.TopicPositions, map[string]any{"symbol": order.Symbol, "qty": int64(0)})
		return
	}
	d.markLocked(position)
	d.publishLocked(command.TopicPositions, map[string]any{
		"symbol":   position.Symbol,
		"qty":      position.Qty,
		"avg_cost": position.AverageCost,
	})
}

func (d *Daemon) markLocked(position *command.Position) {
	last := d.quotes[position.Symbol].Last
	position.MarketValue = roundCents(last * float64(position.Qty))
	position.UnrealizedPnL = roundCents((last - position.AverageCost) * float64(position.Qty))
}

func orderEvent(order *command.Order) map[string]any {
	return map[string]any{
		"order_id":   order.OrderID,
		"symbol":     order.Symbol,
		"side":       order.Side,
		"qty":        order.Qty,
		"filled_qty": order.FilledQty,
		"status":     order.Status,
	}
}

func quoteEvent(quote command.Quote) map[string]any {
	return map[string]any{
		"symbol": quote.Symbol,
		"bid":    quote.Bid,
		"ask":    quote.Ask,
		"last":   quote.Last,
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func roundCents(value float64) float64 {
	return math.Round(value*100) / 100
}
