// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package mockd

import (
	"context"
	"maps"
	"slices"

	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/service"
)

func (d *Daemon) handlePositionList(ctx context.Context, request *service.Request) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := command.PositionListResult{Positions: []command.Position{}}
	for _, symbol := range slices.Sorted(maps.Keys(d.positions)) {
		result.Positions = append(result.Positions, *d.positions[symbol])
	}
	return result, nil
}

func (d *Daemon) handleAccountSummary(ctx context.Context, request *service.Request) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var marketValue, unrealized float64
	for _, position := range d.positions {
		marketValue += position.MarketValue
		unrealized += position.UnrealizedPnL
	}
	return command.AccountSummaryResult{
		Account:       d.account,
		Currency:      "USD",
		NetLiquidity:  roundCents(d.cash + marketValue),
		Cash:          d.cash,
		BuyingPower:   max(d.cash, 0),
		RealizedPnL:   d.realizedPnL,
		UnrealizedPnL: roundCents(unrealized),
	}, nil
}
