// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package mockd

import (
	"log/slog"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/tradedesk/tradedesk/lib/clock"
	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/service"
	"github.com/tradedesk/tradedesk/lib/version"
)

// subscriberBuffer is the number of events queued per subscriber
// before new events are dropped for it.
const subscriberBuffer = 64

// Options configures a Daemon. Zero values select the defaults noted
// on each field.
type Options struct {
	// Clock drives uptime, order timestamps and rate limiting.
	// Default: clock.Real().
	Clock clock.Clock

	// Logger receives order activity. Default: discard.
	Logger *slog.Logger

	// Account is the reported account identifier. Default: "DU0000000".
	Account string

	// Cash is the starting cash balance. Default: 100000.
	Cash float64

	// Quotes seeds the book. Default: DefaultQuotes().
	Quotes []command.Quote

	// MaxOrderQty rejects larger orders with RISK_CHECK_FAILED.
	// Default: 10000.
	MaxOrderQty int64

	// MaxNotional rejects orders whose qty times price exceeds it.
	// Default: 250000.
	MaxNotional float64

	// MaxOrdersPerSecond rejects order.place beyond this rate with
	// RATE_LIMITED. Zero disables the limit.
	MaxOrdersPerSecond int
}

// DefaultQuotes is the book a Daemon starts with when Options.Quotes
// is empty.
func DefaultQuotes() []command.Quote {
	return []command.Quote{
		{Symbol: "AAPL", Bid: 189.40, Ask: 189.45, Last: 189.42, BidSize: 300, AskSize: 200},
		{Symbol: "MSFT", Bid: 411.10, Ask: 411.20, Last: 411.15, BidSize: 100, AskSize: 100},
		{Symbol: "NVDA", Bid: 121.05, Ask: 121.07, Last: 121.06, BidSize: 900, AskSize: 1200},
		{Symbol: "SPY", Bid: 560.01, Ask: 560.02, Last: 560.01, BidSize: 2500, AskSize: 1800},
	}
}

// Daemon is the mock daemon's state. All methods are safe for
// concurrent use.
type Daemon struct {
	clock   clock.Clock
	logger  *slog.Logger
	started time.Time

	account            string
	maxOrderQty        int64
	maxNotional        float64
	maxOrdersPerSecond int

	mu               sync.Mutex
	cash             float64
	realizedPnL      float64
	quotes           map[string]command.Quote
	orders           []*command.Order
	clientOrderIDs   map[string]string
	positions        map[string]*command.Position
	halted           bool
	haltReason       string
	gatewayConnected bool
	nextOrderID      int
	recentOrders     []time.Time
	tick             int
	subscribers      map[*subscriber]struct{}
}

// New creates a Daemon. Call Register to serve it.
func New(options Options) *Daemon {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}
	if options.Account == "" {
		options.Account = "DU0000000"
	}
	if options.Cash == 0 {
		options.Cash = 100000
	}
	if len(options.Quotes) == 0 {
		options.Quotes = DefaultQuotes()
	}
	if options.MaxOrderQty == 0 {
		options.MaxOrderQty = 10000
	}
	if options.MaxNotional == 0 {
		options.MaxNotional = 250000
	}

	quotes := make(map[string]command.Quote, len(options.Quotes))
	for _, quote := range options.Quotes {
		quotes[quote.Symbol] = quote
	}

	return &Daemon{
		clock:              options.Clock,
		logger:             options.Logger,
		started:            options.Clock.Now(),
		account:            options.Account,
		maxOrderQty:        options.MaxOrderQty,
		maxNotional:        options.MaxNotional,
		maxOrdersPerSecond: options.MaxOrdersPerSecond,
		cash:               options.Cash,
		quotes:             quotes,
		clientOrderIDs:     make(map[string]string),
		positions:          make(map[string]*command.Position),
		gatewayConnected:   true,
		nextOrderID:        1,
		subscribers:        make(map[*subscriber]struct{}),
	}
}

// Register installs a handler for every registry command on server.
func (d *Daemon) Register(server *service.SocketServer) {
	server.Handle(command.DaemonStatus.Name(), d.handleStatus)
	server.Handle(command.QuoteSnapshot.Name(), d.handleQuoteSnapshot)
	server.Handle(command.OrderPlace.Name(), d.handleOrderPlace)
	server.Handle(command.OrderCancel.Name(), d.handleOrderCancel)
	server.Handle(command.OrderList.Name(), d.handleOrderList)
	server.Handle(command.PositionList.Name(), d.handlePositionList)
	server.Handle(command.AccountSummary.Name(), d.handleAccountSummary)
	server.Handle(command.RiskCheck.Name(), d.handleRiskCheck)
	server.Handle(command.RiskHalt.Name(), d.handleRiskHalt)
	server.Handle(command.RiskResume.Name(), d.handleRiskResume)
	server.HandleStream(command.EventsSubscribe.Name(), d.handleSubscribe)
}

// Status returns what daemon.status would report.
func (d *Daemon) Status() command.DaemonStatusResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	return command.DaemonStatusResult{
		Version:        version.Short(),
		PID:            os.Getpid(),
		UptimeSeconds:  int64(d.clock.Now().Sub(d.started) / time.Second),
		IBConnected:    d.gatewayConnected,
		Account:        d.account,
		TradingHalted:  d.halted,
		Subscribers:    len(d.subscribers),
		MarketDataMode: "mock",
	}
}

// SetGatewayConnected simulates the broker gateway going up or down.
// While it is down, market data and order entry fail with
// IB_DISCONNECTED.
func (d *Daemon) SetGatewayConnected(connected bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gatewayConnected == connected {
		return
	}
	d.gatewayConnected = connected
	d.logger.Info("gateway state changed", "connected", connected)
	d.publishLocked(command.TopicGateway, map[string]any{"connected": connected})
}

// Tick moves every quote by a small deterministic step and publishes
// the new quotes. Positions are marked to the new prices.
func (d *Daemon) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tick++
	// Alternating up and down steps keep prices near their seeds.
	step := 0.01
	if d.tick%2 == 0 {
		step = -0.01
	}
	for _, symbol := range slices.Sorted(maps.Keys(d.quotes)) {
		quote := d.quotes[symbol]
		quote.Bid = roundCents(quote.Bid + step)
		quote.Ask = roundCents(quote.Ask + step)
		quote.Last = roundCents((quote.Bid + quote.Ask) / 2)
		quote.Timestamp = d.clock.Now().UTC().Format(time.RFC3339Nano)
		d.quotes[symbol] = quote
		d.publishLocked(command.TopicQuotes, quoteEvent(quote))
	}
	for _, position := range d.positions {
		d.markLocked(position)
	}
}
