// Copyright 2026 The Tradedesk Authors
// SPDX-License-Identifier: Apache-2.0

package mockd

import (
	"context"
	"slices"
	"strings"

	"github.com/tradedesk/tradedesk/lib/command"
	"github.com/tradedesk/tradedesk/lib/daemonerr"
	"github.com/tradedesk/tradedesk/lib/service"
)

type event struct {
	topic string
	data  map[string]any
}

type subscriber struct {
	topics  map[string]bool
	events  chan event
	dropped int
}

func (d *Daemon) handleSubscribe(ctx context.Context, request *service.Request, emitter *service.Emitter) error {
	var params command.EventsSubscribeParams
	if err := request.DecodeParams(&params); err != nil {
		return err
	}
	topics, err := resolveTopics(params.Topics)
	if err != nil {
		return err
	}

	sub := &subscriber{
		topics: make(map[string]bool, len(topics)),
		events: make(chan event, subscriberBuffer),
	}
	for _, topic := range topics {
		sub.topics[topic] = true
	}

	d.mu.Lock()
	d.subscribers[sub] = struct{}{}
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.subscribers, sub)
		d.mu.Unlock()
	}()

	if err := emitter.Ack(command.EventsSubscribeResult{Subscribed: topics}); err != nil {
		return err
	}
	d.logger.Debug("subscriber attached", "request_id", request.ID, "topics", topics)

	for {
		select {
		case <-ctx.Done():
			return nil
		case next := <-sub.events:
			if err := emitter.Emit(next.topic, next.data); err != nil {
				return err
			}
		}
	}
}

// resolveTopics validates the requested topics. An empty request means
// every topic.
func resolveTopics(requested []string) ([]string, error) {
	known := command.Topics()
	if len(requested) == 0 {
		return known, nil
	}
	topics := make([]string, 0, len(requested))
	for _, topic := range requested {
		if !slices.Contains(known, topic) {
			return nil, daemonerr.Newf(daemonerr.InvalidArgs, "unknown topic %q", topic).
				WithDetail("topic", topic).
				WithSuggestion("Known topics: " + strings.Join(known, ", ") + ".")
		}
		if !slices.Contains(topics, topic) {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

// publishLocked queues an event for every subscriber of topic. A
// subscriber whose queue is full misses the event.
func (d *Daemon) publishLocked(topic string, data map[string]any) {
	for sub := range d.subscribers {
		if !sub.topics[topic] {
			continue
		}
		select {
		case sub.events <- event{topic: topic, data: data}:
		default:
			sub.dropped++
			d.logger.Warn("subscriber queue full, dropping event", "topic", topic, "dropped", sub.dropped)
		}
	}
}
