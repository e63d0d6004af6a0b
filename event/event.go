// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package event

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	EventQueueSize         = 64
	AsyncQueueSize         = 1000
	AsyncWorkerPoolSize    = 4
	DefaultDeliveryTimeout = 5 * time.Second
)

// ErrDeliveryTimeout is returned by a channel subscriber whose buffer stayed
// full for longer than the delivery timeout
var ErrDeliveryTimeout = errors.New("event delivery timed out")

type EventType string

type EventSubscriberId int

type EventHandlerFunc func(Event)

type Event struct {
	Timestamp time.Time
	Data      any
	Type      EventType
}

func NewEvent(eventType EventType, eventData any) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      eventData,
	}
}

type asyncEvent struct {
	eventType EventType
	event     Event
}

type EventBus struct {
	subscribers     map[EventType]map[EventSubscriberId]Subscriber
	metrics         *eventMetrics
	logger          *slog.Logger
	lastSubId       EventSubscriberId
	deliveryTimeout time.Duration
	queueSize       int
	mu              sync.RWMutex

	asyncQueue   chan asyncEvent
	asyncWg      sync.WaitGroup
	subscriberWg sync.WaitGroup
	stopCh       chan struct{}
	stopped      bool
	stopMu       sync.RWMutex
	// stopOpMu serializes Stop() so only one worker pool is ever running
	stopOpMu sync.Mutex
	// closed is set by Close and guarded by mu
	closed bool
	// typeTimeouts overrides deliveryTimeout per event type, guarded by mu
	typeTimeouts map[EventType]time.Duration
}

type EventBusOptionFunc func(*EventBus)

// WithDeliveryTimeout sets how long a publish waits on a full subscriber
// buffer before dropping that subscriber. A zero value drops immediately
func WithDeliveryTimeout(timeout time.Duration) EventBusOptionFunc {
	return func(e *EventBus) {
		e.deliveryTimeout = timeout
	}
}

// WithQueueSize sets the buffer size of channel subscribers
func WithQueueSize(size int) EventBusOptionFunc {
	return func(e *EventBus) {
		e.queueSize = size
	}
}

// NewEventBus creates a new EventBus with async worker pool
func NewEventBus(
	promRegistry prometheus.Registerer,
	logger *slog.Logger,
	opts ...EventBusOptionFunc,
) *EventBus {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e := &EventBus{
		subscribers:     make(map[EventType]map[EventSubscriberId]Subscriber),
		logger:          logger,
		deliveryTimeout: DefaultDeliveryTimeout,
		queueSize:       EventQueueSize,
		asyncQueue:      make(chan asyncEvent, AsyncQueueSize),
		stopCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.queueSize < 1 {
		e.queueSize = 1
	}
	if promRegistry != nil {
		e.metrics = newEventMetrics(promRegistry)
	}
	e.startWorkers()
	return e
}

func (e *EventBus) startWorkers() {
	for range AsyncWorkerPoolSize {
		e.asyncWg.Add(1)
		go e.asyncWorker(e.asyncQueue, e.stopCh)
	}
}

func (e *EventBus) asyncWorker(queue <-chan asyncEvent, stopCh <-chan struct{}) {
	defer e.asyncWg.Done()
	for {
		select {
		case <-stopCh:
			return
		case ae := <-queue:
			e.Publish(ae.eventType, ae.event)
		}
	}
}

// Subscriber is a delivery abstraction that allows the EventBus to deliver
// events to in-memory channels and to network-backed subscribers, such as
// websocket clients, via the same interface.
// Implementations must ensure Close() is idempotent.
type Subscriber interface {
	Deliver(Event) error
	Close()
}

// channelSubscriber delivers to a buffered channel. A send that cannot be
// enqueued within the timeout fails, and the bus then drops the subscriber
type channelSubscriber struct {
	ch      chan Event
	timeout time.Duration
	mu      sync.RWMutex
	closed  bool
}

func newChannelSubscriber(
	buffer int,
	timeout time.Duration,
) *channelSubscriber {
	return &channelSubscriber{
		ch:      make(chan Event, buffer),
		timeout: timeout,
	}
}

func (c *channelSubscriber) Deliver(evt Event) error {
	// Close waits for in-flight sends to finish before closing the channel
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil
	}
	select {
	case c.ch <- evt:
		return nil
	default:
	}
	if c.timeout <= 0 {
		return ErrDeliveryTimeout
	}
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case c.ch <- evt:
		return nil
	case <-timer.C:
		return ErrDeliveryTimeout
	}
}

func (c *channelSubscriber) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.ch)
}

func (e *EventBus) addSubscriber(
	eventType EventType,
	sub Subscriber,
	kind string,
) EventSubscriberId {
	e.mu.Lock()
	defer e.mu.Unlock()
	subId := e.lastSubId + 1
	e.lastSubId = subId
	if e.closed {
		sub.Close()
		return subId
	}
	if _, ok := e.subscribers[eventType]; !ok {
		e.subscribers[eventType] = make(map[EventSubscriberId]Subscriber)
	}
	e.subscribers[eventType][subId] = sub
	if e.metrics != nil {
		e.metrics.subscribers.WithLabelValues(string(eventType), kind).Inc()
	}
	return subId
}

func subscriberKind(sub Subscriber) string {
	if _, ok := sub.(*channelSubscriber); ok {
		return "in-memory"
	}
	return "remote"
}

// SetDeliveryTimeout overrides the delivery timeout for channel subscribers
// of one event type. Existing subscribers keep their timeout
func (e *EventBus) SetDeliveryTimeout(eventType EventType, timeout time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.typeTimeouts == nil {
		e.typeTimeouts = make(map[EventType]time.Duration)
	}
	e.typeTimeouts[eventType] = max(timeout, 0)
}

// DeliveryTimeout returns the delivery timeout used for new subscribers of
// the event type
func (e *EventBus) DeliveryTimeout(eventType EventType) time.Duration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if timeout, ok := e.typeTimeouts[eventType]; ok {
		return timeout
	}
	return e.deliveryTimeout
}

// Subscribe allows a consumer to receive events of a particular type via a
// channel. The channel is closed when the subscriber is removed
func (e *EventBus) Subscribe(
	eventType EventType,
) (EventSubscriberId, <-chan Event) {
	chSub := newChannelSubscriber(e.queueSize, e.DeliveryTimeout(eventType))
	subId := e.addSubscriber(eventType, chSub, "in-memory")
	return subId, chSub.ch
}

// SubscribeFunc allows a consumer to receive events of a particular type via
// a callback function. A panicking handler is logged and keeps receiving
func (e *EventBus) SubscribeFunc(
	eventType EventType,
	handlerFunc EventHandlerFunc,
) EventSubscriberId {
	subId, evtCh := e.Subscribe(eventType)
	// Handlers started while Stop() is running are not waited on, which
	// keeps Add from racing with Wait
	e.stopMu.RLock()
	tracked := !e.stopped
	if tracked {
		e.subscriberWg.Add(1)
	}
	e.stopMu.RUnlock()
	go func() {
		if tracked {
			defer e.subscriberWg.Done()
		}
		for evt := range evtCh {
			e.callHandler(eventType, handlerFunc, evt)
		}
	}()
	return subId
}

func (e *EventBus) callHandler(
	eventType EventType,
	handlerFunc EventHandlerFunc,
	evt Event,
) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error(
				"event handler panic",
				"component", "event",
				"type", eventType,
				"panic", r,
			)
		}
	}()
	handlerFunc(evt)
}

// RegisterSubscriber allows external adapters, such as network-backed
// subscribers, to register with the EventBus. It returns the assigned
// subscriber id
func (e *EventBus) RegisterSubscriber(
	eventType EventType,
	sub Subscriber,
) EventSubscriberId {
	return e.addSubscriber(eventType, sub, subscriberKind(sub))
}

// Unsubscribe stops delivery of events for a particular type for an existing
// subscriber and closes it
func (e *EventBus) Unsubscribe(eventType EventType, subId EventSubscriberId) {
	e.mu.Lock()
	var subToClose Subscriber
	if evtTypeSubs, ok := e.subscribers[eventType]; ok {
		if sub, ok := evtTypeSubs[subId]; ok {
			subToClose = sub
			delete(evtTypeSubs, subId)
			if len(evtTypeSubs) == 0 {
				delete(e.subscribers, eventType)
			}
			if e.metrics != nil {
				e.metrics.subscribers.WithLabelValues(
					string(eventType),
					subscriberKind(sub),
				).Dec()
			}
		}
	}
	e.mu.Unlock()

	if subToClose != nil {
		subToClose.Close()
	}
}

// Publish delivers an event to all subscribers of the event type. It returns
// once every subscriber has accepted the event or been dropped
func (e *EventBus) Publish(eventType EventType, evt Event) {
	type subItem struct {
		sub Subscriber
		id  EventSubscriberId
	}
	e.mu.RLock()
	subs := e.subscribers[eventType]
	subList := make([]subItem, 0, len(subs))
	for id, sub := range subs {
		subList = append(subList, subItem{id: id, sub: sub})
	}
	e.mu.RUnlock()
	for _, item := range subList {
		deliverErr := safeDeliver(item.sub, evt)
		if deliverErr == nil {
			continue
		}
		e.Unsubscribe(eventType, item.id)
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(
				string(eventType),
				subscriberKind(item.sub),
			).Inc()
		}
		e.logger.Warn(
			"event delivery failed, subscriber dropped",
			"component", "event",
			"type", eventType,
			"subscriber", item.id,
			"error", deliverErr,
		)
	}
	if e.metrics != nil {
		e.metrics.eventsTotal.WithLabelValues(string(eventType)).Inc()
	}
}

func safeDeliver(sub Subscriber, evt Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber deliver panic: %v", r)
		}
	}()
	return sub.Deliver(evt)
}

// PublishAsync enqueues an event for delivery by the worker pool and returns
// immediately. Ordering between async events is not preserved. Returns false
// if the EventBus is stopping or the async queue is full
func (e *EventBus) PublishAsync(eventType EventType, evt Event) bool {
	e.stopMu.RLock()
	defer e.stopMu.RUnlock()
	if e.stopped {
		return false
	}
	select {
	case e.asyncQueue <- asyncEvent{eventType: eventType, event: evt}:
		return true
	default:
		e.logger.Warn(
			"async event queue full, dropping event",
			"component", "event",
			"type", eventType,
		)
		if e.metrics != nil {
			e.metrics.deliveryErrors.WithLabelValues(
				string(eventType),
				"async-dropped",
			).Inc()
		}
		return false
	}
}

// Stop closes all subscribers and waits for SubscribeFunc goroutines and the
// async workers to exit. The EventBus can be reused after Stop()
func (e *EventBus) Stop() {
	e.shutdown(true)
}

// Close stops the EventBus for good. Later subscribers are closed on
// arrival and async publishes are refused
func (e *EventBus) Close() {
	e.shutdown(false)
}

func (e *EventBus) shutdown(restart bool) {
	e.stopOpMu.Lock()
	defer e.stopOpMu.Unlock()

	e.mu.Lock()
	alreadyClosed := e.closed
	if !restart {
		e.closed = true
	}
	e.mu.Unlock()
	if alreadyClosed {
		return
	}

	e.stopMu.Lock()
	e.stopped = true
	close(e.stopCh)
	e.stopMu.Unlock()
	e.asyncWg.Wait()

	e.mu.Lock()
	subsCopy := e.subscribers
	e.subscribers = make(map[EventType]map[EventSubscriberId]Subscriber)
	e.mu.Unlock()
	for _, evtTypeSubs := range subsCopy {
		for _, sub := range evtTypeSubs {
			sub.Close()
		}
	}
	if e.metrics != nil {
		e.metrics.subscribers.Reset()
	}

	e.subscriberWg.Wait()

	if !restart {
		return
	}
	e.stopMu.Lock()
	e.asyncQueue = make(chan asyncEvent, AsyncQueueSize)
	e.stopCh = make(chan struct{})
	e.stopped = false
	e.startWorkers()
	e.stopMu.Unlock()
}
