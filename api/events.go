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
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/blinklabs-io/worksync/event"
	"github.com/gorilla/websocket"
)

const (
	streamWriteTimeout = 10 * time.Second
	streamPingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Events are public, so cross-origin clients are allowed
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleEvents handles GET /v1/events and pages through the persisted log
func (a *Api) handleEvents(w http.ResponseWriter, r *http.Request) {
	after, err := parseUintParam(r, "after")
	if err != nil {
		writeBadRequest(w, "invalid after position")
		return
	}
	params, err := ParsePagination(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	evts, err := a.ledger.Events(r.Context(), after, params.Limit)
	if err != nil {
		a.writeLedgerError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, evts)
}

// handleEventStream handles GET /v1/events/ws. It replays the log after the
// requested position and then pushes new events. A client that reconnects
// with the last position it saw resumes without gaps
func (a *Api) handleEventStream(w http.ResponseWriter, r *http.Request) {
	after, err := parseUintParam(r, "after")
	if err != nil {
		writeBadRequest(w, "invalid after position")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		a.logger.Debug(
			"websocket upgrade failed",
			"error", err,
			"request_id", requestID(r.Context()),
		)
		return
	}
	defer conn.Close()
	ctx, cancel := context.WithCancel(a.streamContext())
	defer cancel()
	// The read loop only notices the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	pingDone := make(chan struct{})
	go func() {
		defer close(pingDone)
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := conn.WriteControl(
					websocket.PingMessage,
					nil,
					time.Now().Add(streamWriteTimeout),
				); err != nil {
					cancel()
					return
				}
			}
		}
	}()
	a.logger.Debug(
		"event stream opened",
		"after", after,
		"request_id", requestID(r.Context()),
	)
	err = a.ledger.Watch(ctx, after, func(evt event.JobEvent) error {
		if err := conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout)); err != nil {
			return err
		}
		return conn.WriteJSON(evt)
	})
	cancel()
	<-pingDone
	if err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Debug(
			"event stream closed",
			"error", err,
			"request_id", requestID(r.Context()),
		)
	}
	_ = conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
}
