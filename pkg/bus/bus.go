// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

// Package bus implements the message-bus gateway of the DCM daemon. The
// transport is JSON over HTTP on unix domain sockets: inbound events are
// POSTs against our socket, outbound events are POSTs against the peer
// socket. TR-181 style parameters are read from the peer with GETs.
package bus

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Handler consumes the JSON payload of one inbound event
type Handler func(payload []byte)

// Handle owns the bus endpoint: the local listener for inbound events and
// the client used to reach the peer. It is exclusively owned by the gateway
// until teardown.
type Handle struct {
	socketPath string
	peerPath   string

	router *mux.Router
	server *http.Server
	client *http.Client

	m        sync.Mutex
	handlers map[string]Handler
	ready    uint32
}

// NewHandle prepares a bus endpoint; no sockets are touched until Start
func NewHandle(socketPath, peerPath string) *Handle {
	h := &Handle{
		socketPath: socketPath,
		peerPath:   peerPath,
		router:     mux.NewRouter(),
		handlers:   make(map[string]Handler),
	}

	h.router.HandleFunc("/events/{name}", h.dispatch).Methods("POST")

	h.client = &http.Client{
		Timeout: 5 * time.Second,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				var d net.Dialer
				return d.DialContext(ctx, "unix", peerPath)
			},
		},
	}

	h.server = &http.Server{Handler: h.router}
	return h
}

// Subscribe registers a handler for the named inbound event. Subscriptions
// may be added before or after Start.
func (h *Handle) Subscribe(event string, handler Handler) {
	h.m.Lock()
	defer h.m.Unlock()
	h.handlers[event] = handler
	log.Debugf("bus: subscribed to %s", event)
}

// Start binds the unix socket and begins serving inbound events. The ready
// flag rises asynchronously once the listener is bound.
func (h *Handle) Start() error {
	// a previous unclean shutdown may have left the socket file behind
	if err := os.Remove(h.socketPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "bus: cannot remove stale socket")
	}

	listener, err := net.Listen("unix", h.socketPath)
	if err != nil {
		return errors.Wrap(err, "bus: cannot bind socket")
	}

	atomic.StoreUint32(&h.ready, 1)
	go func() {
		if err := h.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Errorf("bus: server stopped: %v", err)
		}
		atomic.StoreUint32(&h.ready, 0)
	}()

	log.Infof("bus: listening on %s", h.socketPath)
	return nil
}

// Ready reports the aggregated readiness of the subscriptions
func (h *Handle) Ready() bool {
	return atomic.LoadUint32(&h.ready) == 1
}

// Publish sends the named outbound event to the peer. Errors are reported
// to the caller and logged; the peer retries subscriptions on its side.
func (h *Handle) Publish(event string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "bus: cannot encode payload")
	}

	resp, err := h.client.Post("http://bus/events/"+event, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Errorf("bus: publish %s failed: %v", event, err)
		return errors.Wrapf(err, "bus: publish %s", event)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode >= 300 {
		log.Errorf("bus: publish %s rejected with %d", event, resp.StatusCode)
		return errors.Errorf("bus: publish %s rejected with %d", event, resp.StatusCode)
	}
	return nil
}

// GetParameter reads one TR-181 style parameter from the peer. The empty
// string is returned on any error so callers can fall back to defaults.
func (h *Handle) GetParameter(name string) string {
	resp, err := h.client.Get("http://bus/parameters/" + name)
	if err != nil {
		log.Debugf("bus: parameter %s unavailable: %v", name, err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debugf("bus: parameter %s rejected with %d", name, resp.StatusCode)
		return ""
	}

	var out struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Debugf("bus: parameter %s undecodable: %v", name, err)
		return ""
	}
	return out.Value
}

// Close unsubscribes and shuts the endpoint down. Errors during teardown
// are logged but never block it.
func (h *Handle) Close() {
	h.m.Lock()
	h.handlers = make(map[string]Handler)
	h.m.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.server.Shutdown(ctx); err != nil {
		log.Warnf("bus: shutdown: %v", err)
	}
	if err := os.Remove(h.socketPath); err != nil && !os.IsNotExist(err) {
		log.Warnf("bus: socket cleanup: %v", err)
	}
	atomic.StoreUint32(&h.ready, 0)
}

func (h *Handle) dispatch(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	h.m.Lock()
	handler, ok := h.handlers[name]
	h.m.Unlock()

	if !ok {
		http.Error(w, "no such subscription", http.StatusNotFound)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "unreadable payload", http.StatusBadRequest)
		return
	}

	handler(payload)
	w.WriteHeader(http.StatusOK)
}
