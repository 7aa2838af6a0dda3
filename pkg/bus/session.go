// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package bus

import (
	"encoding/json"
	"sync"
	"sync/atomic"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Event names on the device bus
const (
	// EventSetConfig carries the filesystem path of the current
	// configuration document
	EventSetConfig = "Device.DCM.Setconfig"
	// EventProcessConfig asks the daemon to re-read and re-apply the
	// configuration; the payload is ignored
	EventProcessConfig = "Device.DCM.Processconfig"
	// EventReloadConfig is published to request a configuration push from
	// the peer
	EventReloadConfig = "Device.X_RDKCENTREL-COM.Reloadconfig"
)

// TR-181 parameter names read from the peer
const (
	ParamUploadEndpoint = "Device.DeviceInfo.X_RDKCENTRAL-COM_RFC.Feature.DCM.UploadEndpoint"
	ParamEncryptUpload  = "Device.DeviceInfo.X_RDKCENTRAL-COM_RFC.Feature.EncryptCloudUpload.Enable"
	ParamPrivacyMode    = "Device.X_RDKCENTRAL-COM_Privacy.PrivacyMode"
)

type setConfigPayload struct {
	Path string `json:"dcmSetConfig"`
}

type reloadPayload struct {
	Reconfig string `json:"dcmReConfig"`
}

// Session tracks the two inbound subscriptions, the outbound registration
// and the per-cycle state the handlers feed: the latest config path and the
// process-requested latch.
type Session struct {
	handle *Handle

	m          sync.Mutex
	configPath string

	// level-triggered: many events coalesce into one processing pass
	processRequested uint32
}

// OpenSession subscribes to the inbound events and starts the endpoint
func OpenSession(socketPath, peerPath string) (*Session, error) {
	s := &Session{handle: NewHandle(socketPath, peerPath)}

	s.handle.Subscribe(EventSetConfig, s.onSetConfig)
	s.handle.Subscribe(EventProcessConfig, s.onProcessConfig)

	if err := s.handle.Start(); err != nil {
		return nil, err
	}
	return s, nil
}

// Ready reports whether the subscriptions are live
func (s *Session) Ready() bool {
	return s.handle.Ready()
}

// PublishReload asks the peer for a configuration push. Called exactly once
// after the subscriptions are ready.
func (s *Session) PublishReload() error {
	return s.handle.Publish(EventReloadConfig, reloadPayload{Reconfig: "ReConfig"})
}

// ConfigPath returns the most recently received configuration document path
func (s *Session) ConfigPath() string {
	s.m.Lock()
	defer s.m.Unlock()
	return s.configPath
}

// TakeProcessRequest consumes the process-requested latch. It returns true
// at most once per raised latch no matter how many events arrived.
func (s *Session) TakeProcessRequest() bool {
	return atomic.SwapUint32(&s.processRequested, 0) == 1
}

// Handle exposes the underlying endpoint for publishing derived events
func (s *Session) Handle() *Handle {
	return s.handle
}

// Close tears the session down; errors are logged, never fatal
func (s *Session) Close() {
	s.handle.Close()
}

func (s *Session) onSetConfig(payload []byte) {
	var p setConfigPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Path == "" {
		log.Warnf("bus: malformed set-config payload: %v", err)
		return
	}

	s.m.Lock()
	s.configPath = p.Path
	s.m.Unlock()

	// a new document implies a processing pass
	atomic.StoreUint32(&s.processRequested, 1)
	log.Infof("bus: configuration document path set to %s", p.Path)
}

func (s *Session) onProcessConfig(_ []byte) {
	atomic.StoreUint32(&s.processRequested, 1)
	log.Debug("bus: process-config requested")
}
