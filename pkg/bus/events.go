// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package bus

import (
	"time"

	"github.com/google/uuid"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Status values carried by upload and maintenance events
const (
	UploadSuccess       = "UPLOAD_SUCCESS"
	UploadFailure       = "UPLOAD_FAILURE"
	UploadAborted       = "UPLOAD_ABORTED"
	UploadFolderMissing = "UPLOAD_FOLDER_MISSING"
	UploadFallback      = "UPLOAD_FALLBACK"
	UploadNoLogs        = "UPLOAD_NO_LOGS"

	MaintComplete   = "MAINT_COMPLETE"
	MaintError      = "MAINT_ERROR"
	MaintInProgress = "MAINT_IN_PROGRESS"
)

// Outbound event names for the two status families
const (
	eventUploadStatus      = "LogUpload.UploadStatus"
	eventMaintenanceStatus = "MaintenanceMGR.Status"
)

type statusPayload struct {
	Status    string `json:"status"`
	SessionID string `json:"sessionId"`
	Timestamp string `json:"timestamp"`
}

// Emitter publishes best-effort status events. Publish failures are logged
// and swallowed: events never block or fail the main flow.
type Emitter struct {
	handle    *Handle
	sessionID string
}

// NewEmitter returns an emitter stamping every event with a fresh session ID
func NewEmitter(handle *Handle) *Emitter {
	return &Emitter{
		handle:    handle,
		sessionID: uuid.NewString(),
	}
}

// SessionID returns the ID stamped on this emitter's events
func (e *Emitter) SessionID() string {
	return e.sessionID
}

// Upload emits a log-upload status event
func (e *Emitter) Upload(status string) {
	e.emit(eventUploadStatus, status)
}

// Maintenance emits a maintenance status event
func (e *Emitter) Maintenance(status string) {
	e.emit(eventMaintenanceStatus, status)
}

func (e *Emitter) emit(event, status string) {
	if e == nil || e.handle == nil {
		return
	}
	err := e.handle.Publish(event, statusPayload{
		Status:    status,
		SessionID: e.sessionID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		log.Debugf("bus: dropped %s event %s: %v", event, status, err)
	}
}
