// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package dcmconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Recognized configuration document keys
const (
	KeyUploadProtocol    = "urn:settings:LogUploadSettings:UploadRepository:uploadProtocol"
	KeyUploadURL         = "urn:settings:LogUploadSettings:UploadRepository:URL"
	KeyUploadOnReboot    = "urn:settings:LogUploadSettings:UploadOnReboot"
	KeyLogUploadCron     = "urn:settings:LogUploadSettings:UploadSchedule:cron"
	KeyFirmwareCheckCron = "urn:settings:CheckSchedule:cron"
	KeyTimeZoneMode      = "urn:settings:TimeZoneMode"

	// telemetryURN marks the start of the telemetry profile, which belongs
	// to a separate subsystem and is stripped before parsing
	telemetryURN = "urn:settings:TelemetryProfile"

	// uploadRepositoryKey is the single nested object preserved verbatim in
	// the derived files
	uploadRepositoryKey = "uploadRepository"
)

// Document is the parsed view of one configuration document. It is treated
// as immutable for the duration of one configuration cycle.
type Document struct {
	UploadProtocol    string
	UploadURL         string
	UploadOnReboot    int
	LogUploadCron     string
	FirmwareCheckCron string
	TimeZoneMode      string

	// scalars holds every top-level scalar, raw, for the flat writers
	scalars map[string]string
	// uploadRepository holds the nested block, raw, for the pretty writer
	uploadRepository map[string]interface{}
}

// ParseDocument reads and parses the configuration document at path. A JSON
// parse failure is fatal for the cycle: no defaults are applied on error.
func ParseDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dcmconfig: cannot read document %s", path)
	}

	text := truncateAtTelemetry(string(raw))

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, errors.Wrapf(err, "dcmconfig: document %s is not valid JSON", path)
	}

	doc := &Document{
		UploadProtocol: "HTTP",
		TimeZoneMode:   "Local Time",
		scalars:        make(map[string]string),
	}

	for key, value := range parsed {
		switch v := value.(type) {
		case string:
			doc.scalars[key] = v
		case float64:
			doc.scalars[key] = formatNumber(v)
		case bool:
			doc.scalars[key] = fmt.Sprintf("%t", v)
		case map[string]interface{}:
			if key == uploadRepositoryKey {
				doc.uploadRepository = v
			}
		}
	}

	if v, ok := doc.scalars[KeyUploadProtocol]; ok && v != "" {
		doc.UploadProtocol = v
	}
	doc.UploadURL = doc.scalars[KeyUploadURL]
	doc.LogUploadCron = doc.scalars[KeyLogUploadCron]
	doc.FirmwareCheckCron = doc.scalars[KeyFirmwareCheckCron]
	if v, ok := doc.scalars[KeyTimeZoneMode]; ok && v != "" {
		doc.TimeZoneMode = v
	}
	if v, ok := doc.scalars[KeyUploadOnReboot]; ok {
		if v == "1" || strings.EqualFold(v, "true") {
			doc.UploadOnReboot = 1
		}
	}

	log.Debugf("dcmconfig: parsed document %s (%d scalars)", path, len(doc.scalars))
	return doc, nil
}

// truncateAtTelemetry strips everything from the first occurrence of the
// telemetry URN onward and re-closes the JSON object. The telemetry profile
// is consumed by a separate subsystem and can be arbitrarily large.
func truncateAtTelemetry(text string) string {
	idx := strings.Index(text, telemetryURN)
	if idx < 0 {
		return text
	}

	// back up over the key's opening quote
	cut := idx
	if cut > 0 && text[cut-1] == '"' {
		cut--
	}

	head := strings.TrimRight(text[:cut], " \t\r\n")
	head = strings.TrimSuffix(head, ",")
	return head + "}"
}

// formatNumber renders a JSON number the way the document writers expect:
// integers without an exponent or decimal point.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
