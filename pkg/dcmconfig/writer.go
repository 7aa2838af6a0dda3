// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package dcmconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// WriteDerived writes the two flat settings files consumed by collaborators:
// the temporary one with every top-level scalar, the persistent one without
// the upload URL line. Both carry the nested uploadRepository block when the
// document has one.
func (d *Document) WriteDerived(tmpPath, persistentPath string) error {
	if err := d.writeFlat(tmpPath, true); err != nil {
		return err
	}
	return d.writeFlat(persistentPath, false)
}

func (d *Document) writeFlat(path string, includeUploadURL bool) error {
	var buf bytes.Buffer

	keys := make([]string, 0, len(d.scalars))
	for key := range d.scalars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !includeUploadURL && key == KeyUploadURL {
			continue
		}
		fmt.Fprintf(&buf, "%s=%s\n", key, d.scalars[key])
	}

	if d.uploadRepository != nil {
		nested, err := json.MarshalIndent(d.uploadRepository, "", "  ")
		if err != nil {
			return errors.Wrap(err, "dcmconfig: cannot encode uploadRepository")
		}
		fmt.Fprintf(&buf, "%q:%s\n", uploadRepositoryKey, nested)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "dcmconfig: cannot create directory for %s", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "dcmconfig: cannot write %s", path)
	}

	log.Debugf("dcmconfig: wrote %s (%d bytes)", path, buf.Len())
	return nil
}
