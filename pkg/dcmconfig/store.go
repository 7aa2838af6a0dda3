// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package dcmconfig

import (
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Store ties the platform properties to the per-cycle document processing
type Store struct {
	props *Properties

	tmpPath         string
	persistentPath  string
	maintenancePath string
}

// NewStore returns a store writing the derived artifacts to the given paths
func NewStore(props *Properties, tmpPath, persistentPath, maintenancePath string) *Store {
	return &Store{
		props:           props,
		tmpPath:         tmpPath,
		persistentPath:  persistentPath,
		maintenancePath: maintenancePath,
	}
}

// Properties returns the loaded platform properties
func (s *Store) Properties() *Properties {
	return s.props
}

// ProcessDocument runs one configuration cycle: parse the document, write
// both flat files and, when the maintenance manager is enabled and a
// firmware-check schedule exists, the maintenance window file. It succeeds
// only when every applicable artifact was written.
func (s *Store) ProcessDocument(path string) (*Document, error) {
	doc, err := ParseDocument(path)
	if err != nil {
		return nil, err
	}

	if err := doc.WriteDerived(s.tmpPath, s.persistentPath); err != nil {
		return nil, err
	}

	if s.props.MaintenanceEnabled() && doc.FirmwareCheckCron != "" {
		if err := doc.WriteMaintenance(s.maintenancePath); err != nil {
			return nil, err
		}
	}

	log.Infof("dcmconfig: configuration cycle for %s complete", path)
	return doc, nil
}
