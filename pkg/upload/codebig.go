// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"net/url"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// CodeBig abstracts the signed-request helper for the fallback path.
type CodeBig interface {
	// Available probes the helper once per session. A failed probe blocks
	// CodeBig for this session only; no marker file is written.
	Available() bool
	// SignURL exchanges the direct endpoint URL for a signed CodeBig URL.
	SignURL(raw string) (string, error)
}

// helperCodeBig shells out to the platform helper binary (GetServiceUrl).
type helperCodeBig struct {
	helper    string
	probed    bool
	available bool
}

// NewCodeBig returns the helper-backed CodeBig access for this session.
func NewCodeBig(helper string) CodeBig {
	return &helperCodeBig{helper: helper}
}

func (c *helperCodeBig) Available() bool {
	if c.probed {
		return c.available
	}
	c.probed = true

	path, err := exec.LookPath(c.helper)
	if err != nil {
		log.Debugf("upload: codebig helper %s not found", c.helper)
		return false
	}
	if err := exec.Command(path, "1").Run(); err != nil {
		log.Warnf("upload: codebig probe failed: %v", err)
		return false
	}
	c.available = true
	return true
}

func (c *helperCodeBig) SignURL(raw string) (string, error) {
	out, err := exec.Command(c.helper, "1", raw).Output()
	if err != nil {
		return "", errors.Wrap(err, "upload: codebig signing failed")
	}

	signed := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	u, err := url.Parse(signed)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errors.Errorf("upload: codebig helper returned %q, not a URL", signed)
	}
	return signed, nil
}
