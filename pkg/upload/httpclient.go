// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"bufio"
	"crypto/md5"
	"crypto/tls"
	"encoding/hex"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// CertSelector supplies the client certificate for mTLS. Certificate may
// return nil when the device has none. After a local certificate problem the
// engine calls Retry; returning true rotates to the next certificate and
// repeats the same attempt without consuming budget.
type CertSelector interface {
	Certificate() (*tls.Certificate, error)
	Retry() bool
}

var errCertProblem = errors.New("upload: local certificate problem")

// buildClient returns an HTTP client with the configured connect and total
// timeouts. TLS 1.2 is the floor whenever the OS-release probe succeeded.
func buildClient(ctx *Context, cert *tls.Certificate) *http.Client {
	tlsConf := &tls.Config{}
	if ctx.TLSEnabled {
		tlsConf.MinVersion = tls.VersionTLS12
	}
	if cert != nil {
		tlsConf.Certificates = []tls.Certificate{*cert}
	}
	if ctx.OCSPStapling {
		// runs after the standard chain verification; a missing staple is
		// reported but does not fail the handshake
		tlsConf.VerifyConnection = func(cs tls.ConnectionState) error {
			if len(cs.OCSPResponse) == 0 {
				log.Warnf("upload: %s sent no stapled OCSP response", cs.ServerName)
			}
			return nil
		}
	}

	return &http.Client{
		Timeout: ctx.TotalTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: ctx.ConnectTimeout,
			}).DialContext,
			TLSClientConfig:     tlsConf,
			TLSHandshakeTimeout: ctx.ConnectTimeout,
		},
	}
}

// isCertProblem classifies transport failures caused by the client
// certificate, the rough equivalent of curl's error 58. These are the only
// failures the certificate selector may turn into a free retry.
func isCertProblem(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "tls: bad certificate") ||
		strings.Contains(msg, "tls: certificate required") ||
		strings.Contains(msg, "tls: unknown certificate")
}

// postMetadata announces the archive to the endpoint and returns the
// pre-signed upload URL from the first line of the response body.
func postMetadata(client *http.Client, endpoint, archive string, ts time.Time, encrypt bool) (string, error) {
	sum, err := fileMD5(archive)
	if err != nil {
		return "", err
	}

	form := url.Values{"filename": {filepath.Base(archive)}}
	if encrypt {
		form.Set("encrypt", "true")
	}
	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "upload: metadata request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-md5", sum)
	req.Header.Set("x-upload-time", ts.UTC().Format(time.RFC3339))

	resp, err := client.Do(req)
	if err != nil {
		if isCertProblem(err) {
			return "", errCertProblem
		}
		return "", errors.Wrap(err, "upload: metadata POST")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return "", errors.Errorf("upload: metadata POST returned %d", resp.StatusCode)
	}

	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, "upload: reading metadata response")
	}
	line = strings.TrimSpace(line)

	u, err := url.Parse(line)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", errors.Errorf("upload: metadata response %q is not a pre-signed URL", line)
	}
	return line, nil
}

// putArchive streams the archive bytes to the pre-signed URL.
func putArchive(client *http.Client, presigned, archive string) error {
	f, err := os.Open(archive)
	if err != nil {
		return errors.Wrapf(err, "upload: cannot open %s", archive)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Wrapf(err, "upload: cannot stat %s", archive)
	}

	req, err := http.NewRequest(http.MethodPut, presigned, f)
	if err != nil {
		return errors.Wrap(err, "upload: PUT request")
	}
	req.ContentLength = info.Size()

	resp, err := client.Do(req)
	if err != nil {
		if isCertProblem(err) {
			return errCertProblem
		}
		return errors.Wrap(err, "upload: PUT")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("upload: PUT returned %d", resp.StatusCode)
	}
	log.Infof("upload: archive %s uploaded (%d bytes)", filepath.Base(archive), info.Size())
	return nil
}

func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "upload: cannot open %s", path)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "upload: cannot hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
