// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"crypto/tls"
	"os"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/bus"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Engine exit codes, also the process exit codes of the uploadstb binary.
const (
	ExitSuccess    = 0
	ExitFailure    = 1
	ExitAborted    = 2
	ExitWriteError = 3
	ExitUsage      = 4
)

var errAttemptFailed = errors.New("upload: attempt failed")

// Engine drives one upload session over a prepared context.
type Engine struct {
	ctx     *Context
	emitter *bus.Emitter

	// CodeBig and Certs are replaceable before Execute; the defaults shell
	// out to the platform helper and present no client certificate.
	CodeBig CodeBig
	Certs   CertSelector
}

// NewEngine returns an engine bound to the context. The emitter may be nil
// when the bus is unavailable; events are then dropped.
func NewEngine(ctx *Context, emitter *bus.Emitter) *Engine {
	return &Engine{
		ctx:     ctx,
		emitter: emitter,
		CodeBig: NewCodeBig(ctx.CodeBigHelper),
	}
}

// Execute runs the session to completion and returns the process exit code.
func (e *Engine) Execute(sess *Session, args Args) int {
	if args.HTTPLink != "" {
		e.ctx.UploadURL = args.HTTPLink
	}

	sess.Trigger = args.Trigger
	sess.Strategy = SelectStrategy(e.ctx, args)
	if sess.Strategy == StrategyRRD {
		sess.ArchiveFile = args.RRDArchive
	}
	log.Infof("upload: session start: strategy=%s trigger=%s", sess.Strategy, sess.Trigger)

	if sess.Strategy == StrategyPrivacyAbort {
		if err := TruncateLogs(e.ctx.LogPath); err != nil {
			log.Warnf("upload: privacy enforcement: %v", err)
		}
		e.emitter.Maintenance(bus.MaintComplete)
		return ExitSuccess
	}

	if e.ctx.UploadURL == "" {
		log.Error("upload: no endpoint URL configured")
		e.emitter.Upload(bus.UploadAborted)
		e.emitter.Maintenance(bus.MaintError)
		return ExitAborted
	}

	if err := prepareArchive(e.ctx, sess); err != nil {
		return e.abortOnPrepare(err)
	}

	e.runCycle(sess)
	e.finalize(sess)

	if sess.Success {
		return ExitSuccess
	}
	return ExitFailure
}

func (e *Engine) abortOnPrepare(err error) int {
	switch {
	case errors.Is(err, ErrNoLogs):
		log.Warn("upload: nothing to collect")
		e.emitter.Upload(bus.UploadNoLogs)
		e.emitter.Maintenance(bus.MaintError)
		return ExitFailure
	case os.IsNotExist(errors.Cause(err)):
		log.Errorf("upload: %v", err)
		e.emitter.Upload(bus.UploadFolderMissing)
		e.emitter.Maintenance(bus.MaintError)
		return ExitFailure
	}
	log.Errorf("upload: cannot build archive: %v", err)
	e.emitter.Upload(bus.UploadFailure)
	e.emitter.Maintenance(bus.MaintError)
	return ExitWriteError
}

// runCycle plans the paths and walks primary then fallback until one
// succeeds or both budgets are exhausted.
func (e *Engine) runCycle(sess *Session) {
	codebigOut := e.ctx.CodeBigBlocked
	if !codebigOut && !e.CodeBig.Available() {
		codebigOut = true
	}

	plan := decidePaths(e.ctx.DirectBlocked, codebigOut)
	sess.Primary, sess.Fallback = plan.primary, plan.fallback
	log.Infof("upload: path plan primary=%s fallback=%s", sess.Primary, sess.Fallback)

	if sess.Primary == PathNone {
		log.Error("upload: both paths blocked, nothing to try")
		return
	}

	if e.tryPath(sess, sess.Primary) {
		sess.Success = true
		return
	}
	if sess.Fallback == PathNone {
		return
	}

	sess.UsedFallback = true
	e.emitter.Upload(bus.UploadFallback)
	log.Warnf("upload: %s exhausted, falling back to %s", sess.Primary, sess.Fallback)

	if e.tryPath(sess, sess.Fallback) {
		sess.Success = true
	}
}

// tryPath spends the path's attempt budget with a constant interval between
// attempts.
func (e *Engine) tryPath(sess *Session, p Path) bool {
	budget := e.ctx.DirectMaxAttempts
	if p == PathCodeBig {
		budget = e.ctx.CodeBigMaxAttempts
	}
	if budget <= 0 {
		return false
	}

	op := func() error {
		if e.attempt(sess, p) {
			return nil
		}
		return errAttemptFailed
	}
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(e.ctx.AttemptInterval), uint64(budget-1))
	return backoff.Retry(op, b) == nil
}

// attempt performs one budgeted metadata+PUT round trip. A local certificate
// problem repeats the round trip under the next certificate without
// consuming the attempt.
func (e *Engine) attempt(sess *Session, p Path) bool {
	if p == PathDirect {
		sess.DirectAttempts++
	} else {
		sess.CodeBigAttempts++
	}

	target := e.ctx.UploadURL
	if p == PathCodeBig {
		signed, err := e.CodeBig.SignURL(target)
		if err != nil {
			log.Errorf("upload: %v", err)
			return false
		}
		target = signed
	}

	for {
		cert, err := e.certificate()
		if err != nil {
			log.Warnf("upload: certificate fetch: %v", err)
			if e.Certs.Retry() {
				continue
			}
			return false
		}

		client := buildClient(e.ctx, cert)
		presigned, err := postMetadata(client, target, sess.ArchiveFile, e.ctx.Timestamp, e.ctx.EncryptUpload)
		if err == nil {
			err = putArchive(client, presigned, sess.ArchiveFile)
		}
		if err == nil {
			return true
		}

		if errors.Is(err, errCertProblem) && e.Certs != nil && e.Certs.Retry() {
			log.Warn("upload: certificate rejected, retrying with the next one")
			continue
		}
		log.Warnf("upload: %s attempt failed: %v", p, err)
		return false
	}
}

func (e *Engine) certificate() (*tls.Certificate, error) {
	if e.Certs == nil {
		return nil, nil
	}
	return e.Certs.Certificate()
}

// finalize applies the block-marker rules, disposes of the archive and runs
// the retention sweep. Marker writes are the only state shared with future
// sessions.
func (e *Engine) finalize(sess *Session) {
	viaCodeBig := sess.Success &&
		((sess.UsedFallback && sess.Fallback == PathCodeBig) ||
			(!sess.UsedFallback && sess.Primary == PathCodeBig))

	if viaCodeBig {
		if err := SetMarker(e.ctx.DirectMarker); err != nil {
			log.Warnf("upload: cannot set direct marker: %v", err)
		}
	}
	if !sess.Success && sess.CodeBigAttempts > 0 {
		if err := SetMarker(e.ctx.CodeBigMarker); err != nil {
			log.Warnf("upload: cannot set codebig marker: %v", err)
		}
	}

	if sess.Success && sess.ArchiveFile != "" {
		if err := os.Remove(sess.ArchiveFile); err != nil && !os.IsNotExist(err) {
			log.Warnf("upload: cannot remove %s: %v", sess.ArchiveFile, err)
		}
	}

	RemovePartialArchives(e.ctx.LogPath)
	SweepRetention(e.ctx.LogPath, e.ctx.RetentionDays)

	if sess.Success {
		e.emitter.Upload(bus.UploadSuccess)
		e.emitter.Maintenance(bus.MaintComplete)
		log.Infof("upload: session complete: direct_attempts=%d codebig_attempts=%d fallback=%v",
			sess.DirectAttempts, sess.CodeBigAttempts, sess.UsedFallback)
	} else {
		e.emitter.Upload(bus.UploadFailure)
		e.emitter.Maintenance(bus.MaintError)
		log.Errorf("upload: session failed: direct_attempts=%d codebig_attempts=%d",
			sess.DirectAttempts, sess.CodeBigAttempts)
	}
}
