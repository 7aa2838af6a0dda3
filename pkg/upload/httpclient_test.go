// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package upload

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCertProblem(t *testing.T) {
	assert.False(t, isCertProblem(nil))
	assert.False(t, isCertProblem(errors.New("connection refused")))
	assert.True(t, isCertProblem(errors.New(`Post "https://x": remote error: tls: bad certificate`)))
	assert.True(t, isCertProblem(errors.New("tls: certificate required")))
}

func TestPostMetadataRejectsNonURLResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("thanks, got it\n")) //nolint:errcheck
	}))
	defer srv.Close()

	archive := filepath.Join(t.TempDir(), "a.tgz")
	require.NoError(t, os.WriteFile(archive, []byte("x"), 0644))

	_, err := postMetadata(srv.Client(), srv.URL, archive, time.Now(), false)
	assert.Error(t, err)
}

func TestPostMetadataSendsFilenameAndHeaders(t *testing.T) {
	var gotFilename, gotMD5, gotTime string
	var gotEncrypt []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotFilename = r.PostForm.Get("filename")
		gotEncrypt = r.PostForm["encrypt"]
		gotMD5 = r.Header.Get("x-md5")
		gotTime = r.Header.Get("x-upload-time")
		w.Write([]byte("https://s3.example/put?sig=x\n")) //nolint:errcheck
	}))
	defer srv.Close()

	archive := filepath.Join(t.TempDir(), "AABB_Logs_05-17-24-10-30AM.tgz")
	require.NoError(t, os.WriteFile(archive, []byte("payload"), 0644))

	presigned, err := postMetadata(srv.Client(), srv.URL, archive, time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC), false)
	require.NoError(t, err)

	assert.Equal(t, "https://s3.example/put?sig=x", presigned)
	assert.Equal(t, "AABB_Logs_05-17-24-10-30AM.tgz", gotFilename)
	assert.Equal(t, "321c3cf486ed509164edec1e1981fec8", gotMD5)
	assert.Equal(t, "2024-05-17T10:30:00Z", gotTime)
	assert.Empty(t, gotEncrypt, "the encrypt flag is only sent when requested")

	_, err = postMetadata(srv.Client(), srv.URL, archive, time.Now(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{"true"}, gotEncrypt)
}

func TestPutArchiveSendsContentLength(t *testing.T) {
	var gotLength int64
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLength = r.ContentLength
		gotBody = make([]byte, r.ContentLength)
		r.Body.Read(gotBody) //nolint:errcheck
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	archive := filepath.Join(t.TempDir(), "a.tgz")
	require.NoError(t, os.WriteFile(archive, []byte("payload"), 0644))

	require.NoError(t, putArchive(srv.Client(), srv.URL, archive))
	assert.Equal(t, int64(7), gotLength)
	assert.Equal(t, "payload", string(gotBody))
}

func TestPutArchiveNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	archive := filepath.Join(t.TempDir(), "a.tgz")
	require.NoError(t, os.WriteFile(archive, []byte("x"), 0644))

	assert.Error(t, putArchive(srv.Client(), srv.URL, archive))
}
