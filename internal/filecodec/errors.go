package filecodec

import "errors"

var (
	// ErrInvalidParam covers malformed inputs: short envelopes, bad context
	// fields, unsupported algorithm tags.
	ErrInvalidParam = errors.New("filecodec: invalid parameter")
	// ErrAuth is returned when an AEAD tag fails to verify.
	ErrAuth = errors.New("filecodec: authentication failed")
	// ErrIntegrity covers header/body size mismatches that aren't an AEAD
	// auth failure: a short header or body, an unknown algorithm tag or one
	// that differs from the context's, plaintext length not matching the
	// header's fileSize field. The header carries no magic number.
	ErrIntegrity = errors.New("filecodec: integrity check failed")
	// ErrIO wraps underlying file I/O failures.
	ErrIO = errors.New("filecodec: I/O error")
)
