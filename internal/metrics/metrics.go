// Package metrics exposes the Prometheus counters and gauges emitted by
// the session engine, file codec and password codec. All vars are
// package-level and self-registering via promauto, the same idiom the
// rest of the ambient stack uses for every other instrumented subsystem.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var (
	// Session engine metrics (C5).
	SessionEncryptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silentrelay_session_encrypt_total",
			Help: "Total number of session encryptMessage calls.",
		},
		[]string{"result"}, // ok, no_session
	)

	SessionDecryptTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silentrelay_session_decrypt_total",
			Help: "Total number of session decryptMessage calls by outcome.",
		},
		[]string{"result"}, // ok, replay, auth_error, out_of_order, no_session, invalid_envelope
	)

	SessionRatchetTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silentrelay_session_ratchet_total",
			Help: "Total number of DH ratchet (key rotation) steps performed.",
		},
		[]string{"peer_dh"}, // local, peer - whether the dhOut came from a peer contribution or a local fallback
	)

	SkippedKeysCached = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "silentrelay_session_skipped_keys_cached",
			Help: "Current number of skipped message keys cached per session.",
		},
		[]string{"peer_id"},
	)

	// File codec metrics (C2/C3).
	FileCodecBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silentrelay_filecodec_bytes_total",
			Help: "Total plaintext bytes processed by the file codec.",
		},
		[]string{"direction", "algo"}, // direction: encrypt, decrypt
	)

	FileCodecErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silentrelay_filecodec_errors_total",
			Help: "Total file codec failures by kind.",
		},
		[]string{"direction", "kind"}, // kind: auth, integrity, io
	)

	// Password codec metrics (C7).
	PasswordEncodeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silentrelay_password_encode_total",
			Help: "Total number of password encode operations by outcome.",
		},
		[]string{"result"}, // ok, error
	)

	PasswordMatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "silentrelay_password_match_total",
			Help: "Total number of password match checks by outcome.",
		},
		[]string{"result"}, // match, mismatch, malformed, error
	)
)

// Handler returns the Prometheus metrics HTTP handler, for hosts that
// expose it on their own mux; the crypto toolbox itself opens no
// listening sockets (spec.md Non-goals).
func Handler() http.Handler {
	return promhttp.Handler()
}
