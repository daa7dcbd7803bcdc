package authcore

import (
	internalmetrics "github.com/MrEthical07/authcore/internal/metrics"
)

// MetricID identifies a specific counter or histogram in the in-process
// metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricRegisterSuccess is an exported constant or variable used by the authentication engine.
	MetricRegisterSuccess = internalmetrics.MetricRegisterSuccess
	// MetricRegisterFailure is an exported constant or variable used by the authentication engine.
	MetricRegisterFailure = internalmetrics.MetricRegisterFailure
	// MetricRegisterDuplicate is an exported constant or variable used by the authentication engine.
	MetricRegisterDuplicate = internalmetrics.MetricRegisterDuplicate
	// MetricLoginSuccess is an exported constant or variable used by the authentication engine.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the authentication engine.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricLoginFederatedOnly counts password logins refused because the account has no password.
	MetricLoginFederatedOnly = internalmetrics.MetricLoginFederatedOnly
	// MetricRefreshSuccess is an exported constant or variable used by the authentication engine.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant or variable used by the authentication engine.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshReplayRejected counts refreshes presenting an already revoked token.
	MetricRefreshReplayRejected = internalmetrics.MetricRefreshReplayRejected
	// MetricRefreshReuseDetected counts refreshes that lost the revoke race.
	MetricRefreshReuseDetected = internalmetrics.MetricRefreshReuseDetected
	// MetricLogout is an exported constant or variable used by the authentication engine.
	MetricLogout = internalmetrics.MetricLogout
	// MetricLogoutFailure is an exported constant or variable used by the authentication engine.
	MetricLogoutFailure = internalmetrics.MetricLogoutFailure
	// MetricLogoutAll is an exported constant or variable used by the authentication engine.
	MetricLogoutAll = internalmetrics.MetricLogoutAll
	// MetricSessionCreated is an exported constant or variable used by the authentication engine.
	MetricSessionCreated = internalmetrics.MetricSessionCreated
	// MetricSessionRevoked counts refresh token records flipped to revoked.
	MetricSessionRevoked = internalmetrics.MetricSessionRevoked
	// MetricPurgeRun is an exported constant or variable used by the authentication engine.
	MetricPurgeRun = internalmetrics.MetricPurgeRun
	// MetricPurgedTokens counts refresh token records deleted by purges.
	MetricPurgedTokens = internalmetrics.MetricPurgedTokens
	// MetricFederatedSignIn is an exported constant or variable used by the authentication engine.
	MetricFederatedSignIn = internalmetrics.MetricFederatedSignIn
	// MetricFederatedLinked is an exported constant or variable used by the authentication engine.
	MetricFederatedLinked = internalmetrics.MetricFederatedLinked
	// MetricFederatedCreated is an exported constant or variable used by the authentication engine.
	MetricFederatedCreated = internalmetrics.MetricFederatedCreated
	// MetricFederatedConflict is an exported constant or variable used by the authentication engine.
	MetricFederatedConflict = internalmetrics.MetricFederatedConflict
	// MetricFederatedUnlinked is an exported constant or variable used by the authentication engine.
	MetricFederatedUnlinked = internalmetrics.MetricFederatedUnlinked
	// MetricPasswordChangeSuccess is an exported constant or variable used by the authentication engine.
	MetricPasswordChangeSuccess = internalmetrics.MetricPasswordChangeSuccess
	// MetricPasswordChangeInvalidOld is an exported constant or variable used by the authentication engine.
	MetricPasswordChangeInvalidOld = internalmetrics.MetricPasswordChangeInvalidOld
	// MetricPasswordChangeReuseRejected is an exported constant or variable used by the authentication engine.
	MetricPasswordChangeReuseRejected = internalmetrics.MetricPasswordChangeReuseRejected
	// MetricPasswordSet is an exported constant or variable used by the authentication engine.
	MetricPasswordSet = internalmetrics.MetricPasswordSet
	// MetricPasswordHashUpgraded counts hashes rewritten during login.
	MetricPasswordHashUpgraded = internalmetrics.MetricPasswordHashUpgraded
	// MetricAccountDeleted is an exported constant or variable used by the authentication engine.
	MetricAccountDeleted = internalmetrics.MetricAccountDeleted
	// MetricValidateLatency is the access-token validation latency histogram.
	MetricValidateLatency = internalmetrics.MetricValidateLatency

	// MetricIDCount is the number of defined metric IDs. Exporters iterate
	// [0, MetricIDCount).
	MetricIDCount = internalmetrics.MetricIDCount
)

// Metrics holds atomic counters and the optional validation latency histogram.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
