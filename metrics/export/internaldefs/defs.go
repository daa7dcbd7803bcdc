package internaldefs

import (
	"github.com/MrEthical07/authcore"
)

// CounterDef defines a public type used by authcore APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by authcore APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   authcore.MetricID
	Name string
	Help string
}

// AuditDroppedName is the counter exported for [authcore.Engine.AuditDropped].
const AuditDroppedName = "authcore_audit_dropped_total"

// CounterDefs lists every exported counter in a stable order.
var CounterDefs = []CounterDef{
	{ID: authcore.MetricRegisterSuccess, Name: "authcore_register_success_total", Help: "Successful registrations."},
	{ID: authcore.MetricRegisterFailure, Name: "authcore_register_failure_total", Help: "Registrations rejected for invalid input or internal errors."},
	{ID: authcore.MetricRegisterDuplicate, Name: "authcore_register_duplicate_total", Help: "Registrations rejected because the email is taken."},
	{ID: authcore.MetricLoginSuccess, Name: "authcore_login_success_total", Help: "Successful password logins."},
	{ID: authcore.MetricLoginFailure, Name: "authcore_login_failure_total", Help: "Failed password logins."},
	{ID: authcore.MetricLoginFederatedOnly, Name: "authcore_login_federated_only_total", Help: "Password logins refused for accounts without a password."},
	{ID: authcore.MetricRefreshSuccess, Name: "authcore_refresh_success_total", Help: "Successful refresh token rotations."},
	{ID: authcore.MetricRefreshFailure, Name: "authcore_refresh_failure_total", Help: "Failed refresh operations."},
	{ID: authcore.MetricRefreshReplayRejected, Name: "authcore_refresh_replay_rejected_total", Help: "Refreshes presenting an already revoked token."},
	{ID: authcore.MetricRefreshReuseDetected, Name: "authcore_refresh_reuse_detected_total", Help: "Refreshes that lost a concurrent rotation race."},
	{ID: authcore.MetricLogout, Name: "authcore_logout_total", Help: "Single-session logouts."},
	{ID: authcore.MetricLogoutFailure, Name: "authcore_logout_failure_total", Help: "Rejected logouts."},
	{ID: authcore.MetricLogoutAll, Name: "authcore_logout_all_total", Help: "Revoke-all-sessions operations."},
	{ID: authcore.MetricSessionCreated, Name: "authcore_session_created_total", Help: "Refresh tokens issued."},
	{ID: authcore.MetricSessionRevoked, Name: "authcore_session_revoked_total", Help: "Refresh tokens revoked."},
	{ID: authcore.MetricPurgeRun, Name: "authcore_purge_runs_total", Help: "Purge operations."},
	{ID: authcore.MetricPurgedTokens, Name: "authcore_purged_tokens_total", Help: "Expired or revoked refresh token records deleted."},
	{ID: authcore.MetricFederatedSignIn, Name: "authcore_federated_sign_in_total", Help: "Federated sign-ins to an already linked account."},
	{ID: authcore.MetricFederatedLinked, Name: "authcore_federated_linked_total", Help: "Local accounts linked to a provider identity."},
	{ID: authcore.MetricFederatedCreated, Name: "authcore_federated_created_total", Help: "Accounts created from a provider identity."},
	{ID: authcore.MetricFederatedConflict, Name: "authcore_federated_conflict_total", Help: "Federated sign-ins refused because the email is linked elsewhere."},
	{ID: authcore.MetricFederatedUnlinked, Name: "authcore_federated_unlinked_total", Help: "Provider identities detached from accounts."},
	{ID: authcore.MetricPasswordChangeSuccess, Name: "authcore_password_change_success_total", Help: "Successful password changes."},
	{ID: authcore.MetricPasswordChangeInvalidOld, Name: "authcore_password_change_invalid_old_total", Help: "Password change attempts with invalid old password."},
	{ID: authcore.MetricPasswordChangeReuseRejected, Name: "authcore_password_change_reuse_rejected_total", Help: "Password change attempts rejected for reuse."},
	{ID: authcore.MetricPasswordSet, Name: "authcore_password_set_total", Help: "Passwords added to accounts that had none."},
	{ID: authcore.MetricPasswordHashUpgraded, Name: "authcore_password_hash_upgraded_total", Help: "Stored hashes upgraded at login."},
	{ID: authcore.MetricAccountDeleted, Name: "authcore_account_deleted_total", Help: "Account delete operations."},
}

// HistogramDefs lists every exported latency histogram.
var HistogramDefs = []HistogramDef{
	{ID: authcore.MetricValidateLatency, Name: "authcore_validate_latency_seconds", Help: "Access token validation latency histogram."},
}

// HistogramUpperBounds are the finite bucket bounds in seconds. The last
// core bucket is +Inf and has no entry here.
var HistogramUpperBounds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5}

// NormalizeBuckets copies raw into the fixed bucket layout, padding missing
// buckets with zero.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets turns per-bucket counts into running totals; the last
// entry is the sample count.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
