// Package transaction runs the test-transaction workflow.
//
// A submission walks idle → connecting → loading_signer → checking_balance →
// submitting → awaiting_inclusion → settled_success | settled_failure. Every
// transition is recorded on the session, which forwards it to subscribers.
// The whole run is bounded by a deadline; a connection that was opened is
// closed exactly once before the result is reported.
package transaction
