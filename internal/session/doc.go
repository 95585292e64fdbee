// Package session holds per-user application state.
//
// A Session is created at first contact and passed explicitly to every
// controller. It owns the authenticated identity and storage token, the
// loaded account, one operation state per resource (account, drive,
// transaction), the last transaction result, user notifications and upload
// progress. All fields are guarded by the session mutex; controllers mutate
// the session between adapter calls, never while holding it across one.
//
// Sessions are indexed by a Registry keyed by random UUIDs and expire after
// a period of inactivity.
package session
