// Package server exposes the controllers over HTTP.
//
// Routes are served by a gorilla/mux router. Each browser is bound to a
// session.Session through a signed gorilla/sessions cookie carrying the
// session id and the pending OAuth state. Transaction workflow transitions
// and notifications are pushed to the browser over a gorilla/websocket
// stream.
package server
