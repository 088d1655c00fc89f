// Package websocket pushes dataset events to browser clients.
//
// A Hub owns the set of connected clients and fans out broadcast messages;
// each Client runs a read pump, which only keeps the connection alive, and
// a write pump that delivers queued messages and pings. The dataset service
// broadcasts a message after every reload so open dashboards can refresh.
package websocket
