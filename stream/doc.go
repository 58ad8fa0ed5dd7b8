// Package stream maintains a resilient, receive-only subscription to a
// realtime narrative event stream.
//
// A Subscription owns one transport at a time, selected from the endpoint
// scheme: http/https endpoints are consumed as server-sent events, ws/wss
// endpoints as websocket text frames. Inbound frames are decoded and
// validated by the event package; accepted events accumulate in a bounded,
// newest-first log and malformed frames are logged and dropped without
// disturbing it.
//
// Connection loss is handled internally: drops schedule reconnects on an
// exponential backoff schedule with jitter, a heartbeat monitor forces a
// reconnect when the stream goes silent, and once the retry ceiling is hit
// the subscription parks in an error state until Reconnect is called.
// Decision-class events are additionally routed to an optional handler after
// they enter the log.
package stream
