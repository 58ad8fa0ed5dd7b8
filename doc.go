// Package storystream maintains a long-lived, one-directional event stream
// from a narrative server to an interactive client, surfacing live updates
// (character actions, story beats, system notices, decision prompts) without
// polling.
//
// # Architecture
//
// Data flows one direction through a fixed pipeline:
//
//	transport → codec → {bounded buffer, decision router} → subscription API
//
// The packages map onto that pipeline:
//
//   - event: typed RealtimeEvent model and the codec that parses and
//     validates raw frames, dropping malformed ones at the boundary
//   - stream: the Subscription — connection state machine, heartbeat
//     monitor, decision router, and the public read API
//   - pkg/backoff: exponential backoff schedule with jitter and a retry
//     ceiling for reconnection
//   - pkg/buffer: fixed-capacity newest-first event log with drop-oldest
//     eviction and copy-on-write snapshots
//   - errors: classified error handling (transient / invalid / fatal)
//   - metric: Prometheus metrics registry and exposition server
//
// # Resilience model
//
// The hard part of a client-side stream is staying alive and correct across
// unreliable networks. storystream handles this with three mechanisms:
//
//   - Heartbeat: any inbound frame is an implicit liveness signal; silence
//     beyond a configurable timeout forces a reconnect even when the
//     transport never reports an error.
//   - Backoff: reconnection delays grow exponentially with uniform jitter,
//     capped at a maximum, until a retry ceiling turns the subscription
//     into a terminal error state awaiting a manual Reconnect.
//   - Bounded memory: the event log never grows past its capacity; the
//     oldest entries are evicted, while decision-class events are
//     additionally routed to a dedicated handler so urgent prompts are
//     never lost to trimming.
//
// # Quick start
//
//	cfg := stream.DefaultConfig()
//	cfg.Endpoint = "https://example.com/api/events/stream"
//	cfg.OnDecisionEvent = func(ev event.RealtimeEvent, data *event.DecisionEventData) {
//		// surface the prompt to the user
//	}
//	sub, err := stream.New(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sub.Close()
//	sub.Start()
//
//	// later, from the UI layer:
//	for _, ev := range sub.Events() { // newest first
//		fmt.Println(ev.Title)
//	}
//
// Rendering of events, the server emitting them, authentication, and all
// request/response traffic elsewhere in the application are out of scope;
// storystream only consumes the stream.
package storystream
