// Package events delivers escrow notifications.
//
// Sinks are fire-and-forget: Log writes every event to the structured log,
// Recorder keeps them in memory, Multi fans out to several sinks and Buffer
// holds the events of one call until the call is committed.
package events
