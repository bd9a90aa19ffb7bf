// Package rf talks to the radio co-processor over a serial link.
//
// The host sends commands framed by package frame and waits for any
// frame from the radio as the acknowledge. The radio periodically
// reports the connection state, battery and host indicators in reply
// to status-sync requests issued by the Supervisor.
//
// Everything here runs on the loop goroutine. The only concurrency is
// inside transports, which buffer received bytes for TryReceive.
package rf
