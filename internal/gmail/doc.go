// Package gmail wraps the Gmail v1 API for the tool handlers: message
// search and retrieval, draft management, label operations, MIME message
// construction for sending, and response shaping (header decoding, body
// extraction, attachment metadata).
//
// Remote failures are surfaced as *RemoteError carrying the provider's HTTP
// status and message. Nothing here retries; callers see every failure.
package gmail
