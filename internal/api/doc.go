// Package api is the HTTP client for the captioning backend.
//
// Client exposes one method per backend capability: submissions, the
// moderation queue, system status, analytics, activity, settings, and tone
// options. Every request attaches the stored bearer token when one is held,
// is logged with method, path, status, and duration, and fails with a
// normalized *Error whose Kind separates transport failures, backend
// rejections, authorization failures, and malformed bodies. A 401 clears the
// stored credential and invokes the configured Unauthorized hook before the
// error reaches the caller. Requests are never retried.
package api
