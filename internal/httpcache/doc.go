// Package httpcache decodes the files pip keeps under <cache>/http and
// <cache>/http-v2 back into the HTTP responses that were stored there.
//
// Each file starts with a `cc=<scheme>,` framing prefix followed by the
// scheme's payload. Only scheme 4 (a MessagePack envelope) is in use by
// current pip releases; every other scheme is reported as
// ErrUnsupportedScheme so that callers can skip the file and keep going.
// Decoding is read-only and pass-through: the stored request context and
// Vary data are ignored and the response is returned exactly as stored.
package httpcache
