// Package acl is the anti-corruption layer between the Telegram Bot API and
// the domain.
//
// Bot API DTOs stay unexported in this package. Callers see only
// [domain.ChatMessage], [domain.Reply] and domain errors.
//
// Every Bot API method answers with an envelope:
//
//	{"ok": true, "result": ...}
//	{"ok": false, "error_code": 401, "description": "Unauthorized"}
//
// [Call] posts a method, unwraps the envelope and decodes the result. Failed
// envelopes and transport failures are translated by [MapAPIError]:
//
//   - 400 → [domain.ErrValidation]
//   - 401, 403 → [domain.ErrForbidden]
//   - 404 → [domain.ErrNotFound]
//   - 409 → [domain.ErrConflict] (another poller holds getUpdates)
//   - 429, 5xx, network → [domain.ErrUnavailable]
//
// Client-level errors ([clients.ErrCircuitOpen], [clients.ErrMaxRetriesExceeded])
// also become [domain.ErrUnavailable].
package acl
