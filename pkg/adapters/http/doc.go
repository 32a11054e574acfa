/*
Package http exposes a Deck over a JSON API.

Clients trigger an action with POST /actions/{slot}, then either poll
GET /actions/{slot} until "done" is true or subscribe to the
GET /actions/{slot}/events server-sent event stream, which ends after the
final snapshot.
*/
package http
