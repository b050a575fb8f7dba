/*
Package directory fetches public profiles and their follower/following lists from a remote user directory over HTTP.

The main abstraction is the [Directory] interface, with [APIDirectory] as the HTTP implementation and [MockDirectory] as an in-memory one for tests. [APIDirectory.Fetch] is the single low-level primitive: one GET against a fixed base host, with the result either decoded into the caller's value or returned as a classified error.

Errors fall into five kinds (see [KindOf]): an invalid handle (no request was made), not-found (HTTP 404), any other non-2xx HTTP status ([StatusError]), a transport failure ([TransportError]) and a response body of the wrong shape ([DecodeError]). Nothing in this package retries, caches or imposes a timeout; a single failed attempt is terminal.
*/
package directory
