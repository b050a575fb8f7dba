/*
Package syntax provides the Handle type used to address profiles in a remote directory.

Handles are compared case-insensitively (the remote side treats them that way), and are always embedded in request paths as a single percent-encoded path segment. Use [ParseHandle] on any untrusted input.
*/
package syntax
