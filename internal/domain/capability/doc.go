/*
Package capability defines the host side of the sandbox boundary.

A Handle is a call-only, copy-in/copy-out reference to one host function; it
is the sandbox's only means of affecting the outside world. Values crossing
the boundary live in a closed JSON-like domain enforced by Normalize, so no
shared mutable object graph can ever span the boundary.

The Registry holds the capabilities a deployment composes at startup. Runs
select a subset by name; tool implementations (search, calendar, messaging)
stay entirely outside this package and are injected as closures.
*/
package capability
