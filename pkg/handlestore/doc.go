/*
Package handlestore provides an in-memory store that takes ownership of
values and hands back opaque, randomly generated string handles.

# Overview

A Manager[T] maps handles to values of any type T. Callers insert a value,
keep the returned Handle, and use it later to reach the value again. Handles
carry no meaning beyond identity: they are fixed-length strings drawn from
[0-9A-Za-z] and are unique within one Manager.

Typical uses are object registries, session or connection tables, and any
API that should hand out references without exposing pointers.

# Basic Usage

	type Conn struct {
	    Addr string
	    Port int
	}

	conns := handlestore.New[Conn](handlestore.WithHashLength(12))

	h, err := conns.Insert(Conn{Addr: "10.0.0.1", Port: 443})
	if err != nil {
	    return err
	}

	c := conns.Get(h)
	c.Port = 8443 // updates the stored value

# Inserting

Three operations add a value, each under a freshly generated handle:

	h, err := m.Insert(v)                        // store a value
	h, err := m.Move(&v)                         // store *v and zero v
	h, err := m.Create(func() T { return ... })  // construct in place

Insertion fails with ErrHandleSpaceExhausted when no unused handle turns up
within WithMaxAttempts candidates, or immediately when every handle of the
configured length is already taken. The Manager is unchanged on failure.

# Lookups Insert On Miss

Get and At (two spellings of the same operation) never report absence.
Looking up an unknown handle inserts a zero-value T under that handle and
returns it, so the lookup itself grows the store:

	m := handlestore.New[Conn]()
	c := m.Get("ZZZZZ") // c points at Conn{}
	m.Len()             // 1

This supports get-or-create call sites. Use Lookup or Has when a read must
not modify the store.

# Iteration

All yields pointers to the stored values and allows in-place updates.
Values yields copies. Iteration order is unspecified and the store must not
grow while an iteration is running:

	for h, c := range conns.All() {
	    c.Port = 443
	    log.Println(h)
	}

# Determinism

Handles come from a pseudo-random source owned by the Manager. WithSeed
makes the handle sequence reproducible, which is useful in tests:

	m := handlestore.New[int](handlestore.WithSeed(42))

Handles are not cryptographically secure and must not be used as secrets.

# Snapshots

SaveSnapshot and RestoreSnapshot copy a Manager to and from a
snapshot.Store (in memory or SQLite). Values are JSON encoded. This is an
optional extension; a Manager never persists anything on its own.
A save replaces the previous snapshot in one step, and a failed save leaves
it untouched.

	store, err := snapshot.NewSQLiteStore("handles.db")
	...
	err = handlestore.SaveSnapshot(ctx, conns, store)
	...
	restored, err := handlestore.RestoreSnapshot[Conn](ctx, store, conns.ID())

# Thread Safety

Manager has no internal locking. Serialize access externally, or use
registry.Registry, which wraps a Manager with a read-write mutex.

# Observability

WithLogger, WithMetrics and WithSpanManager connect a Manager to slog and
OpenTelemetry. Collisions and fallback inserts are logged at debug level;
exhaustion is logged as an error.
*/
package handlestore
