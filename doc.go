/*
Package pmap provides a persistent, hash-addressed associative map: every
Add/Set returns a new logical version while reusing structure from the
prior one, so old versions remain valid and observable at O(1) cost to
retain.

Conceptually infinite

A Map is conceptually infinite: every key of the key type is defined,
bound to a default value unless explicitly overridden. Iteration and
equality only ever consider the keys whose value differs from that
default.

Complexity

  - Copy (retaining a prior version): O(1)
  - Get: O(log n) expected, given a well-distributed Hasher
  - Add: O(log n) expected time and space
  - Iteration: amortized O(1) per step
  - Zip: O(n)
  - Equal: O(n), walking Zip over both maps' non-default entries

What are focused-path tries

A Map is a binary trie addressed by the 32-bit hash of its keys, using a
"focused path" node representation: each node stores one (key, value) pair
plus one off-side pointer per trie level along the path to that pair,
rather than a chain of one node per level. This is the data structure
behind V8's PersistentMap (src/compiler/persistent-map.h), used there to
track per-variable value state across basic blocks during SSA
construction without invalidating prior snapshots.

Persistence

A bare Map is purely in-memory, backed by an Arena that frees every node
it allocated in one shot via Reset. Save and Load add an optional layer
for taking a content-addressed snapshot of a Map durable across process
boundaries, with separate file, S3, and bbolt-backed Persist
implementations in persist/file, persist/s3, and persist/bolt.

Inspiration

Like the immutable collection types in Clojure and Haskell, the point of
structural sharing here is that reasoning about a value over time gets
easier when "the value at time T" is just a value, not a mutable
structure that has to be snapshotted defensively before handing a
reference to someone else.
*/
package pmap
