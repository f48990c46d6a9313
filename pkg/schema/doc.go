// Package schema implements the tracker schema tree: an ordered forest of
// named fields, each optionally nesting child fields, with a global
// example-round counter kept in lockstep across every field at every depth.
// The tree is the single owner of its nodes; the public API hands out value
// snapshots and accepts mutations by field id. Serialize and Deserialize
// exchange the nested id-to-record mapping that preset storage, prompt
// building, and output merging all consume.
package schema
