// Package tracker owns the durable processing state: the record sets of
// succeeded and failed asset-processing attempts. It is the only component
// allowed to mutate them; everything else goes through the Store interface.
//
// Two backends implement the same contract. The JSON backend keeps two
// independent flat files and rewrites the full record set atomically on every
// mutation; a missing or corrupt file reads as an empty set. The SQLite
// backend keeps the two record sets as tables and preserves insertion order
// via the rowid. Neither backend provides concurrent-writer isolation: the
// pipeline is single-threaded and concurrent runs are excluded by the batch
// run lock.
package tracker
