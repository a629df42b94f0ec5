// Package resolver implements the interactive tools used to turn a non-linearly
// ordered graggle into a linearly ordered file.
//
// A graggle can fail to be linearly ordered for two reasons: it can have cycles (too
// many edges) or it can have nodes with no prescribed order between them (too few
// edges). Resolution is a two-stage process: CycleResolver deals with cycles first by
// choosing one surviving node per strongly connected component; the result feeds
// OrderResolver, which repeatedly offers candidate next-nodes until every node has
// either been placed in the output order or explicitly deleted.
package resolver
