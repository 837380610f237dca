// # Description
//
// Package cfg provides the control flow view of an instruction graph used by the data-flow analyses.
//
// ## Control Flow Graph (CFG)
//
// In an ir.Func every instruction is a node and its successor list holds the directed edges. A basic
// block is only a grouping of straight-line instructions; edges cross block boundaries freely and loops
// appear as back edges.
//
// This package derives what an analysis needs from that graph:
//
//   - Predecessor lists, the reverse of the successor edges
//   - Reachability from the entry instruction
//   - Depth-first postorder, used as a visiting order by backward analyses
//
// ## Package Functionality
//
//  1. Graph Construction: use `New` to index an ir.Func. Rebuild the graph after the function changes.
//  2. Use `Preds` and `Succs` to walk edges, `PostOrder` and `Backward` to pick an iteration order.
//  3. `Fprint` dumps the edges together with join points and unreachable instructions.
package cfg
