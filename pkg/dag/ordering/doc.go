// Package ordering arranges the nodes of each row of a layered graph from
// left to right.
//
// # The Ordering Problem
//
// Once nodes sit on rows, the remaining freedom is their order within each
// row. Fewer edge crossings make the drawing easier to read. Finding the
// minimum is NP-hard, so heuristics are used.
//
//   - [Barycentric]: the classic Sugiyama barycenter method with transpose
//     refinement
//   - [InsertionOrder]: keeps the order nodes were added in
//
// # Barycentric Heuristic
//
//  1. Start from insertion order
//  2. Sweep down: sort each row by the mean position of its parents
//  3. Sweep up: sort each row by the mean position of its children
//  4. After each sweep, swap adjacent nodes while that removes crossings
//  5. Keep the ordering with the fewest crossings seen; earlier wins ties
//
// Sorting is stable and nodes without neighbours in the reference row keep
// their current index as weight, so the result depends only on the input and
// its order.
//
// # Usage
//
//	var orderer ordering.Orderer = ordering.Barycentric{Passes: 8}
//	orders := orderer.OrderRows(g) // map[row][]nodeID
package ordering
