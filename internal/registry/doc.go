// Package registry is the catalog of functions a graph file can refer to.
//
// Modules register Go functions under stable names (e.g. "sum"); the graph
// file loader looks them up when it turns node blocks into stream nodes.
// ValidateRegistry runs at startup so signature mistakes surface before any
// graph is built.
package registry
