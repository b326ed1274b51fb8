// Package graphfile loads graph definitions written in HCL and assembles
// them into stream builders.
//
// A graph file declares nodes and at most one run block:
//
//	node "double" {
//	  function  = "scale"
//	  pipe_from = ["source"]
//	}
//
//	run {
//	  mandatory = ["double"]
//	  args      = [1, 2]
//	  kwargs    = { factor = 2 }
//	}
//
// Node functions are resolved by name against a registry.Registry.
package graphfile
