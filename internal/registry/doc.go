// Package registry collects the node definitions available to an
// application.
//
// Definitions reach the registry in two ways. Modules written in Go can
// register a complete node.Definition directly. Alternatively a module
// registers only a named handler, and the ports are declared in an HCL
// manifest:
//
//	node "projectile" {
//	  description = "Launches a projectile and reports where it lands."
//	  handler     = "spatial.projectile"
//	  pure        = true
//
//	  input "origin" {
//	    type = position
//	  }
//	  input "direction" {
//	    type = direction
//	  }
//	  output "impact" {
//	    type = position
//	  }
//	}
//
// Type keywords resolve against the named types modules registered with
// RegisterType first, and fall back to HCL type expressions such as
// `number` or `list(string)`.
package registry
