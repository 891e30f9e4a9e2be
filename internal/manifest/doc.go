// Package manifest declares configuration schemas in HCL files instead of Go.
//
// A manifest holds one or more schema blocks:
//
//	schema "OptimizerConfig" {
//	  validator = "positive_lr"
//
//	  field "lr" {
//	    type    = number
//	    default = 0.001
//	    doc     = "Learning rate."
//	  }
//	  alias "learning_rate" {
//	    target     = "lr"
//	    deprecated = true
//	  }
//	  sub "batch" {
//	    schema = "BatchConfig"
//	  }
//	}
//
// Field types are HCL type expressions. Resolver and validator hooks, and
// sub-config schemas not declared in a manifest, are looked up by name in a
// registry.Registry populated by Go modules.
package manifest
