// Package hcl provides the HCL implementation of the plan loading and
// argument binding interfaces defined in the config package.
//
// A plan is one .hcl file or a directory of them. Files may declare at most
// one `scheduler` block between them and any number of `module` blocks:
//
//	scheduler {
//	  accumulate_threshold = 1000
//	  max_running          = 30
//	  tick                 = "100ms"
//	}
//
//	module "pages" {
//	  driver   = "http_pages"
//	  consumes = "species"
//	  produces = "pages"
//	  arguments {
//	    url     = "${env.WIKI_BASE}/wiki/{id}"
//	    pattern = "/wiki/([A-Z][a-z_]+)"
//	  }
//	}
//
// Module arguments stay unevaluated in the model. The Converter evaluates them
// when a driver runs, with the process environment available as `env`.
package hcl
