/*
Package loader reads field descriptors, models and registry configuration
from files.

# Documents

Descriptors and models are JSON or YAML documents, chosen by file
extension. YAML is decoded into plain data, converted to JSON and then
decoded through the same path as JSON input, so both formats accept exactly
the same descriptor shapes.

# Registry Configuration

Registry configuration is written in HCL. A path may name a single file or
a directory, which is searched recursively for .hcl files. Every file may
contain any of the following blocks:

	extras {
	  immutable           = true
	  reset_field_on_hide = true
	  lazy_render         = false
	  check_expression_on = "modelChange"
	}

	type "email" {
	  extends  = "input"
	  wrappers = ["form-field"]
	  defaults = { templateOptions = { type = "email" } }
	}

	wrapper "panel" {
	  types = ["group"]
	}

	validation_message "required" {
	  message = "{label} is required"
	}

	validator "zip" {
	  pattern = "[0-9]{5}"
	  message = "Not a zip code"
	}

A validator declares either a pattern, matched against the whole string
value, or an expression evaluated with value, model, field and options in
scope. Empty values always pass, leaving presence to the required rule.
Blocks are applied in file order, file by file, as one registry
configuration per file.
*/
package loader
