// Package config loads the inputs of a precompute run: the precompute
// properties, the class summary statistics and the run settings.
//
// Properties are a flat YAML mapping from key to string. Keys fall into
// three families:
//
//	precompute.query.<name>          literal query, materialized
//	precompute.constructquery.<name> path spec, expanded then materialized
//	test.query.<name>                literal query, run by the verification battery only
//
// Any other key is a configuration error.
package config
