// Package services holds the document intelligence core: the inference
// gateway, the three-stage pipeline, the memory arena and the query engine.
//
// Each service implements a driving port and reaches infrastructure only
// through driven ports, so every collaborator can be replaced in tests.
package services
