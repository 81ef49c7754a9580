// Package model defines the data shared across the harness services: test
// specs and their golden-file naming.
package model
