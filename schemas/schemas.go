// Package schemas embeds the JSON Schemas for benchmark result files.
package schemas

import _ "embed"

// MicroSchemaJSON describes benchmarks-*.json files written by the micro suite.
//
//go:embed micro.schema.json
var MicroSchemaJSON string

// ConcurrencySchemaJSON describes concurrency-*.json files.
//
//go:embed concurrency.schema.json
var ConcurrencySchemaJSON string
