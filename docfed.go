// Package docfed provides a federated documentation cache. It fans a
// query out to external documentation providers, normalizes their
// responses into a common result shape tagged with retention metadata,
// and asynchronously writes qualifying results through to a durable,
// technology-partitioned cache.
//
// This package contains domain types and interfaces following Ben
// Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/,
// yaml/, http/).
package docfed
