// Package mapping declares how the fields of a view are sourced.
//
// A Descriptor lists, for one view type, which of its fields are copied from
// which field of which source type. Descriptors are built once at startup
// with NewDescriptor and Bind; the field lookups they need are resolved at
// that point so that materializing a view does no name-based introspection.
//
//	desc, err := mapping.NewDescriptor[OrderView](
//	    mapping.Bind[Invoice]("Total", "Amount"),
//	    mapping.Bind[Invoice]("Currency", "Currency"),
//	    mapping.Bind[Customer]("Name", "FullName"),
//	)
//
// Bindings are grouped by source type. Every target field belongs to exactly
// one group, so groups write disjoint field sets and may be materialized
// concurrently.
package mapping
