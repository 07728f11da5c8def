// Package specobj owns the identity model for spectroscopic objects found
// on a multi-slit detector image.
//
// Responsibilities: the object record (SpecObj), the composite object name
// codec, the instrument configuration key, enumeration of records from
// slit-edge and trace arrays, and tolerance matching of names produced by
// independent reductions.
//
// Dependency rule: no SQL, plotting or CLI code is allowed in this package.
// Image processing, slit tracing and extraction live upstream; this package
// only consumes their arrays and hands records back for extraction to fill.
package specobj
