// Package locator canonicalizes raw resource references pulled from a
// document tree into the absolute form used as asset identity.
//
// Canonicalize never fails with an error. Every outcome is a Result whose
// Reject kind says why no locator was produced, so callers can fold
// failures into "no record" as an explicit branch.
package locator
