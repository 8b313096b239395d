// Package validator checks a catalog document for consistency with itself
// and with the image directory.
//
// Validation is read-only and never stops at the first finding. Findings are
// classified as:
//   - critical issues: missing or mistyped required fields, duplicate ids,
//     duplicate shortnames
//   - warnings: blank names, missing descriptions, unsorted records
//   - missing images: records without <shortname>.png
//   - orphaned images: images without a record
//
// Only critical issues make a catalog invalid.
package validator
