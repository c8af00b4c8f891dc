// Package infer converts untyped (string) table columns into integer,
// float, date or text columns.
//
// # Policies
//
// Two policies are available and callers pick one explicitly:
//
//   - [Fast] commits a column to a candidate kind only when the share of
//     cells that parse reaches [Config.ConfidenceThreshold]. Numbers are tried
//     first, then each of [Config.DateFormats] in order; the first candidate
//     that clears the threshold wins. Otherwise the column is left as is.
//   - [Loose] has no threshold. Untyped columns are parsed as numbers, text
//     columns as free-form dates, and a final normalization pass narrows
//     integral floats to integers. Columns with few parseable cells end up
//     mostly null.
//
// Both operate column by column; a column's result depends only on its own
// cells.
//
// # Failures
//
// Unparseable cells never abort a conversion. With [ModeBestEffort] they
// become null. With [ModeStrict] the same decision is made but every
// non-missing cell dropped by a committed conversion is reported as a
// [*CoercionError]:
//
//	cfg := infer.DefaultConfig()
//	cfg.Mode = infer.ModeStrict
//	inf, _ := infer.New(infer.PolicyFast, cfg)
//	res, err := inf.Infer(table)
//	if errors.Is(err, infer.ErrUnparseable) { ... }
package infer
