// Package compliance checks layouts against a GMP rulebook.
//
// The [Rulebook] is immutable reference data decoded from an embedded TOML
// file. Rules flagged checkable are paired with an [Evaluator], a pure
// function over the room/relationship [Graph], through a [Registry] keyed
// by rule id. [NewEngine] refuses a rulebook whose checkable rules lack an
// evaluator, so a missing check fails at startup rather than silently
// passing.
//
// Reference rules (not checkable) are kept for display and never affect
// the score. Callers must not read a 100 score as full regulatory coverage.
//
// # Reports
//
// [Engine.Check] filters the rulebook to the requested [Jurisdiction],
// runs the evaluators concurrently and aggregates a [Report]:
//
//	engine, _ := compliance.DefaultEngine()
//	report, _ := engine.Check(ctx, layout, compliance.JurisdictionEU)
//	fmt.Println(report.Score, report.Summary)
//
// Score is round(100·passed/total), or 100 when nothing applies. The
// summary is worded by the worst failed severity. A failing rule is a
// normal report outcome, never an error.
package compliance
