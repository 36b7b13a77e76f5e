// Package audit implements the codebase audit reasoning engine used by the codeaudit CLI.
//
// A TechDebtScanner walks source files for debt markers, dead code, commented-out
// code, and temporary code, and folds outdated dependencies from the facts
// document into the same inventory. An OpportunityRuleEngine matches a catalog of
// missing-feature patterns against an OpportunityContext assembled by
// ContextBuilder. An InteractiveSession collects four prioritization answers and
// refines finding severities and recommendations. Service drives the whole run and
// CommandBuilder wires it into Cobra.
package audit
