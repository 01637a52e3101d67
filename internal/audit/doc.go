// Package audit knows which release lines are audited against which, how the
// audit report for a line is filtered, and where that report is published.
//
// The report itself comes from a Provider. The default provider runs the
// branch-diff command line tool; tests substitute their own.
package audit
