// Package prereq evaluates normalized prerequisite expressions against a
// completed-course set. It answers which candidates are takeable this term,
// which are blocked and by what, and which takeable courses would unblock the
// most of them.
package prereq
