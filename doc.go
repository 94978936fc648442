// Package datamodel implements change-tracking documents.
//
// A Document keeps a committed baseline and a staging area. Writes land in
// staging; Commit reconciles them into the baseline and reports the changes
// as a flat Diff keyed by dotted path, including changes made directly on
// nested documents. A ChangeSet binds watchers and mappings to paths, and
// MapChange dispatches a commit's diff against it while MapUpdate forces a
// refresh regardless of what changed.
//
// Documents and change sets are meant for single-threaded use.
package datamodel
