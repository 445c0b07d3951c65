// SPDX-License-Identifier: MPL-2.0

// Package litedit edits list and map literals inside configuration source files
// without reformatting them.
//
// An Editor is bound to one file. Every operation re-reads the file, locates the
// literal that belongs to a key, infers the quoting and separator style already
// used there, splices text in at the end of the literal and writes the result
// back through a BackupGuard. Existing entries are never removed: DisableItem
// comments them out instead, so the file keeps a readable history of edits.
//
//	ed := litedit.New("config/app.php")
//	changed, err := ed.AddItem("providers", `Acme\Billing\BillingServiceProvider`)
//
// The scanner is purely textual. It understands comments and quoted strings
// well enough to find brackets and entry boundaries, and relies on a
// literal.Evaluator for the semantic question of which items are present.
package litedit
