// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	FileNotFoundId Id = iota + 1
	KeyNotFoundId
	UnterminatedLiteralId
	NoInsertionPointId
	WriteFailureId
	BackupPresentId
	ConfigLoadFailedId
	PackageNotFoundId
	NothingToRegisterId
	PermissionDeniedId
	NotLiteralId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as terminal markdown using the glamour style at
// stylePath ("dark", "light", "notty", or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# Target file not found!

The configuration file that should be edited does not exist.

## Things you can try:
- Run the command from the project root, or pass it with ` + "`--dir`" + `
- Point to the file explicitly:
~~~
$ confreg --file config/app.php list
~~~
- Set ` + "`target.path`" + ` in your confreg configuration`,
	}

	keyNotFoundIssue = &Issue{
		id: KeyNotFoundId,
		mdMsg: `
# Key not found!

The key to edit does not appear in the target file. Keys are searched for in
quotes, e.g. ` + "`'providers'`" + ` or ` + "`\"aliases\"`" + `.

## Things you can try:
- Check ` + "`target.providers_key`" + ` and ` + "`target.aliases_key`" + ` in your configuration
- Add an empty literal to the file first:
~~~php
'providers' => [
],
~~~`,
	}

	unterminatedLiteralIssue = &Issue{
		id: UnterminatedLiteralId,
		mdMsg: `
# Literal is not closed!

No closing bracket was found after the key. The file was not modified.

## Things you can try:
- Check the file for a missing ` + "`]`" + ` or ` + "`)`" + `
- Make sure the closing bracket is not inside a comment`,
	}

	noInsertionPointIssue = &Issue{
		id: NoInsertionPointId,
		mdMsg: `
# Nowhere to insert!

The literal has no item, comma or opening bracket to append after. The file was
not modified.

## Things you can try:
- Add the first item by hand, then run the command again`,
	}

	writeFailureIssue = &Issue{
		id: WriteFailureId,
		mdMsg: `
# Could not write the file!

The edit was computed but writing it failed. A copy of the previous content was
kept next to the file (e.g. ` + "`app.bak.php`" + `).

## Things you can try:
- Check that the directory is writable
- Restore the previous content:
~~~
$ confreg recover --restore
~~~`,
	}

	backupPresentIssue = &Issue{
		id: BackupPresentId,
		mdMsg: `
# A previous edit did not finish!

A backup file sits next to the target file. Edits are refused until it is
resolved, so that the only copy of the old content is never overwritten.

## Things you can try:
- Put the previous content back:
~~~
$ confreg recover --restore
~~~
- Keep the current content and drop the backup:
~~~
$ confreg recover --discard
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The confreg configuration file has an error. Defaults were not applied.

## Things you can try:
- Print the effective configuration:
~~~
$ confreg config show
~~~
- Write a fresh default configuration:
~~~
$ confreg config init
~~~`,
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not installed!

The package directory was not found under the vendor directory.

## Things you can try:
- Install it first:
~~~
$ composer require vendor/package
~~~
- Check ` + "`discovery.vendor_dir`" + ` in your configuration`,
	}

	nothingToRegisterIssue = &Issue{
		id: NothingToRegisterId,
		mdMsg: `
# Nothing to register!

The package declares no service providers or facades. It may not be meant for
this framework.

## Where confreg looked:
1. ` + "`provides.json`" + `, ` + "`provides.toml`" + ` or ` + "`provides.cue`" + ` in the package root
2. ` + "`extra.laravel`" + ` in the package ` + "`composer.json`" + `
3. Classes extending the configured provider and facade base classes

## Things you can try:
- Register classes by hand with ` + "`confreg provider add`" + ` and ` + "`confreg alias add`" + `
- Extend ` + "`discovery.provider_bases`" + ` if the package uses its own base class`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

You don't have permission to read or write the target file or its directory.

## Things you can try:
- Check file and directory permissions
- Run confreg as the user that owns the project`,
	}

	notLiteralIssue = &Issue{
		id: NotLiteralId,
		mdMsg: `
# Value is not a literal!

The key holds an expression, for example a method chain, instead of an array
literal. confreg only edits literals, so the file was not modified.

## Things you can try:
- Move the entries into a literal the expression reads from:
~~~php
'providers' => ServiceProvider::defaultProviders()->merge([
    App\Providers\AppServiceProvider::class,
])->toArray(),
~~~
- Point ` + "`target.providers_key`" + ` at a key whose value is a literal`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():        fileNotFoundIssue,
		keyNotFoundIssue.Id():         keyNotFoundIssue,
		unterminatedLiteralIssue.Id(): unterminatedLiteralIssue,
		noInsertionPointIssue.Id():    noInsertionPointIssue,
		writeFailureIssue.Id():        writeFailureIssue,
		backupPresentIssue.Id():       backupPresentIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		packageNotFoundIssue.Id():     packageNotFoundIssue,
		nothingToRegisterIssue.Id():   nothingToRegisterIssue,
		permissionDeniedIssue.Id():    permissionDeniedIssue,
		notLiteralIssue.Id():          notLiteralIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
