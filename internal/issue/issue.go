// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PackageNotFoundId Id = iota + 1
	MetadataInvalidId
	EntryNotFoundId
	BundleFailedId
	ConfigLoadFailedId
	OutputWriteFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation for the failing area
	extLinks []HttpLink  // external links that might be useful for the user
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

// Render renders the issue markdown with the given glamour style
// ("dark", "light", "notty", ...), appending any links as a "See also" list.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))

	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			md.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# No package metadata found!

The build reads the userscript name, version, description and settings
from your package metadata file.

## Things you can try:
- Run the build from the project root, or pass the project directory:
~~~
$ usbundle -C path/to/project build
~~~
- Point at a different metadata file:
~~~
$ usbundle build --package package.yaml
~~~`,
	}

	metadataInvalidIssue = &Issue{
		id: MetadataInvalidId,
		mdMsg: `
# Package metadata is invalid!

Every violation is listed above with the field it applies to.

## Required fields:
- **name**, **description**: non-empty text
- **version**: MAJOR.MINOR.PATCH, digits only (e.g. ` + "`1.2.3`" + `)
- **userscript.matchUrl**: the page pattern, e.g. ` + "`https://example.com/*`" + `

## Optional fields:
- **userscript.homepage**, **downloadUrl**, **updateUrl**: absolute URLs
- **userscript.grants**: distinct grant names such as ` + "`GM_setValue`" + `

## Example:
~~~json
{
  "name": "acme/widget",
  "description": "Does a thing",
  "version": "1.2.3",
  "userscript": {
    "matchUrl": "https://example.com/*",
    "grants": ["GM_setValue", "GM_getValue"]
  }
}
~~~`,
		extLinks: []HttpLink{"https://www.tampermonkey.net/documentation.php#meta:grant"},
	}

	entryNotFoundIssue = &Issue{
		id: EntryNotFoundId,
		mdMsg: `
# Entry point not found!

The bundler starts from a single entry module.

## Things you can try:
- Pass the entry explicitly:
~~~
$ usbundle build --entry src/main.ts
~~~
- Or set it in usbundle.cue:
~~~cue
entry: "src/main.ts"
~~~`,
	}

	bundleFailedIssue = &Issue{
		id: BundleFailedId,
		mdMsg: `
# Bundling failed!

The bundler reported the errors shown above.

## Common causes:
- Imports that cannot be resolved (missing ` + "`npm install`" + `?)
- Syntax errors in the entry module or its imports
- Language features newer than the configured target

## Things you can try:
- Run with verbose mode for more details:
~~~
$ usbundle --verbose build
~~~`,
		extLinks: []HttpLink{"https://esbuild.github.io/api/#build"},
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the project configuration file (usbundle.cue or usbundle.toml).

## Things you can try:
- Print the effective configuration:
~~~
$ usbundle config show
~~~
- Regenerate a default configuration:
~~~
$ usbundle config init
~~~

## Example configuration:
~~~cue
entry:        "src/index.ts"
out_dir:      "dist"
package_file: "package.json"
build: {
	minify:    false
	sourcemap: "inline"
	target:    "es2020"
}
~~~`,
	}

	outputWriteFailedIssue = &Issue{
		id: OutputWriteFailedId,
		mdMsg: `
# Could not write the output file!

## Things you can try:
- Check that the output directory is writable
- Close programs that hold the previous build open
- Choose another directory:
~~~
$ usbundle build --out-dir build
~~~`,
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():   packageNotFoundIssue,
		metadataInvalidIssue.Id():   metadataInvalidIssue,
		entryNotFoundIssue.Id():     entryNotFoundIssue,
		bundleFailedIssue.Id():      bundleFailedIssue,
		configLoadFailedIssue.Id():  configLoadFailedIssue,
		outputWriteFailedIssue.Id(): outputWriteFailedIssue,
	}
)

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, i := range issues {
		out = append(out, i)
	}
	slices.SortFunc(out, func(a, b *Issue) int {
		return int(a.id) - int(b.id)
	})
	return out
}

func Get(id Id) *Issue {
	return issues[id]
}
