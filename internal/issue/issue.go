// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

const (
	NodeNotFoundId Id = iota + 1
	NodeTooOldId
	RunningAsRootId
	HomeNotFoundId
	CorruptStateId
	CoreUnavailableId
	CoreInstallFailedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry with markdown help for a failure class.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

var (
	//nolint:gochecknoglobals // Test seam for glamour.Render.
	render = glamour.Render

	nodeNotFoundIssue = &Issue{
		id: NodeNotFoundId,
		mdMsg: `
# Node.js not found!

weex runs its core on Node.js, and no ` + "`node`" + ` binary is on your PATH.

## Things you can try:
- Install Node.js 7.6 or newer, for example through nvm:
~~~
$ nvm install --lts
~~~

- Make sure the directory holding ` + "`node`" + ` is in your PATH`,
		extLinks: []HttpLink{"https://nodejs.org/en/download"},
	}

	nodeTooOldIssue = &Issue{
		id: NodeTooOldId,
		mdMsg: `
# Node.js is too old!

The weex core needs async/await support, which arrived in Node.js 7.6.

## Things you can try:
- Upgrade Node.js:
~~~
$ nvm install --lts
$ nvm use --lts
~~~

- Check which binary is picked up:
~~~
$ node --version
~~~`,
		extLinks: []HttpLink{"https://nodejs.org/en/download"},
	}

	runningAsRootIssue = &Issue{
		id: RunningAsRootId,
		mdMsg: `
# Please don't use sudo to run weex!

weex installs its core under your home directory. Files created as root there
break later runs as your own user.

## Things you can try:
- Give your user back the npm folders:
~~~
$ sudo chown -R $(whoami) $(npm config get prefix)/{lib/node_modules,bin,share}
~~~

- If you really must run as root, opt out of the privilege downgrade:
~~~
$ WEEX_ALLOW_SUDO=1 weex <command>
~~~`,
	}

	homeNotFoundIssue = &Issue{
		id: HomeNotFoundId,
		mdMsg: `
# Home directory not found!

weex keeps its core, modules and settings under ` + "`~/.wx`" + ` and could not
determine your home directory.

## Things you can try:
- Set the HOME environment variable (USERPROFILE on Windows)
- Run weex as a user that has a home directory`,
	}

	corruptStateIssue = &Issue{
		id: CorruptStateId,
		mdMsg: `
# Local weex state is corrupt!

A JSON file under ` + "`~/.wx`" + ` could not be parsed. The file is named in the
error above.

## Things you can try:
- Fix the JSON by hand, or delete the file
- Reinstall the core:
~~~
$ weex repair
~~~`,
	}

	coreUnavailableIssue = &Issue{
		id: CoreUnavailableId,
		mdMsg: `
# The weex core could not be loaded!

The core package is missing its entry point and repairing it did not help.

## Things you can try:
- Reinstall the core, optionally pinning a version:
~~~
$ weex repair
$ weex repair @weex-cli/core@2.0.0
~~~

- Use a registry you can reach:
~~~
$ weex repair --registry https://registry.npmjs.org
~~~

- Point weex at a local checkout of the core:
~~~
$ WEEX_CORE_PATH=/path/to/core weex <command>
~~~`,
	}

	coreInstallFailedIssue = &Issue{
		id: CoreInstallFailedId,
		mdMsg: `
# Installing the weex core failed!

npm could not install the core package.

## Things you can try:
- Check that npm works and the registry is reachable:
~~~
$ npm ping --registry https://registry.npmjs.org
~~~

- Retry with a different registry or a forced reinstall:
~~~
$ weex repair --registry https://registry.npmjs.org --force
~~~`,
	}

	issues = map[Id]*Issue{
		nodeNotFoundIssue.Id():      nodeNotFoundIssue,
		nodeTooOldIssue.Id():        nodeTooOldIssue,
		runningAsRootIssue.Id():     runningAsRootIssue,
		homeNotFoundIssue.Id():      homeNotFoundIssue,
		corruptStateIssue.Id():      corruptStateIssue,
		coreUnavailableIssue.Id():   coreUnavailableIssue,
		coreInstallFailedIssue.Id(): coreInstallFailedIssue,
	}
)

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

// Render renders the entry as terminal markdown using the glamour style at
// stylePath ("dark", "light", "notty", ...).
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if links := append(i.DocLinks(), i.extLinks...); len(links) > 0 {
		md += "\n\n## See also:\n"
		for _, link := range links {
			md += "- <" + string(link) + ">\n"
		}
	}
	return render(md, stylePath)
}

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

// Get returns the catalog entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
