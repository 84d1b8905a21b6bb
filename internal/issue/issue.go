// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry.
type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	DirectoryRemapId
	SourceNotFoundId
	ConfigLoadFailedId
	OutputNotWritableId
	InvalidVersionRangeId
)

type (
	MarkdownMsg string

	// Issue is one catalog page.
	Issue struct {
		id    Id
		mdMsg MarkdownMsg
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Render renders the page with the glamour style at stylePath ("dark", "light",
// "notty", "auto" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No build manifest found!

pyz looked for a manifest in the project directory and found none.

## Search order
1. pyz.cue
2. pyz.yaml
3. pyz.yml

## Things you can try
- Create a starter manifest:
~~~
$ pyz init
~~~
- Point at a manifest explicitly:
~~~
$ pyz build path/to/pyz.cue
~~~
- Build from flags alone:
~~~
$ pyz build -o app.pyz -m app/main -I app
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# The build manifest is invalid!

The manifest could not be parsed, or a field failed validation.

## Things you can try
- Read the field path in the error, for example ` + "`include[1].glob`" + `
- Every manifest needs ` + "`output`" + `, ` + "`main`" + ` and at least one ` + "`include`" + ` entry
- Python versions are written as ` + "`\"3\"`" + `, ` + "`\"3.8\"`" + ` or ` + "`\"3.8.1\"`",
	}

	directoryRemapIssue = &Issue{
		id: DirectoryRemapId,
		mdMsg: `
# A directory include cannot be moved!

Directory includes keep their relative path inside the archive, so the
destination of a directory must equal its source.

## Things you can try
- Drop the destination from the include
- Move or symlink the directory so its path matches the layout you want
- Include the files one by one, each file can have its own destination`,
	}

	sourceNotFoundIssue = &Issue{
		id: SourceNotFoundId,
		mdMsg: `
# An include source does not exist!

Include sources are resolved relative to the manifest directory, or to the
directory given with ` + "`--dir`" + `.

## Things you can try
- Check the spelling and case of the path
- Run ` + "`pyz build --dir <project>`" + ` when building from another directory`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration!

## Things you can try
- Show where pyz looks for its configuration:
~~~
$ pyz config path
~~~
- Write a fresh default configuration:
~~~
$ pyz config init
~~~
- Check the file against the expected values:
~~~
$ pyz config show
~~~`,
	}

	outputNotWritableIssue = &Issue{
		id: OutputNotWritableId,
		mdMsg: `
# The archive could not be written!

## Things you can try
- Create the output directory first
- Check write permissions on the output and launcher paths
- Make sure the output is not a directory`,
	}

	invalidVersionRangeIssue = &Issue{
		id: InvalidVersionRangeId,
		mdMsg: `
# The supported Python range is empty!

No interpreter can satisfy the range, so the built archive would always exit.

## Things you can try
- Make the minimum lower than the maximum
- With equal bounds, make the maximum inclusive:
~~~
$ pyz build --python-min 3.11 --python-max 3.11 --inclusive-max
~~~`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():    manifestNotFoundIssue,
		manifestParseErrorIssue.Id():  manifestParseErrorIssue,
		directoryRemapIssue.Id():      directoryRemapIssue,
		sourceNotFoundIssue.Id():      sourceNotFoundIssue,
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		outputNotWritableIssue.Id():   outputNotWritableIssue,
		invalidVersionRangeIssue.Id(): invalidVersionRangeIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	out := maps.Values(issues)
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id) - int(b.id) })
	return out
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
