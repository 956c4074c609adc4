package shell

import (
	"bytes"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/josephlewis42/plsh/core/env"
	"github.com/josephlewis42/plsh/core/proc"
	"github.com/sebdah/goldie/v2"
)

type goldenTestSuite map[string]goldenTest

type goldenTest struct {
	Args   []string
	Script string
}

// Run executes each script with real processes and compares its standard
// output to the golden file named after the test case.
func (gts goldenTestSuite) Run(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("scripts need a POSIX userland")
	}

	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
		goldie.WithSubTestNameForDir(true),
	)

	for tn, tc := range gts {
		t.Run(tn, func(t *testing.T) {
			root := append([]string{tn + ".plsh"}, tc.Args...)
			var stdout, stderr bytes.Buffer
			in := New(env.NewStack(root), &proc.Pipeline{
				Stdin:  strings.NewReader(""),
				Stdout: &stdout,
				Stderr: &stderr,
			})
			in.Stderr = &stderr

			if _, err := in.Run(strings.NewReader(tc.Script)); err != nil {
				t.Fatal(err)
			}

			g.Assert(t, tn, stdout.Bytes())
		})
	}
}

func TestScripts(t *testing.T) {
	goldenTestSuite{
		"hello": {
			Script: "echo hello world\n",
		},
		"assignment": {
			Script: "GREETING=\"hi there\"\necho $GREETING\n",
		},
		"pipeline": {
			Script: "echo one two three | tr \" \" \"\\n\" | sort -r\n",
		},
		"capture": {
			Script: "UP=echo shout | tr a-z A-Z\necho $UP!\n",
		},
		"capture-trims-newlines": {
			Script: "LINES=printf \"a\\n\\n\\n\"\necho \"[$LINES]\"\n",
		},
		"exit-status": {
			Script: "false\necho $?\ntrue | false\necho $?\nfalse | true\necho $?\n",
		},
		"positional": {
			Args:   []string{"first", "second"},
			Script: "echo $0 $1 $2\n",
		},
		"comments": {
			Script: "# header\necho a # trailing\necho b#not-a-comment\n",
		},
		"escapes": {
			Script: "printf \"[%s]\\n\" \"tab\\there\" \"\\$HOME\" \"\\*\" \"\\q\"\n",
		},
		"not-found": {
			Script: "plsh-no-such-command\necho $?\necho still running\n",
		},
		"semicolons": {
			Script: "echo a; echo b;; echo c\n",
		},
		"old-value": {
			Script: "X=base\nX=$X-more\necho $X\n",
		},
		"unbound": {
			Script: "echo \"[$NOPE]\"\n",
		},
		"literal-dollar": {
			Script: "echo $ 5$\n",
		},
	}.Run(t)
}
