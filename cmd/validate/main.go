// Command validate checks every boss, story and arena document in a prefab
// tree and exits non-zero when any of them is broken.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/milk9111/volgkeep/arena"
	"github.com/milk9111/volgkeep/prefabs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	flags.SetOutput(stderr)
	dir := flags.String("dir", "", "prefab directory to check; the embedded prefabs when empty")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	var fsys fs.FS = prefabs.FS
	if *dir != "" {
		fsys = os.DirFS(*dir)
	}

	r := report{out: stdout}
	r.check(context.Background(), fsys)
	fmt.Fprintf(stdout, "%d documents, %d errors, %d warnings\n", r.docs, r.errors, r.warnings)
	if r.errors > 0 {
		return 1
	}
	return 0
}

type report struct {
	out                    io.Writer
	docs, errors, warnings int
}

func (r *report) fail(kind prefabs.Kind, id string, err error) {
	r.errors++
	fmt.Fprintf(r.out, "FAIL %s\n", prefabs.Path(kind, id))
	for _, line := range flatten(err) {
		fmt.Fprintf(r.out, "  %s\n", line)
	}
}

func (r *report) warn(kind prefabs.Kind, id, msg string) {
	r.warnings++
	fmt.Fprintf(r.out, "WARN %s: %s\n", prefabs.Path(kind, id), msg)
}

func (r *report) ok(kind prefabs.Kind, id string) {
	fmt.Fprintf(r.out, "ok   %s\n", prefabs.Path(kind, id))
}

func (r *report) check(ctx context.Context, fsys fs.FS) {
	src := prefabs.NewFSSource(fsys)

	r.each(fsys, prefabs.KindBoss, func(id string) {
		if _, err := prefabs.LoadBoss(ctx, src, id); err != nil {
			r.fail(prefabs.KindBoss, id, err)
			return
		}
		r.ok(prefabs.KindBoss, id)
	})

	r.each(fsys, prefabs.KindStory, func(id string) {
		prog, err := prefabs.LoadStory(ctx, src, id)
		if err != nil {
			r.fail(prefabs.KindStory, id, err)
			return
		}
		for _, label := range prog.Unresolved() {
			r.warn(prefabs.KindStory, id, fmt.Sprintf("goto %q names no label and is skipped", label))
		}
		r.ok(prefabs.KindStory, id)
	})

	r.each(fsys, prefabs.KindArena, func(id string) {
		layout, err := arena.Load(fsys, id)
		if err == nil {
			err = layout.CheckSpawns()
		}
		if err != nil {
			r.fail(prefabs.KindArena, id, err)
			return
		}
		if layout.BossID == "" {
			r.warn(prefabs.KindArena, id, "no boss property; -boss must be given")
		}
		r.ok(prefabs.KindArena, id)
	})
}

func (r *report) each(fsys fs.FS, kind prefabs.Kind, fn func(id string)) {
	ids, err := prefabs.IDs(fsys, kind)
	if err != nil {
		r.errors++
		fmt.Fprintf(r.out, "FAIL %s: %v\n", kind, err)
		return
	}
	for _, id := range ids {
		r.docs++
		fn(id)
	}
}

// flatten splits joined errors so each prints on its own line.
func flatten(err error) []string {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var lines []string
		for _, e := range joined.Unwrap() {
			lines = append(lines, flatten(e)...)
		}
		return lines
	}
	return []string{err.Error()}
}
