package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/listview"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

// Options carries the collaborators a subcommand needs.
type Options struct {
	Group  bool // list grouped by pending/done
	Client api.Client

	// Logger is used by the line-oriented subcommands; TUILogger by the
	// interactive view, which must not write to the terminal it draws on.
	Logger    *log.Logger
	TUILogger *log.Logger

	Out, Err io.Writer
}

func (o *Options) defaults() {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	if o.TUILogger == nil {
		o.TUILogger = log.New(io.Discard)
	}
	if o.Client == nil {
		o.Client = api.New(api.DefaultBaseURL, api.WithLogger(o.Logger))
	}
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()
	if len(args) == 0 {
		PrintHelp(opt.Out)
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.Out)
		return 0

	case "ls":
		return doList(ctx, opt)

	case "ui":
		if err := tui.Run(ctx, opt.Client, tui.WithLogger(opt.TUILogger)); err != nil {
			ui.Fail(opt.Err, "ui: "+err.Error())
			return 1
		}
		return 0

	case "add":
		if len(a) == 0 {
			ui.Fail(opt.Err, "usage: todo add <text...>")
			return 2
		}
		return doAdd(ctx, opt, strings.Join(a, " "))

	case "done":
		n, code := indexArg(opt, "done", a, 1)
		if code != 0 {
			return code
		}
		return doToggle(ctx, opt, n)

	case "rename":
		if len(a) < 2 {
			ui.Fail(opt.Err, "usage: todo rename <index> <text...>")
			return 2
		}
		n, code := indexArg(opt, "rename", a[:1], 1)
		if code != 0 {
			return code
		}
		return doRename(ctx, opt, n, strings.Join(a[1:], " "))

	case "rm":
		n, code := indexArg(opt, "rm", a, 1)
		if code != 0 {
			return code
		}
		return doRemove(ctx, opt, n)
	}

	ui.Fail(opt.Err, "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.Err)
	PrintHelp(opt.Err)
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `todo - a tiny client for the todo API

Usage:
  todo [flags] <subcommand> [args]

Subcommands:
  ls                        List items (-group splits pending/done)
  ui                        Interactive list
  add <text...>             Add a new item (text can be multiple words)
  done <index>              Toggle done for item at 1-based index
  rename <index> <text...>  Change the text of an item
  rm <index>                Remove item at 1-based index

Flags:
  -api <url>        API base URL (default %s)
  -config <path>    config file (default ~/.tada/config.toml)
  -log-level <lvl>  debug|info|warn|error
  -log-file <path>  write logs to a file
  -theme <name>     classic|neon|mono
  -group            group ls output

Examples:
  todo add "Buy milk"
  todo ls
  todo done 2
  todo rename 2 "Buy oat milk"
  todo rm 3
`, api.DefaultBaseURL)
}

func indexArg(opt Options, name string, a []string, want int) (int, int) {
	if len(a) != want {
		ui.Fail(opt.Err, fmt.Sprintf("usage: todo %s <index>", name))
		return 0, 2
	}
	n, err := strconv.Atoi(a[0])
	if err != nil {
		ui.Fail(opt.Err, name+": not a number: "+a[0])
		return 0, 2
	}
	return n, 0
}

// -------------- subcommand impls ----------------

// load fetches the list; it prints the failure and returns false on error.
func load(ctx context.Context, opt Options) (*listview.State, bool) {
	s := listview.New()
	s.Load(ctx, opt.Client)
	if s.Err != "" {
		ui.Fail(opt.Err, "load: "+s.Err)
		return nil, false
	}
	return s, true
}

// lookup resolves a 1-based index, printing a usage hint when out of range.
func lookup(opt Options, s *listview.State, userIndex int) (model.Item, bool) {
	it, err := s.At(userIndex)
	if err != nil {
		ui.Fail(opt.Err, err.Error())
		fmt.Fprintln(opt.Err, ui.Current().Muted.Render("Hint: run `todo ls` to see valid indexes"))
		return model.Item{}, false
	}
	return it, true
}

func doList(ctx context.Context, opt Options) int {
	s, ok := load(ctx, opt)
	if !ok {
		return 1
	}
	t := ui.Current()

	done, total := s.Stats()
	var lines []string
	lines = append(lines, ui.Header(done, total))
	lines = append(lines, t.Muted.Render(ui.ProgressBar(done, total, 28)))
	lines = append(lines, "")

	switch {
	case s.Empty():
		lines = append(lines, t.Muted.Render(listview.EmptyMessage))
	case opt.Group:
		lines = append(lines, groupLines(s.Items)...)
	default:
		lines = append(lines, flatLines(s.Items)...)
	}
	lines = append(lines, "")
	if !s.Empty() {
		lines = append(lines, s.Summary())
	}
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(opt.Out, lines)
	return 0
}

func doAdd(ctx context.Context, opt Options, text string) int {
	s := listview.New()
	s.Input = text
	if !s.Add(ctx, opt.Client) {
		ui.Fail(opt.Err, "add: empty text")
		return 2
	}
	if s.Err != "" {
		ui.Fail(opt.Err, "add: "+s.Err)
		return 1
	}
	opt.Logger.Debug("added", "id", s.Items[len(s.Items)-1].ID)
	ui.OK(opt.Out, "added")
	return 0
}

func doToggle(ctx context.Context, opt Options, userIndex int) int {
	s, ok := load(ctx, opt)
	if !ok {
		return 1
	}
	it, ok := lookup(opt, s, userIndex)
	if !ok {
		return 2
	}
	s.Toggle(ctx, opt.Client, it)
	if s.Err != "" {
		ui.Fail(opt.Err, "done: "+s.Err)
		return 1
	}
	ui.OK(opt.Out, "toggled")
	return 0
}

func doRename(ctx context.Context, opt Options, userIndex int, text string) int {
	s, ok := load(ctx, opt)
	if !ok {
		return 1
	}
	it, ok := lookup(opt, s, userIndex)
	if !ok {
		return 2
	}
	if !s.Rename(ctx, opt.Client, it.ID, text) {
		ui.Fail(opt.Err, "rename: empty text")
		return 2
	}
	if s.Err != "" {
		ui.Fail(opt.Err, "rename: "+s.Err)
		return 1
	}
	ui.OK(opt.Out, "renamed")
	return 0
}

func doRemove(ctx context.Context, opt Options, userIndex int) int {
	s, ok := load(ctx, opt)
	if !ok {
		return 1
	}
	it, ok := lookup(opt, s, userIndex)
	if !ok {
		return 2
	}
	s.Delete(ctx, opt.Client, it.ID)
	if s.Err != "" {
		ui.Fail(opt.Err, "rm: "+s.Err)
		return 1
	}
	ui.OK(opt.Out, "removed")
	return 0
}

// -------------- rendering helpers --------------

func flatLines(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for i, it := range items {
		out = append(out, itemLine(i+1, it))
	}
	return out
}

// groupLines keeps each item's overall index so done/rm still line up.
func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []string
	for i, it := range items {
		if it.Completed {
			done = append(done, itemLine(i+1, it))
		} else {
			pend = append(pend, itemLine(i+1, it))
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, pend...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, done...)
	}
	return lines
}

func itemLine(userIndex int, it model.Item) string {
	idx := ui.Current().Muted.Render(fmt.Sprintf("%2d.", userIndex))
	text := it.Text
	if r := []rune(text); len(r) > 80 {
		text = string(r[:77]) + "..."
	}
	return fmt.Sprintf("%s %s %s", idx, ui.Checkbox(it.Completed), ui.ItemText(text, it.Completed))
}
