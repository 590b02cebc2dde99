package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/docopt/docopt-go"

	"github.com/funvibe/ljson/internal/config"
	"github.com/funvibe/ljson/internal/diagnostics"
	"github.com/funvibe/ljson/internal/evaluator"
	"github.com/funvibe/ljson/internal/library"
	"github.com/funvibe/ljson/internal/parser"
	"github.com/funvibe/ljson/internal/pipeline"
	"github.com/funvibe/ljson/internal/reify"
	"github.com/funvibe/ljson/internal/store"
	"github.com/funvibe/ljson/internal/transport"
)

// Version can be set at build time using: -ldflags "-X main.Version=..."
var Version = "dev"

const usage = `ljson - serialize functions as text and run them safely.

Usage:
  ljson check [--config=PATH] [FILE]
  ljson normalize [--config=PATH] [FILE]
  ljson call [--config=PATH] [--std] FILE [ARGS...]
  ljson repl [--config=PATH] [--std]
  ljson store put [--config=PATH] NAME [FILE]
  ljson store get [--config=PATH] KEY
  ljson store list [--config=PATH]
  ljson store delete [--config=PATH] KEY
  ljson store call [--config=PATH] [--std] KEY [ARGS...]
  ljson serve [--config=PATH] [--addr=ADDR] [--store]
  ljson invoke [--addr=ADDR] [--std] (--name=NAME | FILE) [ARGS...]
  ljson -h | --help
  ljson --version

Arguments:
  FILE   Term file; "-" or omitted reads stdin.
  ARGS   Argument terms, e.g. 42 '"text"' '(x)=>(x)'.
  NAME   Name of a stored term.
  KEY    Name or id of a stored term.

Options:
  --config=PATH  Settings file. Defaults to the nearest ljson.yaml.
  --std          Pass the std library accessor as the first argument.
  --addr=ADDR    Server address. Defaults to server.addr from settings.
  --store        Let the server call stored terms by name.
  --name=NAME    Call a term stored on the server.
  -h, --help     Display this help.
  --version      Print ljson version.
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type app struct {
	opts     docopt.Opts
	settings *config.Settings
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	color    bool
}

func run(argv []string, stdin io.Reader, stdout, stderr io.Writer) int {
	helped := false
	p := &docopt.Parser{
		HelpHandler: func(err error, text string) {
			helped = true
			if err != nil {
				fmt.Fprintln(stderr, text)
				return
			}
			fmt.Fprintln(stdout, text)
		},
	}
	opts, err := p.ParseArgs(usage, argv, Version)
	if err != nil {
		return 2
	}
	if helped {
		return 0
	}

	a := &app{opts: opts, stdin: stdin, stdout: stdout, stderr: stderr, color: colorEnabled(stderr)}
	if err := a.loadSettings(); err != nil {
		a.fail(err)
		return 1
	}

	switch {
	case a.flag("check"):
		err = a.check(false)
	case a.flag("normalize"):
		err = a.check(true)
	case a.flag("repl"):
		err = a.repl()
	case a.flag("store"):
		err = a.storeCommand()
	case a.flag("call"):
		err = a.call()
	case a.flag("serve"):
		err = a.serve()
	case a.flag("invoke"):
		err = a.invoke()
	}
	if err != nil {
		a.fail(err)
		return 1
	}
	return 0
}

func (a *app) flag(name string) bool {
	v, _ := a.opts.Bool(name)
	return v
}

func (a *app) str(name string) string {
	v, _ := a.opts.String(name)
	return v
}

func (a *app) args() []string {
	v, _ := a.opts["ARGS"].([]string)
	return v
}

func (a *app) loadSettings() error {
	if path := a.str("--config"); path != "" {
		s, err := config.LoadSettings(path)
		if err != nil {
			return err
		}
		a.settings = s
		return nil
	}
	s, err := config.Discover(".")
	if err != nil {
		return err
	}
	a.settings = s
	return nil
}

// source reads FILE, or stdin when FILE is empty or "-".
func (a *app) source() (string, string, error) {
	path := a.str("FILE")
	if path == "" || path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return "", "", err
		}
		return string(data), "<stdin>", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return string(data), path, nil
}

func (a *app) newContext(src, file string) *pipeline.PipelineContext {
	ctx := pipeline.NewPipelineContext(strings.TrimRight(src, "\r\n"))
	ctx.FilePath = file
	return ctx.Apply(a.settings)
}

// parse runs the parse stage only.
func (a *app) parse(src, file string) (*pipeline.PipelineContext, error) {
	ctx := pipeline.New(&parser.ParserProcessor{}).Run(a.newContext(src, file))
	return ctx, ctx.Err()
}

// materialize parses and evaluates src.
func (a *app) materialize(src, file string) (evaluator.Object, error) {
	ctx := pipeline.New(
		&parser.ParserProcessor{},
		&evaluator.MaterializeProcessor{},
	).Run(a.newContext(src, file))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ctx.Result.(evaluator.Object), nil
}

func (a *app) check(normalize bool) error {
	src, file, err := a.source()
	if err != nil {
		return err
	}
	ctx, err := a.parse(src, file)
	if err != nil {
		return err
	}
	if normalize {
		fmt.Fprintln(a.stdout, ctx.Term.String())
		return nil
	}
	fmt.Fprintf(a.stdout, "%s: ok\n", file)
	return nil
}

func (a *app) call() error {
	src, file, err := a.source()
	if err != nil {
		return err
	}
	return a.apply(src, file)
}

// apply materializes the function text and the argument texts, applies
// them and prints the reified result.
func (a *app) apply(src, file string) error {
	fn, err := a.materialize(src, file)
	if err != nil {
		return err
	}
	var args []evaluator.Object
	for i, text := range a.args() {
		arg, err := a.materialize(text, fmt.Sprintf("<arg %d>", i))
		if err != nil {
			return err
		}
		args = append(args, arg)
	}
	if a.flag("--std") {
		fn = library.WithLib(library.FromSettings(a.settings.Library), fn)
	}

	e := evaluator.New()
	e.MaxDepth = a.settings.Limits.MaxEvalDepth
	result := e.Apply(fn, args)
	if errObj, ok := result.(*evaluator.Error); ok {
		de := errObj.Err()
		de.File = file
		return de
	}
	fmt.Fprintln(a.stdout, reify.Stringify(result))
	return nil
}

func (a *app) openStore() (*store.Store, error) {
	st, err := store.Open(a.settings.Store.Path)
	if err != nil {
		return nil, err
	}
	st.ParseOptions.MaxDepth = a.settings.Limits.MaxDepth
	st.ParseOptions.MaxInputBytes = a.settings.Limits.MaxInputBytes
	return st, nil
}

func (a *app) storeCommand() error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()
	ctx := context.Background()

	switch {
	case a.flag("put"):
		src, file, err := a.source()
		if err != nil {
			return err
		}
		st.ParseOptions.File = file
		e, err := st.Put(ctx, a.str("NAME"), strings.TrimRight(src, "\r\n"))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "%s %s\n", e.ID, e.Name)

	case a.flag("get"):
		e, err := st.Get(ctx, a.str("KEY"))
		if err != nil {
			return err
		}
		fmt.Fprintln(a.stdout, e.Text)

	case a.flag("list"):
		entries, err := st.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tID\tARITY\tUPDATED")
		for _, e := range entries {
			arity := "-"
			if e.Arity >= 0 {
				arity = fmt.Sprint(e.Arity)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.ID, arity, e.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()

	case a.flag("delete"):
		return st.Delete(ctx, a.str("KEY"))

	case a.flag("call"):
		e, err := st.Get(ctx, a.str("KEY"))
		if err != nil {
			return err
		}
		return a.apply(e.Text, e.Name)
	}
	return nil
}

func (a *app) serverAddr() string {
	if addr := a.str("--addr"); addr != "" {
		return addr
	}
	return a.settings.Server.Addr
}

func (a *app) serve() error {
	log.SetFlags(0)
	log.SetOutput(a.stderr)

	srv, err := transport.NewServer(a.settings)
	if err != nil {
		return err
	}
	srv.Logger = log.Default()
	srv.Settings.Server.Addr = a.serverAddr()
	if a.flag("--store") {
		st, err := a.openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		srv.Store = st
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		srv.Stop()
	}()
	return srv.ListenAndServe()
}

func (a *app) invoke() error {
	client, err := transport.Dial(a.serverAddr())
	if err != nil {
		return err
	}
	defer client.Close()
	ctx := context.Background()

	var result string
	if name := a.str("--name"); name != "" {
		result, err = client.CallStored(ctx, name, a.args(), a.flag("--std"))
	} else {
		src, _, serr := a.source()
		if serr != nil {
			return serr
		}
		result, err = client.Call(ctx, strings.TrimRight(src, "\r\n"), a.args(), a.flag("--std"))
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, result)
	return nil
}

func (a *app) fail(err error) {
	var de *diagnostics.DiagnosticError
	if errors.As(err, &de) {
		fmt.Fprintln(a.stderr, paint(a.color, colorRed, de.Error()))
		return
	}
	fmt.Fprintln(a.stderr, paint(a.color, colorRed, "error: ")+err.Error())
}
