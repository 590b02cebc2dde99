package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/funvibe/ljson/internal/evaluator"
	"github.com/funvibe/ljson/internal/library"
	"github.com/funvibe/ljson/internal/reify"
)

const replHelp = `Enter a term to validate it and print it back in canonical form.
  :call [ARGS]  apply the last value to the elements of the array ARGS
  :std          toggle passing the std library accessor on :call
  :help         show this help
  :quit         leave`

var errQuit = errors.New("quit")

type session struct {
	app  *app
	std  bool
	last evaluator.Object
}

func (a *app) repl() error {
	s := &session{app: a, std: a.flag("--std")}
	if !isTerminal(a.stdin) {
		return s.runScript(a.stdin)
	}
	return s.runInteractive()
}

// runScript evaluates one line at a time without line editing. Lines are
// not length-capped here; the parser enforces max_input_bytes.
func (s *session) runScript(r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if done := s.handle(strings.TrimRight(line, "\r\n")); done {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *session) runInteractive() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	history := historyPath()
	if history != "" {
		if f, err := os.Open(history); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintln(s.app.stdout, "ljson "+Version+". Type :help for help.")
	for {
		input, err := line.Prompt("ljson> ")
		if err == liner.ErrPromptAborted {
			continue
		}
		if err != nil {
			break
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if done := s.handle(input); done {
			break
		}
	}

	if history != "" {
		if f, err := os.Create(history); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	return nil
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ljson_history")
}

// handle evaluates a line and prints its outcome. It reports whether the
// session should end.
func (s *session) handle(input string) bool {
	out, err := s.eval(input)
	if errors.Is(err, errQuit) {
		return true
	}
	if err != nil {
		s.app.fail(err)
		return false
	}
	if out != "" {
		fmt.Fprintln(s.app.stdout, out)
	}
	return false
}

func (s *session) eval(input string) (string, error) {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return "", nil
	case input == ":quit" || input == ":q":
		return "", errQuit
	case input == ":help":
		return replHelp, nil
	case input == ":std":
		s.std = !s.std
		if s.std {
			return paint(s.app.color, colorDim, "std library on"), nil
		}
		return paint(s.app.color, colorDim, "std library off"), nil
	case strings.HasPrefix(input, ":call"):
		return s.call(strings.TrimSpace(strings.TrimPrefix(input, ":call")))
	case strings.HasPrefix(input, ":"):
		return "", fmt.Errorf("unknown command %s", input)
	}

	obj, err := s.app.materialize(input, "<repl>")
	if err != nil {
		return "", err
	}
	s.last = obj
	return reify.Stringify(obj), nil
}

func (s *session) call(argText string) (string, error) {
	if s.last == nil {
		return "", errors.New("nothing to call: enter a function first")
	}
	if argText == "" {
		argText = "[]"
	}
	argObj, err := s.app.materialize(argText, "<repl>")
	if err != nil {
		return "", err
	}
	arr, ok := argObj.(*evaluator.Array)
	if !ok {
		return "", fmt.Errorf(":call expects an array of arguments, got %s", argObj.Inspect())
	}

	fn := s.last
	if s.std {
		fn = library.WithLib(library.FromSettings(s.app.settings.Library), fn)
	}
	e := evaluator.New()
	e.MaxDepth = s.app.settings.Limits.MaxEvalDepth
	result := e.Apply(fn, arr.Elements)
	if errObj, ok := result.(*evaluator.Error); ok {
		return "", errObj.Err()
	}
	s.last = result
	return reify.Stringify(result), nil
}
