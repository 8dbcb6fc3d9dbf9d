package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/davrell/codecity/internal/dispatcher"
	"github.com/davrell/codecity/internal/models"
	"github.com/davrell/codecity/internal/transcript"
)

const banner = `CODE CITY CONSOLE
Type a command in plain language. "help" lists what the console understands.`

// REPL is the terminal input surface. Commands run to completion before the
// next line is read, so only one command is ever in flight.
type REPL struct {
	dispatcher *dispatcher.Dispatcher
	log        *transcript.Log
	in         io.Reader
	out        io.Writer
	logger     *zap.Logger
}

func New(d *dispatcher.Dispatcher, log *transcript.Log, in io.Reader, out io.Writer, logger *zap.Logger) *REPL {
	return &REPL{
		dispatcher: d,
		log:        log,
		in:         in,
		out:        out,
		logger:     logger,
	}
}

// Run reads commands until EOF or context cancellation.
func (r *REPL) Run(ctx context.Context) error {
	r.log.OnAppend(r.render)
	fmt.Fprintln(r.out, banner)

	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprintf(r.out, "\n%s> ", r.dispatcher.Profile().ID)

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("input error: %w", err)
			}
			fmt.Fprintln(r.out)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		r.dispatcher.HandleCommand(ctx, line)
	}
}

// render prints one transcript message. The user's own line is not re-echoed;
// the terminal already shows it.
func (r *REPL) render(msg models.Message) {
	if msg.Sender == models.SenderUser {
		return
	}
	fmt.Fprintf(r.out, "[%s] %s\n", msg.Sender, msg.Text)
}
