package repl

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/peterh/liner"

	"RMDB/internal/application"
	"RMDB/internal/platform/storage"
)

const prompt = "rmdb> "

// REPL is the interactive loop: one statement per line, with history.
type REPL struct {
	exec *application.Executor
	eng  *storage.Engine
	log  *slog.Logger
}

func NewREPL(exec *application.Executor, eng *storage.Engine, log *slog.Logger) *REPL {
	return &REPL{exec: exec, eng: eng, log: log}
}

// Run reads statements until QUIT/EXIT or EOF, then flushes dirty
// pages.
func (r *REPL) Run() error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	for {
		input, err := line.Prompt(prompt)
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				break
			}
			return err
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(trimmed)
		if strings.EqualFold(trimmed, "QUIT") || strings.EqualFold(trimmed, "EXIT") {
			break
		}
		output, err := r.exec.Execute(trimmed)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		if output != "" {
			fmt.Println(output)
		}
	}
	r.eng.Shutdown()
	return nil
}
