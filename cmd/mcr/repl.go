package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/automenta/mcr/internal/broadcast"
	"github.com/automenta/mcr/internal/coordinator"
	"github.com/automenta/mcr/internal/router"
)

const replHelp = `Plain text is routed automatically: questions are answered, statements
are asserted into the current session.

Commands:
  /session new [id]       create and switch to a session
  /session list           list sessions
  /session use <id>       switch to a session
  /session delete <id>    delete a session
  /assert <clauses>       add raw clauses, bypassing translation
  /query <question>       force query handling
  /explain <question>     show what the translated query would do
  /kb                     print the session knowledge base
  /lexicon                print the session predicate summary
  /strategy               show the active strategy
  /strategy set <id>      set the session strategy
  /strategy list          list registered strategies
  /prompts                list prompt template names
  /help                   this text
  /quit                   exit`

// repl holds the interactive shell state.
type repl struct {
	c         *coordinator.Coordinator
	sessionID string
	watcher   broadcast.Subscriber
}

func runREPL(ctx context.Context, c *coordinator.Coordinator) error {
	created := c.CreateSession(ctx, "default")
	if !created.Success {
		return resultError(created.Result)
	}

	r := &repl{c: c, sessionID: created.Session.ID}
	r.watcher = kbWatcher()
	c.Broadcaster().Subscribe(r.sessionID, r.watcher)

	fmt.Printf("mcr %s — session %q. /help for commands.\n", Version, r.sessionID)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for {
		fmt.Printf("%s> ", r.sessionID)
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}
		if strings.HasPrefix(line, "/") {
			r.handleCommand(ctx, line)
			continue
		}
		r.handleText(ctx, line)
	}
}

// kbWatcher logs KB-update events for the session the shell is attached to.
func kbWatcher() broadcast.Subscriber {
	return broadcast.Func(func(event broadcast.Event) error {
		logger.Debug("kb updated",
			zap.String("session", event.SessionID),
			zap.Int("new_clauses", len(event.NewClauses)))
		return nil
	})
}

// handleText routes a plain line: questions are queried, statements asserted.
func (r *repl) handleText(ctx context.Context, line string) {
	if router.ClassifyInput(line) == "query" {
		r.runQuery(ctx, line)
		return
	}

	result := r.c.AssertNL(ctx, r.sessionID, line)
	if !result.Success {
		fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
		return
	}
	for _, clause := range result.AddedClauses {
		fmt.Printf("+ %s\n", clause)
	}
}

func (r *repl) runQuery(ctx context.Context, question string) {
	result := r.c.QueryNL(ctx, r.sessionID, question, coordinator.QueryOptions{})
	if !result.Success {
		fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
		return
	}
	fmt.Println(result.Answer)
	if query, ok := result.DebugInfo["prologQuery"].(string); ok && verbose {
		fmt.Printf("  [%s]\n", query)
	}
}

func (r *repl) handleCommand(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case "/help":
		fmt.Println(replHelp)

	case "/session":
		r.sessionCommand(ctx, args)

	case "/assert":
		if rest == "" {
			fmt.Println("usage: /assert <clauses>")
			return
		}
		result := r.c.AssertRawClauses(ctx, r.sessionID, rest)
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		for _, clause := range result.AddedClauses {
			fmt.Printf("+ %s\n", clause)
		}

	case "/query":
		if rest == "" {
			fmt.Println("usage: /query <question>")
			return
		}
		r.runQuery(ctx, rest)

	case "/explain":
		if rest == "" {
			fmt.Println("usage: /explain <question>")
			return
		}
		result := r.c.ExplainQuery(ctx, r.sessionID, rest)
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		if query, ok := result.DebugInfo["prologQuery"].(string); ok {
			fmt.Printf("query: %s\n", query)
		}
		fmt.Println(result.Answer)

	case "/kb":
		result := r.c.GetKnowledgeBase(ctx, r.sessionID)
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		if result.Text == "" {
			fmt.Println("(empty)")
			return
		}
		fmt.Println(result.Text)

	case "/lexicon":
		result := r.c.GetLexiconSummary(ctx, r.sessionID)
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		if result.Text == "" {
			fmt.Println("(empty)")
			return
		}
		fmt.Println(result.Text)

	case "/strategy":
		r.strategyCommand(ctx, args)

	case "/prompts":
		result := r.c.GetPrompts()
		for name := range result.Templates {
			fmt.Println(name)
		}

	default:
		fmt.Printf("unknown command %s (/help for commands)\n", cmd)
	}
}

func (r *repl) sessionCommand(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Printf("current session: %s\n", r.sessionID)
		return
	}

	switch args[0] {
	case "new":
		id := ""
		if len(args) > 1 {
			id = args[1]
		}
		result := r.c.CreateSession(ctx, id)
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		r.switchSession(result.Session.ID)

	case "list":
		result := r.c.ListSessions(ctx)
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		for _, s := range result.Sessions {
			marker := " "
			if s.ID == r.sessionID {
				marker = "*"
			}
			fmt.Printf("%s %s (%d clauses)\n", marker, s.ID, len(s.Clauses))
		}

	case "use":
		if len(args) < 2 {
			fmt.Println("usage: /session use <id>")
			return
		}
		got := r.c.GetSession(ctx, args[1])
		if !got.Success {
			fmt.Printf("! %s: %s\n", got.ErrorCode, got.Message)
			return
		}
		r.switchSession(got.Session.ID)

	case "delete":
		if len(args) < 2 {
			fmt.Println("usage: /session delete <id>")
			return
		}
		result := r.c.DeleteSession(ctx, args[1])
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		fmt.Printf("deleted %s\n", args[1])

	default:
		fmt.Println("usage: /session [new|list|use|delete]")
	}
}

func (r *repl) strategyCommand(ctx context.Context, args []string) {
	if len(args) == 0 {
		result := r.c.GetActiveStrategyID(ctx, r.sessionID)
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		fmt.Printf("active strategy: %s\n", result.Text)
		return
	}

	switch args[0] {
	case "set":
		if len(args) < 2 {
			fmt.Println("usage: /strategy set <id>")
			return
		}
		result := r.c.SetActiveStrategyForSession(ctx, r.sessionID, args[1])
		if !result.Success {
			fmt.Printf("! %s: %s\n", result.ErrorCode, result.Message)
			return
		}
		fmt.Printf("strategy set to %s\n", args[1])

	case "list":
		for _, info := range r.c.ListStrategies() {
			fmt.Printf("%-28s %s\n", info.ID, info.Operation)
		}

	default:
		fmt.Println("usage: /strategy [set|list]")
	}
}

// switchSession moves the KB-update watcher to the new session.
func (r *repl) switchSession(id string) {
	r.c.Broadcaster().Unsubscribe(r.sessionID, r.watcher)
	r.sessionID = id
	r.c.Broadcaster().Subscribe(r.sessionID, r.watcher)
	fmt.Printf("session: %s\n", id)
}
