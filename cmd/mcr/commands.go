package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/automenta/mcr/internal/coordinator"
	"github.com/automenta/mcr/internal/types"
)

var (
	sessionFlag  string
	strategyFlag string
	styleFlag    string
)

// assertCmd runs one assertion without the interactive shell.
var assertCmd = &cobra.Command{
	Use:   "assert [text]",
	Short: "Translate a statement and append it to a session KB",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordinator.Bootstrap(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		sid, err := ensureSession(cmd, c)
		if err != nil {
			return err
		}

		result := c.AssertNL(cmd.Context(), sid, strings.Join(args, " "))
		if !result.Success {
			return resultError(result.Result)
		}
		for _, clause := range result.AddedClauses {
			fmt.Println(clause)
		}
		logger.Debug("assert complete",
			zap.String("session", sid),
			zap.String("strategy", result.StrategyID))
		return nil
	},
}

// queryCmd answers one question without the interactive shell.
var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question against a session KB",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordinator.Bootstrap(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		sid, err := ensureSession(cmd, c)
		if err != nil {
			return err
		}

		result := c.QueryNL(cmd.Context(), sid, strings.Join(args, " "),
			coordinator.QueryOptions{Style: styleFlag})
		if !result.Success {
			return resultError(result.Result)
		}
		fmt.Println(result.Answer)
		if query, ok := result.DebugInfo["prologQuery"].(string); ok && verbose {
			fmt.Printf("  [query: %s]\n", query)
		}
		return nil
	},
}

// sessionsCmd lists known sessions.
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordinator.Bootstrap(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		result := c.ListSessions(cmd.Context())
		if !result.Success {
			return resultError(result.Result)
		}
		if len(result.Sessions) == 0 {
			fmt.Println("No sessions.")
			return nil
		}
		for _, s := range result.Sessions {
			fmt.Printf("%s  (%d clauses, created %s)\n",
				s.ID, len(s.Clauses), s.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

// strategiesCmd lists registered translation strategies.
var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List translation strategies",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordinator.Bootstrap(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		for _, info := range c.ListStrategies() {
			fmt.Printf("%-28s %s  %d nodes  hash=%s\n",
				info.ID, info.Operation, info.NodeCount, info.Hash[:12])
		}
		return nil
	},
}

// translateCmd translates text to clauses without touching any session.
var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate a statement to clauses without storing them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := coordinator.Bootstrap(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		result := c.TranslateNLToClauses(cmd.Context(), strings.Join(args, " "), strategyFlag)
		if !result.Success {
			return resultError(result.Result)
		}
		for _, clause := range result.Clauses {
			fmt.Println(clause)
		}
		return nil
	},
}

// ensureSession resolves the --session flag, creating the session on demand.
func ensureSession(cmd *cobra.Command, c *coordinator.Coordinator) (string, error) {
	created := c.CreateSession(cmd.Context(), sessionFlag)
	if !created.Success {
		return "", resultError(created.Result)
	}
	return created.Session.ID, nil
}

func resultError(r types.Result) error {
	if r.Details != "" {
		return fmt.Errorf("%s: %s (%s)", r.ErrorCode, r.Message, r.Details)
	}
	return fmt.Errorf("%s: %s", r.ErrorCode, r.Message)
}

func init() {
	for _, cmd := range []*cobra.Command{assertCmd, queryCmd} {
		cmd.Flags().StringVarP(&sessionFlag, "session", "s", "default", "session ID")
	}
	queryCmd.Flags().StringVar(&styleFlag, "style", "", "answer style (conversational, formal)")
	translateCmd.Flags().StringVar(&strategyFlag, "strategy", "", "strategy base ID (default from config)")
}
