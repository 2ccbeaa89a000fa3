// Package summary rewrites definition blocks according to a summary level and
// a table of rules.
package summary

import (
	"log/slog"
	"strings"

	"ccat/internal/parser"
)

// Application records one rule that rewrote a block.
type Application struct {
	Rule     string
	Module   string
	Name     string
	Location parser.Location
}

// Summarizer applies the rules of one level. It holds no per-run state and
// may be reused across modules and runs.
type Summarizer struct {
	level Level
	rules []Rule
}

func New(level Level, rules Rules) *Summarizer {
	return &Summarizer{level: level, rules: rules.ForLevel(level)}
}

func (s *Summarizer) Level() Level { return s.level }

// Summarize returns the summarized blocks of module. Block kinds, names and
// prefixes are preserved so later stages can still identify definitions.
// Import and comment blocks are never rewritten.
func (s *Summarizer) Summarize(module string, blocks []parser.Block) ([]parser.Block, []Application) {
	out := make([]parser.Block, len(blocks))
	copy(out, blocks)
	if s.level == LevelNone || len(s.rules) == 0 {
		return out, nil
	}

	var applied []Application
	for i, block := range out {
		switch block.Kind {
		case parser.BlockImport, parser.BlockComment:
			continue
		}

		if text, rule, ok := s.rewrite(module, block); ok {
			out[i].Text = text
			applied = append(applied, Application{Rule: rule, Module: module, Name: block.Name, Location: block.Location})
			continue
		}

		if block.Kind == parser.BlockClass && s.level == LevelCore {
			text, members := s.rewriteMembers(module, block)
			out[i].Text = text
			applied = append(applied, members...)
		}
	}
	return out, applied
}

// rewrite runs the first matching rule. A rule that fails to decide stops
// evaluation and leaves the block as written.
func (s *Summarizer) rewrite(module string, block parser.Block) (string, string, bool) {
	for _, rule := range s.rules {
		ok, err := rule.Match(block)
		if err != nil {
			slog.Debug("summary rule skipped block",
				"module", module,
				"rule", rule.ID,
				"block", blockName(block),
				"line", block.Location.Line,
				"error", err,
			)
			return "", "", false
		}
		if ok {
			return rule.Apply(block), rule.ID, true
		}
	}
	return "", "", false
}

// rewriteMembers summarizes the methods of a class in place.
func (s *Summarizer) rewriteMembers(module string, class parser.Block) (string, []Application) {
	if class.Shape == nil || class.HasError {
		return class.Text, nil
	}

	var (
		sb      strings.Builder
		applied []Application
		cursor  int
	)
	for _, member := range class.Shape.Members {
		text, rule, ok := s.rewrite(module, member)
		if !ok {
			continue
		}
		idx := strings.Index(class.Text[cursor:], member.Text)
		if idx < 0 {
			continue
		}
		sb.WriteString(class.Text[cursor : cursor+idx])
		sb.WriteString(text)
		cursor += idx + len(member.Text)
		applied = append(applied, Application{
			Rule:     rule,
			Module:   module,
			Name:     class.Name + "." + member.Name,
			Location: member.Location,
		})
	}
	sb.WriteString(class.Text[cursor:])
	return sb.String(), applied
}

func blockName(b parser.Block) string {
	if b.Name != "" {
		return b.Name
	}
	return b.NodeKind
}
