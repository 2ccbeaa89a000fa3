package summary

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"ccat/internal/parser"
)

var (
	// ErrNoShape is returned by Match when a definition could not be broken
	// into header and body.
	ErrNoShape = errors.New("definition has no parseable body")
	// ErrSyntax is returned by Match when the block contains parse errors.
	ErrSyntax = errors.New("block contains syntax errors")
)

// Rule is one summarization step. Match decides whether the rule applies to a
// block; Apply returns the replacement text. A Match error means the rule
// could not decide, and the block is left as written.
type Rule struct {
	ID          string
	Levels      []Level
	Order       int
	Explanation string
	Match       func(parser.Block) (bool, error)
	Apply       func(parser.Block) string
}

func (r Rule) appliesAt(level Level) bool {
	for _, l := range r.Levels {
		if l == level {
			return true
		}
	}
	return false
}

// Rules is an immutable rule table.
type Rules struct {
	rules []Rule
}

// NewRules builds a table from the given rules. Later rules replace earlier
// ones with the same ID.
func NewRules(rules ...Rule) Rules {
	return Rules{}.With(rules...)
}

// With returns a copy of the table with rules added, replacing any existing
// rule that has the same ID.
func (r Rules) With(rules ...Rule) Rules {
	out := make([]Rule, 0, len(r.rules)+len(rules))
	replaced := make(map[string]bool, len(rules))
	for _, rule := range rules {
		replaced[rule.ID] = true
	}
	for _, rule := range r.rules {
		if !replaced[rule.ID] {
			out = append(out, rule)
		}
	}
	seen := make(map[string]int, len(rules))
	for _, rule := range rules {
		if i, ok := seen[rule.ID]; ok {
			out[i] = rule
			continue
		}
		seen[rule.ID] = len(out)
		out = append(out, rule)
	}
	return Rules{rules: out}
}

// Without returns a copy of the table with the given rule IDs removed.
// Unknown IDs are ignored.
func (r Rules) Without(ids ...string) Rules {
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		if !drop[rule.ID] {
			out = append(out, rule)
		}
	}
	return Rules{rules: out}
}

// IDs lists the rule IDs in evaluation order.
func (r Rules) IDs() []string {
	sorted := r.sorted()
	ids := make([]string, len(sorted))
	for i, rule := range sorted {
		ids[i] = rule.ID
	}
	return ids
}

// ForLevel returns the rules active at level in evaluation order.
func (r Rules) ForLevel(level Level) []Rule {
	var out []Rule
	for _, rule := range r.sorted() {
		if rule.appliesAt(level) {
			out = append(out, rule)
		}
	}
	return out
}

func (r Rules) sorted() []Rule {
	out := append([]Rule(nil), r.rules...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Default returns the built-in rule table.
func Default() Rules {
	return NewRules(
		Rule{
			ID:          "interface.class",
			Levels:      []Level{LevelInterface},
			Order:       100,
			Explanation: "Class interface preserved",
			Match:       definitionOf(parser.BlockClass),
			Apply:       func(b parser.Block) string { return classInterface(b, "Class interface preserved") },
		},
		Rule{
			ID:          "interface.function",
			Levels:      []Level{LevelInterface},
			Order:       110,
			Explanation: "Function signature preserved",
			Match:       definitionOf(parser.BlockFunction),
			Apply:       func(b parser.Block) string { return stub(b, "Function signature preserved") },
		},
		Rule{
			ID:          "core.trivial-getter",
			Levels:      []Level{LevelCore},
			Order:       200,
			Explanation: "Getter method summarized",
			Match:       matchTrivialGetter,
			Apply:       func(b parser.Block) string { return stub(b, "Getter method summarized") },
		},
		Rule{
			ID:          "core.init-assignments",
			Levels:      []Level{LevelCore},
			Order:       210,
			Explanation: "Standard initialization summarized",
			Match:       matchAssignmentInit,
			Apply:       func(b parser.Block) string { return stub(b, "Standard initialization summarized") },
		},
		Rule{
			ID:          "core.logging-setup",
			Levels:      []Level{LevelCore},
			Order:       220,
			Explanation: "Logging setup summarized",
			Match:       statementMatching(loggingSetup),
			Apply:       func(parser.Block) string { return "# Logging setup summarized" },
		},
		Rule{
			ID:          "main-guard",
			Levels:      []Level{LevelInterface, LevelCore},
			Order:       90,
			Explanation: "Entry point guard removed",
			Match:       statementMatching(mainGuard),
			Apply:       func(parser.Block) string { return "# Entry point guard removed" },
		},
	)
}

// PatternRule builds a rule that rewrites every match of pattern inside a
// class, function or statement block. The explanation is appended to each
// replacement as a trailing comment.
func PatternRule(id string, level Level, order int, pattern, replacement, explanation string) (Rule, error) {
	if strings.TrimSpace(id) == "" {
		return Rule{}, errors.New("pattern rule needs an id")
	}
	re, err := regexp.Compile("(?m)" + pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("pattern rule %s: %w", id, err)
	}
	expansion := replacement
	if explanation != "" {
		expansion += "  # " + explanation
	}
	return Rule{
		ID:          id,
		Levels:      []Level{level},
		Order:       order,
		Explanation: explanation,
		Match: func(b parser.Block) (bool, error) {
			switch b.Kind {
			case parser.BlockImport, parser.BlockComment:
				return false, nil
			}
			if !re.MatchString(b.Text) {
				return false, nil
			}
			if b.HasError {
				return false, ErrSyntax
			}
			return true, nil
		},
		Apply: func(b parser.Block) string {
			return re.ReplaceAllString(b.Text, expansion)
		},
	}, nil
}

func definitionOf(kind parser.BlockKind) func(parser.Block) (bool, error) {
	return func(b parser.Block) (bool, error) {
		if b.Kind != kind {
			return false, nil
		}
		if err := checkDefinition(b); err != nil {
			return false, err
		}
		if kind == parser.BlockClass {
			for _, m := range b.Shape.Members {
				if err := checkDefinition(m); err != nil {
					return false, fmt.Errorf("member %s: %w", m.Name, err)
				}
			}
		}
		return true, nil
	}
}

func checkDefinition(b parser.Block) error {
	if b.HasError {
		return ErrSyntax
	}
	if b.Shape == nil {
		return ErrNoShape
	}
	return nil
}

func matchTrivialGetter(b parser.Block) (bool, error) {
	if b.Kind != parser.BlockFunction || !strings.HasPrefix(b.Name, "get_") {
		return false, nil
	}
	if err := checkDefinition(b); err != nil {
		return false, err
	}
	body := b.Shape.Body
	return len(body) == 1 && body[0].Kind == "return_statement", nil
}

var selfAssignment = regexp.MustCompile(`^self\.\w+(\s*:[^=]+)?\s*=`)

func matchAssignmentInit(b parser.Block) (bool, error) {
	if b.Kind != parser.BlockFunction || b.Name != "__init__" {
		return false, nil
	}
	if err := checkDefinition(b); err != nil {
		return false, err
	}
	if len(b.Shape.Body) == 0 {
		return false, nil
	}
	for _, stmt := range b.Shape.Body {
		if stmt.Kind != "expression_statement" || !selfAssignment.MatchString(stmt.Text) {
			return false, nil
		}
	}
	return true, nil
}

var (
	loggingSetup = regexp.MustCompile(`^logging\.(basicConfig|captureWarnings|disable|config\.\w+)\(|^logging\.getLogger\([^)]*\)\.(setLevel|addHandler)\(`)
	mainGuard    = regexp.MustCompile(`^if\s+__name__\s*==\s*['"]__main__['"]\s*:`)
)

func statementMatching(re *regexp.Regexp) func(parser.Block) (bool, error) {
	return func(b parser.Block) (bool, error) {
		if b.Kind != parser.BlockStatement || !re.MatchString(b.Text) {
			return false, nil
		}
		if b.HasError {
			return false, ErrSyntax
		}
		return true, nil
	}
}

// stub renders a definition as its header, docstring and an ellipsis body.
func stub(b parser.Block, explanation string) string {
	var sb strings.Builder
	writeSignature(&sb, b.Shape)
	sb.WriteString("...")
	if explanation != "" {
		sb.WriteString("  # ")
		sb.WriteString(explanation)
	}
	return sb.String()
}

func writeSignature(sb *strings.Builder, shape *parser.Shape) {
	sb.WriteString(shape.Header)
	sb.WriteString("\n")
	sb.WriteString(shape.BodyIndent)
	if shape.Docstring != "" {
		sb.WriteString(shape.Docstring)
		sb.WriteString("\n")
		sb.WriteString(shape.BodyIndent)
	}
}

// classInterface keeps the class header, docstring, annotated fields and the
// signatures of its methods.
func classInterface(b parser.Block, explanation string) string {
	shape := b.Shape
	var sb strings.Builder
	writeSignature(&sb, shape)
	for _, field := range shape.Fields {
		sb.WriteString(field)
		sb.WriteString("\n")
		sb.WriteString(shape.BodyIndent)
	}
	for _, m := range shape.Members {
		sb.WriteString(stub(m, ""))
		sb.WriteString("\n")
		sb.WriteString(shape.BodyIndent)
	}
	sb.WriteString("...  # ")
	sb.WriteString(explanation)
	return sb.String()
}
