// Package safety grades generated code before it is handed to the
// executor. Python sources are scanned with patterns; shell sources are
// parsed and walked so commands inside substitutions and pipelines are
// seen too.
package safety

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"

	"github.com/prudhvi1709/smart-cli/internal/types"
)

// Analysis is the outcome of scanning one piece of generated code.
type Analysis struct {
	Level   types.RiskLevel
	Reasons []string
}

// Blocked reports whether execution should be refused without an
// explicit override.
func (a Analysis) Blocked() bool {
	return a.Level >= types.RiskCritical
}

// Analyze scans source in the given language and returns the highest
// risk found with the reasons behind it. Unknown languages are graded
// by the python patterns, which cover the generic dangerous shapes.
func Analyze(language, source string) Analysis {
	switch strings.ToLower(language) {
	case "sh", "bash", "shell", "zsh":
		return analyzeShell(source)
	default:
		return analyzePython(source)
	}
}

func analyzePython(source string) Analysis {
	a := Analysis{Level: types.RiskSafe}
	for _, p := range pythonPatterns {
		if p.re.MatchString(source) {
			a.merge(p.level, p.reason)
		}
	}
	return a
}

func analyzeShell(source string) Analysis {
	a := Analysis{Level: types.RiskSafe}

	parser := syntax.NewParser()
	file, err := parser.Parse(strings.NewReader(source), "generated.sh")
	if err != nil {
		// Unparseable shell is graded dangerous rather than guessed at.
		a.merge(types.RiskDangerous, "shell source does not parse")
		return a
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		call, ok := node.(*syntax.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		name := literalWord(call.Args[0])
		if name == "" {
			return true
		}
		base := name
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			base = name[i+1:]
		}

		a.classifyCommand(base, call)

		// Wrappers like xargs and sudo run their first operand as a
		// command in turn.
		if wrapperCommands[base] {
			for _, arg := range call.Args[1:] {
				word := literalWord(arg)
				if word == "" || strings.HasPrefix(word, "-") {
					continue
				}
				a.classifyCommand(word, call)
				break
			}
		}
		return true
	})

	return a
}

func (a *Analysis) classifyCommand(base string, call *syntax.CallExpr) {
	if reason, found := criticalCommands[base]; found {
		a.merge(types.RiskCritical, base+" "+reason)
	} else if reason, found := dangerousCommands[base]; found {
		level := types.RiskDangerous
		if base == "rm" && hasRecursiveForce(call) {
			level = types.RiskCritical
		}
		a.merge(level, base+" "+reason)
	} else if reason, found := cautionCommands[base]; found {
		a.merge(types.RiskCaution, base+" "+reason)
	}
}

func (a *Analysis) merge(level types.RiskLevel, reason string) {
	if level > a.Level {
		a.Level = level
	}
	for _, existing := range a.Reasons {
		if existing == reason {
			return
		}
	}
	a.Reasons = append(a.Reasons, reason)
}

// literalWord flattens a word made only of literal parts. Words with
// expansions return "" and are skipped, which errs toward not flagging.
func literalWord(word *syntax.Word) string {
	var sb strings.Builder
	for _, part := range word.Parts {
		lit, ok := part.(*syntax.Lit)
		if !ok {
			return ""
		}
		sb.WriteString(lit.Value)
	}
	return sb.String()
}

func hasRecursiveForce(call *syntax.CallExpr) bool {
	recursive, force := false, false
	for _, arg := range call.Args[1:] {
		flag := literalWord(arg)
		if !strings.HasPrefix(flag, "-") {
			continue
		}
		if strings.ContainsAny(flag, "rR") {
			recursive = true
		}
		if strings.ContainsRune(flag, 'f') || flag == "--force" {
			force = true
		}
	}
	return recursive && force
}
