package automaton

import (
	"fmt"

	"github.com/dekarrin/rosed"
)

// String renders the automaton as a one-row-per-alternative table: procedure
// name, alternative index, and the step sequence. It's used by peacock-dump
// and by debug tooling; it is not parsed by anything.
func (a Automaton) String() string {
	var rows [][]string
	rows = append(rows, []string{"NT", "ID", "ALT", "STEPS"})

	for _, nt := range a.NonTerminals {
		for altIdx, alt := range nt.Alts {
			rows = append(rows, []string{
				nt.Name,
				fmt.Sprintf("%d", nt.ID),
				fmt.Sprintf("%d", altIdx),
				stepsString(alt.Steps),
			})
		}
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, rows, 20, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func stepsString(steps []Step) string {
	out := ""
	for i, s := range steps {
		if i > 0 {
			out += " "
		}
		if s.Kind == StepLiteral {
			lit := string(s.Literal)
			if lit == "" {
				lit = "ε"
			}
			out += "'" + lit + "'"
		} else {
			out += fmt.Sprintf("<#%d>", s.NonTerm)
		}
	}
	return out
}
