package core

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Stage is the last processing stage a command line goes through.
type Stage int

const (
	// StageRun executes commands, it's the default.
	StageRun Stage = iota
	// StageScan prints tokens.
	StageScan
	// StageParse prints the command tree.
	StageParse
	// StagePlan prints the validated execution plan.
	StagePlan
)

var stageNames = []string{
	StageRun:   "run",
	StageScan:  "scan",
	StageParse: "parse",
	StagePlan:  "plan",
}

var _ pflag.Value = (*Stage)(nil)

func (s Stage) String() string {
	if int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// Set implements pflag.Value.
func (s *Stage) Set(value string) error {
	for i, name := range stageNames {
		if name == value {
			*s = Stage(i)
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(stageNames, ", "))
}

// Type implements pflag.Value.
func (*Stage) Type() string {
	return "stage"
}
