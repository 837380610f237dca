package types

import "github.com/gnolang/tdce/internal/ir"

// Removal describes one eliminated instruction.
type Removal struct {
	ID    int    `json:"id"`
	Pass  int    `json:"pass"`
	Block string `json:"block,omitempty"`
	Def   string `json:"def"`
	Instr string `json:"instr"`
}

// FuncReport summarizes the elimination run over one function.
type FuncReport struct {
	Func       string    `json:"func"`
	Before     int       `json:"before"`
	After      int       `json:"after"`
	Passes     int       `json:"passes"`
	Iterations []int     `json:"iterations"`
	Removed    []Removal `json:"removed"`
}

// FileReport collects the function reports of one input file together
// with the optimized module.
type FileReport struct {
	Filename string       `json:"file"`
	Funcs    []FuncReport `json:"funcs"`
	Module   *ir.Module   `json:"-"`
}

// RemovedCount returns the number of instructions removed from the file.
func (r FileReport) RemovedCount() int {
	n := 0
	for _, f := range r.Funcs {
		n += len(f.Removed)
	}
	return n
}
