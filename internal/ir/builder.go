package ir

import "fmt"

// Opcodes with a fixed meaning to the builder and the printer.
const (
	OpConst = "const"
	OpCopy  = "copy"
	OpPhi   = "phi"
	OpCall  = "call"
	OpStore = "store"
	OpPrint = "print"
	OpRet   = "ret"
	OpBr    = "br"
	OpCbr   = "cbr"
)

var sideEffectOps = map[string]bool{
	OpCall:  true,
	OpStore: true,
	OpPrint: true,
	OpRet:   true,
	OpBr:    true,
	OpCbr:   true,
}

// HasSideEffect reports whether instructions with the given opcode are
// side effecting by default.
func HasSideEffect(op string) bool {
	return sideEffectOps[op]
}

type block struct {
	label string
	ids   []ID
}

// Builder assembles a Func from basic blocks and derives successor edges
// from block boundaries: an instruction falls through to the next one,
// the last instruction of a block falls through to the next block, "br"
// and "cbr" jump to the blocks named in Targets and "ret" ends the function.
type Builder struct {
	f       *Func
	blocks  []*block
	byLabel map[string]*block
	cur     *block
	err     error
}

// NewBuilder starts building a function.
func NewBuilder(name string) *Builder {
	return &Builder{
		f:       NewFunc(name),
		byLabel: make(map[string]*block),
	}
}

// Block starts a new basic block. Instructions emitted before the first
// call to Block go to an unnamed entry block.
func (b *Builder) Block(label string) {
	if _, dup := b.byLabel[label]; dup {
		b.fail(fmt.Errorf("%w: %s: duplicate label %q", ErrMalformedGraph, b.f.Name, label))
		return
	}
	blk := &block{label: label}
	b.blocks = append(b.blocks, blk)
	b.byLabel[label] = blk
	b.cur = blk
}

// Emit appends in to the current block and returns its ID.
func (b *Builder) Emit(in *Instr) ID {
	if b.cur == nil {
		b.cur = &block{}
		b.blocks = append(b.blocks, b.cur)
	}
	in.Block = b.cur.label
	in.Succs = nil
	id := b.f.Add(in)
	b.cur.ids = append(b.cur.ids, id)
	return id
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// Finish resolves successor edges and validates the result.
func (b *Builder) Finish() (*Func, error) {
	if b.err != nil {
		return nil, b.err
	}

	for bi, blk := range b.blocks {
		for k, id := range blk.ids {
			in := b.f.Instr(id)
			switch in.Op {
			case OpRet:
				in.Succs = nil
			case OpBr, OpCbr:
				want := 1
				if in.Op == OpCbr {
					want = 2
				}
				if len(in.Targets) != want {
					return nil, fmt.Errorf("%w: %s: %s needs %d targets, got %d",
						ErrMalformedGraph, b.f.Name, in.Op, want, len(in.Targets))
				}
				for _, label := range in.Targets {
					target, ok := b.byLabel[label]
					if !ok {
						return nil, fmt.Errorf("%w: %s: unknown label %q", ErrMalformedGraph, b.f.Name, label)
					}
					if s, ok := b.firstFrom(b.indexOf(target)); ok {
						in.Succs = appendUnique(in.Succs, s)
					}
				}
			default:
				if k+1 < len(blk.ids) {
					in.Succs = []ID{blk.ids[k+1]}
				} else if s, ok := b.firstFrom(bi + 1); ok {
					in.Succs = []ID{s}
				}
			}
		}
	}

	if err := Validate(b.f); err != nil {
		return nil, err
	}
	return b.f, nil
}

func (b *Builder) indexOf(blk *block) int {
	for i, c := range b.blocks {
		if c == blk {
			return i
		}
	}
	return len(b.blocks)
}

// firstFrom returns the first instruction of the first non-empty block at
// or after index i.
func (b *Builder) firstFrom(i int) (ID, bool) {
	for ; i < len(b.blocks); i++ {
		if len(b.blocks[i].ids) > 0 {
			return b.blocks[i].ids[0], true
		}
	}
	return NoID, false
}

func appendUnique(ids []ID, id ID) []ID {
	for _, x := range ids {
		if x == id {
			return ids
		}
	}
	return append(ids, id)
}
