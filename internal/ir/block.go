package ir

import "strings"

// Block is a basic block: a straight-line instruction sequence that must
// end in exactly one terminator (§8). Blocks are allocated (via
// (*Builder).AddBlock) before they are necessarily appended to their
// function's emission order — §4.5/§9's "allocate eagerly, append on
// emission" discipline for break/continue/switch/goto targets.
type Block struct {
	Name   string
	Instrs []*Instr
}

// Terminator returns the block's terminating instruction, or nil if the
// block has not been terminated yet.
func (b *Block) Terminator() *Instr {
	if len(b.Instrs) == 0 {
		return nil
	}
	if last := b.Instrs[len(b.Instrs)-1]; last.IsTerminator() {
		return last
	}
	return nil
}

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	return b.Terminator() != nil
}

func (b *Block) append(i *Instr) {
	b.Instrs = append(b.Instrs, i)
}

func (b *Block) String() string {
	var sb strings.Builder
	sb.WriteString(b.Name)
	sb.WriteString(":\n")
	for _, i := range b.Instrs {
		sb.WriteString("  ")
		sb.WriteString(i.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
