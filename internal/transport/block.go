package transport

import "strings"

// BlockKind identifies the framing header of a block.
type BlockKind int

const (
	// BlockUpdate carries public lines every perspective sees.
	BlockUpdate BlockKind = iota
	// BlockSideUpdate carries private lines for one side.
	BlockSideUpdate
	// BlockEnd carries the JSON result payload.
	BlockEnd
)

func (k BlockKind) String() string {
	switch k {
	case BlockSideUpdate:
		return "sideupdate"
	case BlockEnd:
		return "end"
	default:
		return "update"
	}
}

// Block is one framed unit of engine output.
type Block struct {
	Kind  BlockKind
	Side  string // set for BlockSideUpdate
	Lines []string
}

// framer assembles lines into blocks. Lines survive across calls, so a
// timeout in the middle of a block loses nothing.
type framer struct {
	pending []string
}

// feed adds one line and returns a block when line terminates one.
func (f *framer) feed(line string) *Block {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		if len(f.pending) == 0 {
			return nil
		}
		b := frame(f.pending)
		f.pending = nil
		return b
	}
	f.pending = append(f.pending, line)
	return nil
}

func frame(lines []string) *Block {
	switch lines[0] {
	case "update":
		return &Block{Kind: BlockUpdate, Lines: lines[1:]}
	case "sideupdate":
		b := &Block{Kind: BlockSideUpdate}
		if len(lines) > 1 {
			b.Side = lines[1]
			b.Lines = lines[2:]
		}
		return b
	case "end":
		return &Block{Kind: BlockEnd, Lines: lines[1:]}
	}
	// Headerless output is treated as public.
	return &Block{Kind: BlockUpdate, Lines: lines}
}

// Encode renders the block back into its framed form, blank terminator
// included. Frame(b.Encode()) yields an equivalent block.
func (b *Block) Encode() []string {
	out := []string{b.Kind.String()}
	if b.Kind == BlockSideUpdate {
		out = append(out, b.Side)
	}
	out = append(out, b.Lines...)
	return append(out, "")
}

// Frame splits a recorded line stream into blocks. A trailing block without
// its blank terminator is still returned, so a bare list of public lines
// frames as a single update.
func Frame(lines []string) []*Block {
	var f framer
	var out []*Block
	for _, l := range lines {
		if b := f.feed(l); b != nil {
			out = append(out, b)
		}
	}
	if len(f.pending) > 0 {
		out = append(out, frame(f.pending))
	}
	return out
}
