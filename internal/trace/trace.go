// Package trace reads allocation traces and replays them against the
// allocator.
//
// A trace is a text file in the malloc-lab .rep format:
//
//	<suggested heap size>
//	<number of ids>
//	<number of ops>
//	<weight>
//	a <id> <bytes>    allocate
//	r <id> <bytes>    resize
//	f <id>            free
//
// Blank lines and lines starting with # are ignored. The four header values
// may share a line.
package trace

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/heapkit/internal/mmfile"
)

const (
	// ScannerMaxLineSize bounds a single trace line.
	ScannerMaxLineSize = 1 << 16

	headerFields = 4
)

// OpKind is the operation letter of a trace line.
type OpKind byte

const (
	OpAlloc   OpKind = 'a'
	OpRealloc OpKind = 'r'
	OpFree    OpKind = 'f'
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpRealloc:
		return "realloc"
	case OpFree:
		return "free"
	default:
		return fmt.Sprintf("OpKind(%q)", byte(k))
	}
}

// Op is one trace operation.
type Op struct {
	Kind OpKind
	ID   int
	Size uint32 // zero for OpFree
	Line int    // 1-based source line
}

// Trace is a parsed trace file.
type Trace struct {
	Name          string
	SuggestedHeap int
	NumIDs        int
	Weight        int
	Ops           []Op
}

// ParseError reports a malformed trace line.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("trace: %s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("trace: line %d: %s", e.Line, e.Msg)
}

// ParseFile opens and parses the trace at path.
func ParseFile(path string) (*Trace, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	defer func() { _ = cleanup() }()

	tr, err := Parse(bytes.NewReader(data))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
		}
		return nil, err
	}
	tr.Name = filepath.Base(path)
	return tr, nil
}

// Parse reads a trace from r. A leading byte order mark is honoured, so
// traces saved as UTF-16 parse like plain ASCII ones.
func Parse(r io.Reader) (*Trace, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 4096), ScannerMaxLineSize)

	var (
		tr     Trace
		header []int
		line   int
	)

	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)

		if len(header) < headerFields {
			for _, f := range fields {
				if len(header) == headerFields {
					return nil, &ParseError{Line: line, Msg: "operation on a header line"}
				}
				n, err := strconv.Atoi(f)
				if err != nil || n < 0 {
					return nil, &ParseError{Line: line, Msg: fmt.Sprintf("bad header value %q", f)}
				}
				header = append(header, n)
			}
			if len(header) == headerFields {
				tr.SuggestedHeap, tr.NumIDs, tr.Weight = header[0], header[1], header[3]
				tr.Ops = make([]Op, 0, min(header[2], 1<<16))
			}
			continue
		}

		op, err := parseOp(fields, tr.NumIDs)
		if err != nil {
			return nil, &ParseError{Line: line, Msg: err.Error()}
		}
		op.Line = line
		tr.Ops = append(tr.Ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: read: %w", err)
	}

	if len(header) < headerFields {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("truncated header: %d of %d values", len(header), headerFields)}
	}
	if len(tr.Ops) != header[2] {
		return nil, &ParseError{Line: line, Msg: fmt.Sprintf("header declares %d ops, found %d", header[2], len(tr.Ops))}
	}
	return &tr, nil
}

func parseOp(fields []string, numIDs int) (Op, error) {
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
	op := Op{Kind: OpKind(fields[0][0])}

	want := 3
	switch op.Kind {
	case OpAlloc, OpRealloc:
	case OpFree:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d arguments, got %d", op.Kind, want-1, len(fields)-1)
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 || id >= numIDs {
		return Op{}, fmt.Errorf("id %q out of range [0, %d)", fields[1], numIDs)
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return Op{}, fmt.Errorf("bad size %q", fields[2])
		}
		op.Size = uint32(size)
	}
	return op, nil
}
