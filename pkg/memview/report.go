package memview

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"
)

// Metadata describes the span a Report covers.
type Metadata struct {
	Name string
	Type string
	// Addr is the address of the first displayed byte and Size the number
	// of displayed bytes.
	Addr uintptr
	Size uintptr

	// Isolated reports are backed by a serialized copy. ContainerAddr and
	// ContainerLen then describe the whole buffer, header included.
	Isolated      bool
	ContainerAddr uintptr
	ContainerLen  int
}

// Report is one inspection: metadata followed by a table with a row per
// byte. Records are produced lazily; a direct report reads memory each time
// it is rendered.
type Report struct {
	Metadata Metadata
	Layout   Layout

	records iter.Seq[ByteRecord]
}

func newReport(md Metadata, layout Layout, records iter.Seq[ByteRecord]) *Report {
	return &Report{Metadata: md, Layout: layout, records: records}
}

// All returns the report's byte records in address order.
func (r *Report) All() iter.Seq[ByteRecord] {
	return r.records
}

// Records collects the byte records.
func (r *Report) Records() []ByteRecord {
	return slices.Collect(r.records)
}

// WriteTo renders the report to w.
func (r *Report) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)

	r.writeMetadata(bw)
	fmt.Fprintln(bw, r.Layout.Header)
	fmt.Fprintln(bw, r.Layout.Divider)
	for rec := range r.records {
		fmt.Fprintln(bw, r.Layout.FormatRow(rec))
	}
	fmt.Fprintln(bw)

	err := bw.Flush()
	return cw.n, err
}

func (r *Report) writeMetadata(w io.Writer) {
	md := r.Metadata
	fmt.Fprintf(w, "Name: %s\n", md.Name)
	fmt.Fprintf(w, "Type: %s\n", md.Type)
	fmt.Fprintf(w, "Addr: %s\n", r.Layout.FormatAddr(md.Addr))
	fmt.Fprintf(w, "Size: %d bytes\n", md.Size)
	if md.Isolated {
		fmt.Fprintf(w, "Container Ptr: %s\n", IsolatedLayout.FormatAddr(md.ContainerAddr))
		fmt.Fprintf(w, "Container Len: %d bytes\n", md.ContainerLen)
	}
}

// String renders the report.
func (r *Report) String() string {
	var sb strings.Builder
	r.WriteTo(&sb)
	return sb.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
