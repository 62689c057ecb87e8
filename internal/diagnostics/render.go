package diagnostics

import (
	"io"

	"github.com/hashicorp/hcl/v2"
)

// ToHCL converts errors for HCL's diagnostic writers.
func ToHCL(errs []*DiagnosticError) hcl.Diagnostics {
	diags := make(hcl.Diagnostics, 0, len(errs))
	for _, e := range errs {
		diags = append(diags, e.HCL())
	}
	return diags
}

// Renderer prints diagnostics with a source snippet under each message.
type Renderer struct {
	files map[string]*hcl.File
	width uint
	color bool
}

// NewRenderer creates a renderer wrapping lines at width (0 = no wrapping).
func NewRenderer(width uint, color bool) *Renderer {
	return &Renderer{files: make(map[string]*hcl.File), width: width, color: color}
}

// AddSource makes src available for snippets of diagnostics in file name.
func (r *Renderer) AddSource(name string, src []byte) {
	r.files[name] = &hcl.File{Bytes: src}
}

// Write renders errs to w.
func (r *Renderer) Write(w io.Writer, errs []*DiagnosticError) error {
	wr := hcl.NewDiagnosticTextWriter(w, r.files, r.width, r.color)
	return wr.WriteDiagnostics(ToHCL(errs))
}
