package llm

import "context"

// Attachment is a binary edital (image or PDF) sent inline to the model.
type Attachment struct {
	Name     string
	MIMEType string
	Data     []byte
}

// ExtractRequest is the user input for one extraction.
type ExtractRequest struct {
	Text       string
	Attachment *Attachment
	Role       string
}

// Part is one ordered prompt segment: text or inline binary data.
type Part struct {
	Text     string
	Data     []byte
	MIMEType string
}

// IsBinary reports whether the part carries inline data.
func (p Part) IsBinary() bool { return len(p.Data) > 0 }

// GenerateRequest is a single call to a generative text service.
type GenerateRequest struct {
	Model    string
	Parts    []Part
	JSONMode bool
}

// Generator is an opaque text completion backend. Implementations must
// honour ctx cancellation and return ctx.Err() (possibly wrapped) when
// cancelled.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Extractor returns the raw model output for an edital.
type Extractor interface {
	Extract(ctx context.Context, req ExtractRequest) (string, error)
}
