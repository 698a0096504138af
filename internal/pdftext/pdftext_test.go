package pdftext

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/joseph-ayodele/edital-planner/internal/common"
)

type stubRunner struct {
	out, errb []byte
	err       error
	name      string
	args      []string
	input     []byte
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name, s.args = name, args
	// the input file is the second to last argument
	s.input, _ = os.ReadFile(args[len(args)-2])
	return s.out, s.errb, s.err
}

func newConverter(r Runner, cfg Config) *Converter {
	c := New(cfg, zap.NewNop())
	c.runner = r
	return c
}

func TestConvert(t *testing.T) {
	r := &stubRunner{out: []byte("EDITAL 01/2025\fConteúdo programático\f")}
	c := newConverter(r, Config{MaxPages: 3})

	res, err := c.Convert(context.Background(), []byte("%PDF-1.4"))
	require.NoError(t, err)
	assert.Equal(t, "pdftotext", r.name)
	assert.Contains(t, r.args, "-l")
	assert.Equal(t, []byte("%PDF-1.4"), r.input)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Conteúdo programático")
}

func TestConvertEmptyTextLayer(t *testing.T) {
	c := newConverter(&stubRunner{out: []byte(" \f ")}, Config{})

	_, err := c.Convert(context.Background(), []byte("%PDF"))
	assert.ErrorIs(t, err, common.ErrUserInputInvalid)
}

func TestConvertCommandFailure(t *testing.T) {
	c := newConverter(&stubRunner{err: errors.New("exit status 1"), errb: []byte("Syntax Error")}, Config{})

	_, err := c.Convert(context.Background(), []byte("junk"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Syntax Error")
}
