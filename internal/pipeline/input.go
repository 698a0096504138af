package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
	"github.com/joseph-ayodele/edital-planner/internal/llm"
)

// RequestFromFile builds an extraction request from a file on disk. Text
// files become the edital text; images and PDFs become the attachment.
func RequestFromFile(path, role string) (llm.ExtractRequest, error) {
	st, err := os.Stat(path)
	if err != nil {
		return llm.ExtractRequest{}, common.InputError(fmt.Sprintf("Não foi possível ler o arquivo %q.", path))
	}
	if st.Size() > constants.MaxUploadBytes {
		return llm.ExtractRequest{}, common.InputError(fmt.Sprintf("O arquivo é muito grande. O limite é de %dMB.", constants.MaxUploadBytes/(1024*1024)))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return llm.ExtractRequest{}, common.InputError(fmt.Sprintf("Não foi possível ler o arquivo %q.", path))
	}

	if constants.IsTextPath(path) {
		return llm.ExtractRequest{Text: string(data), Role: role}, nil
	}
	mt := constants.MIMEForPath(path)
	if mt == "" {
		return llm.ExtractRequest{}, common.InputError("Tipo de arquivo não suportado. Por favor, envie uma imagem ou um PDF.")
	}
	return llm.ExtractRequest{
		Role:       role,
		Attachment: &llm.Attachment{Name: filepath.Base(path), MIMEType: mt, Data: data},
	}, nil
}
