package llm

import (
	"fmt"
	"strings"

	"github.com/joseph-ayodele/edital-planner/constants"
	"github.com/joseph-ayodele/edital-planner/internal/common"
)

// ValidateInput checks an extraction request before any network call: a
// role is required, and exactly one of text or attachment must carry content.
// Attachments are limited in size and to images and PDFs.
func ValidateInput(req ExtractRequest) error {
	if strings.TrimSpace(req.Role) == "" {
		return common.InputError(`O campo "Cargo Pretendido" é obrigatório.`)
	}
	hasText := strings.TrimSpace(req.Text) != ""
	hasFile := req.Attachment != nil && len(req.Attachment.Data) > 0
	switch {
	case !hasText && !hasFile:
		return common.InputError("Por favor, cole o texto do edital ou envie um arquivo.")
	case hasText && hasFile:
		return common.InputError("Envie o texto do edital ou um arquivo, não ambos.")
	}
	if hasFile {
		if len(req.Attachment.Data) > constants.MaxUploadBytes {
			return common.InputError(fmt.Sprintf("O arquivo é muito grande. O limite é de %dMB.", constants.MaxUploadBytes/(1024*1024)))
		}
		if !constants.IsAllowedMIME(req.Attachment.MIMEType) {
			return common.InputError("Tipo de arquivo não suportado. Por favor, envie uma imagem ou um PDF.")
		}
	}
	return nil
}
