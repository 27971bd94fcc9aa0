package pdfinfo

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Inspector читает метаданные PDF, полученных от провайдера обработки
type Inspector struct {
	conf *model.Configuration
}

// NewInspector создаёт новый экземпляр Inspector
func NewInspector() *Inspector {
	conf := model.NewDefaultConfiguration()
	// Провайдеры иногда отдают PDF с мелкими отклонениями от стандарта
	conf.ValidationMode = model.ValidationRelaxed
	return &Inspector{conf: conf}
}

// CountPages возвращает количество страниц документа
func (i *Inspector) CountPages(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), i.conf)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}
