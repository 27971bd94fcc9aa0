package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidTaskState = errors.New("invalid task state")
	ErrUnknownTaskKind  = errors.New("unknown task kind")
	ErrNoTaskInputs     = errors.New("task has no inputs")
)

// TaskKind вид операции у провайдера обработки документов
type TaskKind string

const (
	TaskKindCompress    TaskKind = "compress"
	TaskKindMerge       TaskKind = "merge"
	TaskKindImagesToPDF TaskKind = "imagepdf"
)

// IsValid проверяет валидность вида задачи
func (k TaskKind) IsValid() bool {
	switch k {
	case TaskKindCompress, TaskKindMerge, TaskKindImagesToPDF:
		return true
	}
	return false
}

// TaskInput входной файл задачи
type TaskInput struct {
	Asset          AssetRef
	ServerFilename string // Имя файла на стороне провайдера
}

// ProcessingTask задача обработки документа у внешнего провайдера.
// Живёт в рамках одного запроса, повторно не используется.
type ProcessingTask struct {
	Kind     TaskKind
	State    TaskState
	RemoteID string      // Идентификатор задачи у провайдера
	Server   string      // Сервер, выделенный провайдером под задачу
	Inputs   []TaskInput // Порядок совпадает с порядком добавления
}

// NewProcessingTask создаёт задачу в состоянии created
func NewProcessingTask(kind TaskKind) (*ProcessingTask, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskKind, kind)
	}
	return &ProcessingTask{
		Kind:  kind,
		State: TaskStateCreated,
	}, nil
}

// MarkStarted переводит задачу в состояние started
func (t *ProcessingTask) MarkStarted(remoteID, server string) error {
	if t.State != TaskStateCreated {
		return t.transitionError(TaskStateStarted)
	}
	t.RemoteID = remoteID
	t.Server = server
	t.State = TaskStateStarted
	return nil
}

// CheckAcceptsInputs проверяет, что в задачу можно добавить вход
func (t *ProcessingTask) CheckAcceptsInputs() error {
	if !t.State.AcceptsInputs() {
		return t.transitionError(TaskStateInputsAdded)
	}
	return nil
}

// AppendInput добавляет входной файл в конец списка
func (t *ProcessingTask) AppendInput(input TaskInput) error {
	if err := t.CheckAcceptsInputs(); err != nil {
		return err
	}
	t.Inputs = append(t.Inputs, input)
	t.State = TaskStateInputsAdded
	return nil
}

// CheckProcessable проверяет, что задачу можно отправить на обработку
func (t *ProcessingTask) CheckProcessable() error {
	if t.State == TaskStateStarted {
		return ErrNoTaskInputs
	}
	if t.State != TaskStateInputsAdded {
		return t.transitionError(TaskStateProcessed)
	}
	return nil
}

// MarkProcessed переводит задачу в состояние processed
func (t *ProcessingTask) MarkProcessed() error {
	if err := t.CheckProcessable(); err != nil {
		return err
	}
	t.State = TaskStateProcessed
	return nil
}

// MarkDownloaded переводит задачу в финальное состояние
func (t *ProcessingTask) MarkDownloaded() error {
	if t.State != TaskStateProcessed {
		return t.transitionError(TaskStateDownloaded)
	}
	t.State = TaskStateDownloaded
	return nil
}

// InputIDs возвращает идентификаторы ассетов в порядке добавления
func (t *ProcessingTask) InputIDs() []string {
	ids := make([]string, len(t.Inputs))
	for i, in := range t.Inputs {
		ids[i] = in.Asset.ID
	}
	return ids
}

func (t *ProcessingTask) transitionError(to TaskState) error {
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTaskState, t.State, to)
}

// CompressionLevel уровень сжатия PDF
type CompressionLevel string

const (
	CompressionLow         CompressionLevel = "low"
	CompressionRecommended CompressionLevel = "recommended"
	CompressionHigh        CompressionLevel = "high"
)

// Параметры конвертации изображений в PDF
var (
	PageSizes    = []string{"fit", "A4", "letter"}
	Orientations = []string{"portrait", "landscape"}
)

// ProcessOptions параметры обработки, зависят от вида задачи
type ProcessOptions struct {
	CompressionLevel CompressionLevel
	PageSize         string
	Margin           int
	Orientation      string
}

// DefaultProcessOptions параметры по умолчанию для вида задачи
func DefaultProcessOptions(kind TaskKind) ProcessOptions {
	switch kind {
	case TaskKindCompress:
		return ProcessOptions{CompressionLevel: CompressionRecommended}
	case TaskKindImagesToPDF:
		return ProcessOptions{PageSize: "fit", Margin: 0, Orientation: "portrait"}
	}
	return ProcessOptions{}
}

// Validate проверяет параметры для вида задачи
func (o ProcessOptions) Validate(kind TaskKind) error {
	switch kind {
	case TaskKindCompress:
		switch o.CompressionLevel {
		case CompressionLow, CompressionRecommended, CompressionHigh:
		default:
			return &InputError{
				Message: fmt.Sprintf("unsupported compression level %q", o.CompressionLevel),
				Allowed: []string{string(CompressionLow), string(CompressionRecommended), string(CompressionHigh)},
			}
		}
	case TaskKindImagesToPDF:
		if !containsFold(PageSizes, o.PageSize) {
			return &InputError{Message: fmt.Sprintf("unsupported page size %q", o.PageSize), Allowed: PageSizes}
		}
		if !containsFold(Orientations, o.Orientation) {
			return &InputError{Message: fmt.Sprintf("unsupported orientation %q", o.Orientation), Allowed: Orientations}
		}
		if o.Margin < 0 {
			return NewInputError("margin must not be negative")
		}
	}
	return nil
}

func containsFold(list []string, v string) bool {
	for _, item := range list {
		if strings.EqualFold(item, v) {
			return true
		}
	}
	return false
}
