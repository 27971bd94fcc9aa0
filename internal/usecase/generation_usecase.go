package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/plastinin/fileconverter/internal/domain"
	"github.com/vincent-petithory/dataurl"
	"go.uber.org/zap"
)

// GenerationUseCase генерация изображений по текстовому описанию
type GenerationUseCase struct {
	generator ImageGenerator
	validate  *validator.Validate
	journal   *journal
	logger    *zap.Logger
}

// NewGenerationUseCase создаёт новый экземпляр GenerationUseCase
func NewGenerationUseCase(generator ImageGenerator, operations OperationRepository, logger *zap.Logger) *GenerationUseCase {
	return &GenerationUseCase{
		generator: generator,
		validate:  validator.New(),
		journal:   &journal{repo: operations, logger: logger},
		logger:    logger,
	}
}

// Generate генерирует изображение и возвращает его как data URI для предпросмотра
func (uc *GenerationUseCase) Generate(ctx context.Context, input GenerateImageInput) (result *GeneratedImage, err error) {
	input.Prompt = strings.TrimSpace(input.Prompt)
	if err := uc.validate.Struct(input); err != nil {
		return nil, domain.NewInputError(promptValidationMessage(err))
	}

	op := domain.NewOperation(domain.OperationGenerateImage, nil)
	var outputBytes int64
	defer func() {
		uc.journal.finish(ctx, op, outputBytes, err)
	}()

	uc.logger.Info("Generating image",
		zap.String("operation_id", op.ID.String()),
		zap.Int("prompt_length", len(input.Prompt)),
	)

	asset, err := uc.generator.SubmitPrompt(ctx, input.Prompt)
	if err != nil {
		return nil, err
	}

	data, err := uc.generator.FetchBytes(ctx, asset)
	if err != nil {
		return nil, err
	}
	outputBytes = int64(len(data))

	return &GeneratedImage{DataURI: dataurl.EncodeBytes(data)}, nil
}

// promptValidationMessage сообщение об ошибке валидации для клиента
func promptValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, ve := range verrs {
			switch ve.Tag() {
			case "required":
				return "prompt is required"
			case "max":
				return fmt.Sprintf("prompt must be at most %s characters", ve.Param())
			}
		}
	}
	return "invalid request"
}
