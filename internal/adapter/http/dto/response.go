package dto

// ErrorResponse ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NewErrorResponse создаёт ответ с ошибкой
func NewErrorResponse(err string, details string) *ErrorResponse {
	return &ErrorResponse{
		Error:   err,
		Details: details,
	}
}

// GenerationErrorResponse ошибка генерации: success=false, текст в message (квота)
// или в error/details (остальные ошибки)
type GenerationErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// GeneratedImageResponse успешная генерация
type GeneratedImageResponse struct {
	Success bool   `json:"success"`
	Photo   string `json:"photo"`
}

// GenerateImageRequest тело запроса генерации
type GenerateImageRequest struct {
	Prompt string `json:"prompt"`
}

// HealthResponse ответ health check
type HealthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  HealthServices `json:"services"`
}

// HealthServices доступность внешних сервисов (заданы ли учётные данные)
type HealthServices struct {
	PDFProcessor   bool `json:"pdfProcessor"`
	AssetHost      bool `json:"assetHost"`
	ImageGenerator bool `json:"imageGenerator"`
	Journal        bool `json:"journal"`
}
