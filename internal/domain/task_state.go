package domain

// TaskState состояние задачи обработки документа
type TaskState string

const (
	TaskStateCreated     TaskState = "created"      // Задача создана локально
	TaskStateStarted     TaskState = "started"      // Провайдер выделил задачу
	TaskStateInputsAdded TaskState = "inputs_added" // Добавлен хотя бы один входной файл
	TaskStateProcessed   TaskState = "processed"    // Обработка завершена
	TaskStateDownloaded  TaskState = "downloaded"   // Результат скачан, задача закрыта
)

// IsValid проверяет валидность состояния
func (s TaskState) IsValid() bool {
	switch s {
	case TaskStateCreated, TaskStateStarted, TaskStateInputsAdded, TaskStateProcessed, TaskStateDownloaded:
		return true
	}
	return false
}

// IsFinal проверяет, является ли состояние финальным
func (s TaskState) IsFinal() bool {
	return s == TaskStateDownloaded
}

// AcceptsInputs проверяет, можно ли добавлять входные файлы
func (s TaskState) AcceptsInputs() bool {
	return s == TaskStateStarted || s == TaskStateInputsAdded
}

func (s TaskState) String() string {
	return string(s)
}
