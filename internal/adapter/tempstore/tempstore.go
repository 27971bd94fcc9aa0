package tempstore

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sync"

	"github.com/plastinin/fileconverter/internal/domain"
	"go.uber.org/zap"
)

const (
	// Текстовые поля формы короткие: параметры операции
	maxValueSize = 64 << 10
	maxValues    = 32
)

// ErrMalformedBody тело запроса не удалось прочитать как multipart
var ErrMalformedBody = errors.New("malformed multipart body")

// Поля формы, в которых приходят файлы
var fileFields = map[string]bool{
	"file":  true,
	"files": true,
}

// Store сохраняет загруженные файлы во временные каталоги, по одному на запрос
type Store struct {
	baseDir     string
	maxFileSize int64
	logger      *zap.Logger
}

// New создаёт новый экземпляр Store. Пустой baseDir — системный каталог временных файлов.
func New(baseDir string, maxFileSize int64, logger *zap.Logger) (*Store, error) {
	if baseDir != "" {
		if err := os.MkdirAll(baseDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
	}
	return &Store{
		baseDir:     baseDir,
		maxFileSize: maxFileSize,
		logger:      logger,
	}, nil
}

// Batch файлы и поля одного multipart запроса
type Batch struct {
	dir    string
	files  []*domain.UploadedFile
	values map[string]string
	once   sync.Once
	logger *zap.Logger
}

// Receive читает multipart поток и сохраняет файлы на диск.
// При ошибке уже записанные файлы удаляются.
func (s *Store) Receive(mr *multipart.Reader) (*Batch, error) {
	dir, err := os.MkdirTemp(s.baseDir, "upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create batch dir: %w", err)
	}

	b := &Batch{
		dir:    dir,
		values: make(map[string]string),
		logger: s.logger,
	}

	if err := s.readParts(mr, b); err != nil {
		b.Release()
		return nil, err
	}

	return b, nil
}

func (s *Store) readParts(mr *multipart.Reader, b *Batch) error {
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}

		name := part.FormName()
		fileName := part.FileName()

		switch {
		case fileFields[name] && fileName != "":
			err = s.saveFile(part, b)
		case fileFields[name]:
			// Пустой input type=file в браузере
			err = nil
		default:
			err = b.readValue(name, part)
		}
		part.Close()

		if err != nil {
			return err
		}
	}
}

func (s *Store) saveFile(part *multipart.Part, b *Batch) error {
	fileName := filepath.Base(part.FileName())
	// Порядковый префикс: одинаковые имена в одном запросе не перезаписывают друг друга
	path := filepath.Join(b.dir, fmt.Sprintf("%03d_%s", len(b.files), fileName))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.CopyN(f, part, s.maxFileSize+1)
	closeErr := f.Close()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %w", ErrMalformedBody, fileName, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to write temp file: %w", closeErr)
	}
	if n > s.maxFileSize {
		return &domain.InputError{
			Message: fmt.Sprintf("file exceeds %d bytes", s.maxFileSize),
			File:    fileName,
		}
	}

	b.files = append(b.files, &domain.UploadedFile{
		Path:        path,
		FileName:    fileName,
		Size:        n,
		ContentType: part.Header.Get("Content-Type"),
	})
	return nil
}

func (b *Batch) readValue(name string, part *multipart.Part) error {
	if len(b.values) >= maxValues {
		return domain.NewInputError("too many form fields")
	}
	data, err := io.ReadAll(io.LimitReader(part, maxValueSize+1))
	if err != nil {
		return fmt.Errorf("%w: field %s: %w", ErrMalformedBody, name, err)
	}
	if len(data) > maxValueSize {
		return domain.NewInputError(fmt.Sprintf("form field %q is too large", name))
	}
	b.values[name] = string(data)
	return nil
}

// Files возвращает файлы в порядке их следования в запросе
func (b *Batch) Files() []*domain.UploadedFile {
	return b.files
}

// Value возвращает значение текстового поля формы
func (b *Batch) Value(name string) string {
	return b.values[name]
}

// Dir каталог партии
func (b *Batch) Dir() string {
	return b.dir
}

// Release удаляет все файлы партии. Повторные вызовы ничего не делают.
func (b *Batch) Release() {
	b.once.Do(func() {
		if err := os.RemoveAll(b.dir); err != nil {
			b.logger.Warn("Failed to remove temp files",
				zap.String("dir", b.dir),
				zap.Error(err),
			)
		}
	})
}
