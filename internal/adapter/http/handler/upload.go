package handler

import (
	"errors"
	"net/http"

	"github.com/plastinin/fileconverter/internal/adapter/tempstore"
	"github.com/plastinin/fileconverter/internal/domain"
)

// Uploads принимает multipart загрузки во временное хранилище
type Uploads struct {
	store          *tempstore.Store
	maxRequestSize int64
}

// NewUploads создаёт новый экземпляр Uploads
func NewUploads(store *tempstore.Store, maxRequestSize int64) *Uploads {
	return &Uploads{
		store:          store,
		maxRequestSize: maxRequestSize,
	}
}

// receive сохраняет файлы запроса на диск. Вызывающий обязан сделать defer batch.Release().
func (u *Uploads) receive(w http.ResponseWriter, r *http.Request) (*tempstore.Batch, error) {
	// Ограничиваем размер загрузки
	r.Body = http.MaxBytesReader(w, r.Body, u.maxRequestSize)

	mr, err := r.MultipartReader()
	if err != nil {
		return nil, domain.NewInputError("expected multipart/form-data body")
	}

	batch, err := u.store.Receive(mr)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, domain.NewInputError("request body is too large")
		case errors.Is(err, tempstore.ErrMalformedBody):
			return nil, domain.NewInputError("malformed multipart body")
		}
		return nil, err
	}
	return batch, nil
}
