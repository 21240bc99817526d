package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/GoArmGo/contactbook/internal/domain"
	"github.com/GoArmGo/contactbook/internal/usecase"
)

const (
	maxJSONBody     = 1 << 20
	multipartMemory = 1 << 20
	avatarField     = "avatar"
)

// decodeRequest разбирает тело JSON, urlencoded или multipart/form-data в dst.
// Для multipart возвращает загруженный аватар (или nil) и функцию освобождения ресурсов.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any, maxAvatar int64) (*usecase.AvatarUpload, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return decodeMultipart(w, r, dst, maxAvatar)
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			return nil, noop, badBody(err)
		}
		return nil, noop, formInto(r.PostForm, dst)
	default:
		return nil, noop, decodeJSON(w, r, dst)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return badBody(err)
}

func decodeMultipart(w http.ResponseWriter, r *http.Request, dst any, maxAvatar int64) (*usecase.AvatarUpload, func(), error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatar+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, func() {}, badBody(err)
	}
	release := func() {
		_ = r.MultipartForm.RemoveAll()
	}

	if err := formInto(r.MultipartForm.Value, dst); err != nil {
		return nil, release, err
	}

	headers := r.MultipartForm.File[avatarField]
	if len(headers) == 0 {
		return nil, release, nil
	}

	fh := headers[0]
	f, err := fh.Open()
	if err != nil {
		return nil, release, fmt.Errorf("ошибка открытия загруженного файла: %w", err)
	}
	upload := &usecase.AvatarUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Reader:      f,
	}
	return upload, func() {
		_ = f.Close()
		release()
	}, nil
}

// formInto переносит поля формы в dst через JSON, поэтому работают те же json-теги.
// Вложенные поля адреса принимаются как address[street] и как address.street.
func formInto(values map[string][]string, dst any) error {
	doc := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		parent, child, nested := splitFormKey(key)
		if !nested {
			doc[key] = vals[0]
			continue
		}
		sub, ok := doc[parent].(map[string]any)
		if !ok {
			sub = make(map[string]any)
			doc[parent] = sub
		}
		sub[child] = vals[0]
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("ошибка преобразования формы: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return badBody(err)
	}
	return nil
}

func splitFormKey(key string) (parent, child string, ok bool) {
	if i := strings.IndexByte(key, '['); i > 0 && strings.HasSuffix(key, "]") {
		return key[:i], key[i+1 : len(key)-1], true
	}
	if i := strings.IndexByte(key, '.'); i > 0 && i < len(key)-1 {
		return key[:i], key[i+1:], true
	}
	return "", "", false
}

func badBody(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &domain.ValidationError{Messages: []string{fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit)}}
	}
	return fmt.Errorf("%w (%v)", &domain.ValidationError{Messages: []string{"malformed request body"}}, err)
}
