// Package i18n holds the user-facing strings in English and Korean.
package i18n

import (
	"errors"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/model"
)

// Message keys.
const (
	FetchFailed     = "fetch_failed"
	CreateFailed    = "create_failed"
	UpdateFailed    = "update_failed"
	DeleteFailed    = "delete_failed"
	UploadFailed    = "upload_failed"
	InvalidFileName = "invalid_file_name"
	FileTooLarge    = "file_too_large"
	Unexpected      = "unexpected"

	Loading     = "loading"
	Title       = "title"
	Pending     = "pending"
	Completed   = "completed"
	Empty       = "empty"
	NewItem     = "new_item"
	Memo        = "memo"
	Image       = "image"
	NoImage     = "no_image"
	ImagePath   = "image_path"
	Staged      = "staged"
	ErrorPrefix = "error_prefix"
)

var supported = []language.Tag{language.English, language.Korean}

var matcher = language.NewMatcher(supported)

var cat = build()

func build() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	set := func(key, en, ko string) {
		_ = b.SetString(language.English, key, en)
		_ = b.SetString(language.Korean, key, ko)
	}
	set(FetchFailed, "Failed to load to-do items.", "할 일 목록 불러오기 실패")
	set(CreateFailed, "Failed to add the to-do item.", "할 일 추가 실패")
	set(UpdateFailed, "Failed to update the item.", "업데이트에 실패했습니다.")
	set(DeleteFailed, "Failed to delete the item.", "삭제에 실패했습니다.")
	set(UploadFailed, "Failed to upload the image.", "이미지 업로드에 실패했습니다.")
	set(InvalidFileName, "File name must use English letters, digits, '_' or '-' only.", "파일 이름은 영어로만 작성되어야 합니다.")
	set(FileTooLarge, "File size must be 5MB or less.", "파일 크기는 5MB 이하여야 합니다.")
	set(Unexpected, "Something went wrong: %s", "오류가 발생했습니다: %s")

	set(Loading, "Loading…", "로딩중...")
	set(Title, "To-do", "할 일 목록")
	set(Pending, "To do", "진행 중")
	set(Completed, "Done", "완료됨")
	set(Empty, "(none)", "(없음)")
	set(NewItem, "Add a new to-do…", "새로운 할 일을 입력하세요")
	set(Memo, "Memo", "메모")
	set(Image, "Image", "이미지")
	set(NoImage, "(no image)", "(이미지 없음)")
	set(ImagePath, "Path to an image file…", "이미지 파일 경로")
	set(Staged, "staged, uploads on save", "저장 시 업로드")
	set(ErrorPrefix, "Error", "오류")
	return b
}

// Translator renders messages for one language.
type Translator struct {
	tag language.Tag
	p   *message.Printer
}

// New picks the closest supported language for lang; English otherwise.
func New(lang string) *Translator {
	tag, _ := language.MatchStrings(matcher, lang)
	base, _ := tag.Base()
	for _, s := range supported {
		if b, _ := s.Base(); b == base {
			tag = s
			break
		}
	}
	return &Translator{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

// Lang returns the chosen language tag.
func (t *Translator) Lang() language.Tag { return t.tag }

// T formats the message for key.
func (t *Translator) T(key string, args ...any) string {
	return t.p.Sprintf(key, args...)
}

// Error returns the display string for err. Every client and validation
// failure maps to its own message.
func (t *Translator) Error(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, model.ErrInvalidFileName):
		return t.T(InvalidFileName)
	case errors.Is(err, model.ErrFileTooLarge):
		return t.T(FileTooLarge)
	case errors.Is(err, api.ErrCreateFailed):
		return t.T(CreateFailed)
	case errors.Is(err, api.ErrUpdateFailed):
		return t.T(UpdateFailed)
	case errors.Is(err, api.ErrDeleteFailed):
		return t.T(DeleteFailed)
	case errors.Is(err, api.ErrUploadFailed):
		return t.T(UploadFailed)
	case errors.Is(err, api.ErrFetchFailed):
		return t.T(FetchFailed)
	}
	return t.T(Unexpected, err.Error())
}
