package schemas

import (
	"mime"
	"strings"
)

var documentMimeTypes = map[string]struct{}{
	"application/msword": {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {},
	"application/vnd.oasis.opendocument.text":                                 {},
	"application/rtf":                                                         {},
}

// CategoryFromMimeType derives the category of a file from its declared media type.
// Parameters such as charset are ignored.
func CategoryFromMimeType(mimeType string) FileCategory {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return CategoryImage
	case mediaType == "application/pdf":
		return CategoryPDF
	}
	if _, ok := documentMimeTypes[mediaType]; ok {
		return CategoryDocument
	}
	return CategoryOther
}

// ParseCategoryFilter turns a query value into a category filter.
// The empty string and "all" (any case) mean no filter; ok is false for unknown values.
func ParseCategoryFilter(value string) (category FileCategory, ok bool) {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch FileCategory(value) {
	case "", "ALL":
		return "", true
	case CategoryImage, CategoryPDF, CategoryDocument, CategoryOther:
		return FileCategory(value), true
	}
	return "", false
}
