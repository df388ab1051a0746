package validator

import (
	"errors"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"file-share-api/internal/infrastructure/token"
)

const maxFileNameLen = 255

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

// IsShareToken rejects strings that cannot be a minted share token.
func IsShareToken(s string) bool {
	return token.Valid(s)
}

func ValidateFileName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return errors.New("file name is required")
	case !utf8.ValidString(name):
		return errors.New("file name must be valid UTF-8")
	case utf8.RuneCountInString(name) > maxFileNameLen:
		return errors.New("file name must be at most 255 characters")
	case strings.ContainsAny(name, "\x00/\\"):
		return errors.New("file name must not contain path separators")
	}

	return nil
}

// NormalizeMimeType drops parameters and returns "" for unparsable values.
func NormalizeMimeType(ct string) string {
	if strings.TrimSpace(ct) == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}
