package utils

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func GenerateID() string {
	id, err := gonanoid.Generate(idAlphabet, 7)
	if err != nil {
		return ""
	}
	return id
}

// StorageKey builds the object key for an uploaded file:
// {prefix}/{unix-millis}-{owner}-{slug(name)}-{id}{.ext}
func StorageKey(prefix, owner, originalName string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	base := slug.Make(strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName)))
	if base == "" {
		base = "file"
	}
	name := fmt.Sprintf("%d-%s-%s-%s%s", now.UnixMilli(), owner, base, GenerateID(), ext)
	if prefix == "" {
		return name
	}
	return strings.TrimSuffix(prefix, "/") + "/" + name
}
