package processor

import (
	"path"
	"strings"
)

// Derived artifacts live next to the source under a different prefix.
// videos/{id}_{name}.mp4 -> processed/{id}_{name}.mp4
//                        -> thumbnails/{id}_{name}.jpg

func ProcessedKey(sourceKey string) string {
	return strings.Replace(sourceKey, "videos/", "processed/", 1)
}

func ThumbnailKey(sourceKey string) string {
	key := strings.Replace(sourceKey, "videos/", "thumbnails/", 1)
	return strings.TrimSuffix(key, path.Ext(key)) + ".jpg"
}
