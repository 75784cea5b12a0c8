package session

// mimeTypes maps known media extensions to MIME types.
var mimeTypes = map[string]string{
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"mkv":  "video/x-matroska",
	"avi":  "video/x-msvideo",
	"mov":  "video/quicktime",
	"flv":  "video/x-flv",
	"m4a":  "audio/mp4",
	"mp3":  "audio/mpeg",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// contentTypeFor resolves a MIME type for an extension, defaulting by
// media kind for anything unrecognized.
func contentTypeFor(ext string, kind MediaKind) string {
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	if kind == MediaPhoto {
		return "image/jpeg"
	}
	return "video/mp4"
}
